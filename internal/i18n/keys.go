// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"

	// User Management
	KeyUserNotFound = "user.not_found"
	KeyUserCreated  = "user.created"
	KeyUserUpdated  = "user.updated"

	// Vehicles
	KeyVehicleCreated       = "vehicle.created"
	KeyVehicleUpdated       = "vehicle.updated"
	KeyVehicleDeleted       = "vehicle.deleted"
	KeyVehicleNotFound      = "vehicle.not_found"
	KeyVehiclePlateExists   = "vehicle.plate_exists"
	KeyVehicleOnLoan        = "vehicle.on_loan"
	KeyVehicleInMaintenance = "vehicle.in_maintenance"

	// Loans
	KeyLoanCreated        = "loan.created"
	KeyLoanApproved       = "loan.approved"
	KeyLoanRejected       = "loan.rejected"
	KeyLoanNotFound       = "loan.not_found"
	KeyLoanConflict       = "loan.conflict"
	KeyLoanAlreadyDecided = "loan.already_decided"

	// Returns
	KeyReturnRecorded    = "return.recorded"
	KeyReturnDuplicate   = "return.duplicate"
	KeyReturnNotApproved = "return.not_approved"

	// Borrowers
	KeyBorrowerSynced = "borrower.synced"

	// Validation
	KeyValidationRequired     = "validation.required"
	KeyValidationInvalid      = "validation.invalid"
	KeyValidationAffirmations = "validation.affirmations"
	KeyValidationDateOrder    = "validation.date_order"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"
)
