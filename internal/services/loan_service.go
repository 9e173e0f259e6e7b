// internal/services/loan_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sipeka/sipeka-backend/internal/database"
	"github.com/sipeka/sipeka-backend/internal/models"
	"github.com/sipeka/sipeka-backend/internal/utils"
)

// LoanService owns the loan lifecycle: creation with conflict checking,
// and the approval gate in front of the Approve/Reject transition. Each
// mutation holds the target vehicle's lock for its whole read-check-write
// sequence and commits in a single transaction.
type LoanService struct {
	db           *gorm.DB
	availability *AvailabilityService
	locks        *vehicleLocker
}

type CreateLoanRequest struct {
	VehicleID   uuid.UUID  `json:"vehicle_id" validate:"required"`
	RequesterID *uuid.UUID `json:"requester_id"` // registered user
	BorrowerID  *uuid.UUID `json:"borrower_id"`  // ad-hoc borrower profile
	CreatorID   *uuid.UUID `json:"creator_id"`

	StartDate      string `json:"start_date" validate:"required,calendar_date"`
	PlannedEndDate string `json:"planned_end_date" validate:"required,calendar_date"`
	Purpose        string `json:"purpose" validate:"required"`
	Destination    string `json:"destination" validate:"required"`

	DutyUseAffirmed     bool `json:"duty_use_affirmed"`
	CleanlinessAffirmed bool `json:"cleanliness_affirmed"`
	LiabilityAffirmed   bool `json:"liability_affirmed"`

	AttachmentName *string `json:"attachment_name"`
	AttachmentURL  *string `json:"attachment_url"`
}

type DecideLoanRequest struct {
	Approved bool    `json:"approved"`
	Note     *string `json:"note"`
}

type LoanSearchParams struct {
	utils.PaginationParams
	VehicleID *uuid.UUID         `json:"vehicle_id,omitempty"`
	Status    *models.LoanStatus `json:"status,omitempty"`
	StartFrom *models.Date       `json:"start_from,omitempty"`
	StartTo   *models.Date       `json:"start_to,omitempty"`
}

func NewLoanService(db *gorm.DB, availability *AvailabilityService) *LoanService {
	return &LoanService{
		db:           db,
		availability: availability,
		locks:        newVehicleLocker(),
	}
}

// Create validates the request, checks availability and inserts the loan
// in one critical section scoped to the vehicle. The vehicle's current
// condition is snapshotted onto the record; status starts at Diproses.
func (s *LoanService) Create(req *CreateLoanRequest) (*models.LoanRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, &ValidationError{Fields: utils.GetValidationErrors(err)}
	}

	if !req.DutyUseAffirmed || !req.CleanlinessAffirmed || !req.LiabilityAffirmed {
		return nil, NewValidationError("all affirmations must be accepted")
	}

	start, err := models.ParseDate(req.StartDate)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}
	end, err := models.ParseDate(req.PlannedEndDate)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}
	if end.Before(start) {
		return nil, NewValidationError("planned end date must not be before start date")
	}

	if (req.RequesterID == nil) == (req.BorrowerID == nil) {
		return nil, NewValidationError("exactly one of requester_id or borrower_id must be set")
	}

	loan := &models.LoanRequest{
		VehicleID:           req.VehicleID,
		CreatorID:           req.CreatorID,
		StartDate:           start,
		PlannedEndDate:      end,
		Purpose:             req.Purpose,
		Destination:         req.Destination,
		DutyUseAffirmed:     req.DutyUseAffirmed,
		CleanlinessAffirmed: req.CleanlinessAffirmed,
		LiabilityAffirmed:   req.LiabilityAffirmed,
		Status:              models.LoanStatusRequested,
		AttachmentName:      req.AttachmentName,
		AttachmentURL:       req.AttachmentURL,
	}

	unlock := s.locks.lock(req.VehicleID)
	defer unlock()

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var vehicle models.Vehicle
		if err := tx.First(&vehicle, req.VehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "vehicle"}
			}
			return fmt.Errorf("database error: %w", err)
		}

		if vehicle.Status == models.VehicleStatusUnderMaintenance {
			return &ConflictError{Message: "vehicle is under maintenance"}
		}

		if err := s.resolveRequester(tx, req, loan); err != nil {
			return err
		}

		conflict, err := s.availability.firstConflict(tx, req.VehicleID, start, end)
		if err != nil {
			return err
		}
		if conflict != nil {
			return &ConflictError{
				Message:         "vehicle is already booked for those dates",
				ConflictingLoan: conflict,
			}
		}

		loan.InitialRoadworthy = vehicle.Roadworthy
		loan.InitialCleanliness = vehicle.Cleanliness
		loan.InitialFuel = vehicle.FuelLevel

		if err := tx.Create(loan).Error; err != nil {
			return fmt.Errorf("failed to create loan request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Vehicle").Preload("RequesterUser").Preload("RequesterBorrower").
		First(loan, loan.ID)

	return loan, nil
}

func (s *LoanService) resolveRequester(tx *gorm.DB, req *CreateLoanRequest, loan *models.LoanRequest) error {
	if req.RequesterID != nil {
		var user models.User
		if err := tx.First(&user, *req.RequesterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "user"}
			}
			return fmt.Errorf("database error: %w", err)
		}
		loan.RequesterKind = models.RequesterKindRegistered
		loan.RequesterUserID = &user.ID
		return nil
	}

	var borrower models.Borrower
	if err := tx.First(&borrower, *req.BorrowerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "borrower"}
		}
		return fmt.Errorf("database error: %w", err)
	}
	loan.RequesterKind = models.RequesterKindAdhoc
	loan.RequesterBorrowerID = &borrower.ID
	return nil
}

// Decide is the approval gate: it validates the caller and the action,
// then applies the Approve or Reject transition. Approving flips the
// vehicle to Dipinjam; rejecting leaves it untouched. Legal only while the
// loan is still Diproses, so neither decision can be applied twice.
func (s *LoanService) Decide(loanID, approverID uuid.UUID, req *DecideLoanRequest) (*models.LoanRequest, error) {
	if approverID == uuid.Nil {
		return nil, NewValidationError("approver identity is required")
	}

	var probe models.LoanRequest
	if err := s.db.Select("id", "vehicle_id").First(&probe, loanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "loan"}
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	unlock := s.locks.lock(probe.VehicleID)
	defer unlock()

	var loan models.LoanRequest
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "loan"}
			}
			return fmt.Errorf("database error: %w", err)
		}

		target := models.LoanStatusRejected
		if req.Approved {
			target = models.LoanStatusApproved
		}

		if loan.Status != models.LoanStatusRequested {
			return &InvalidStateError{Current: loan.Status, Attempted: target}
		}

		if req.Approved {
			// A sibling request approved first may already bind these
			// dates; approval must not introduce an overlap.
			conflict, err := s.availability.firstConflict(tx, loan.VehicleID, loan.StartDate, loan.PlannedEndDate)
			if err != nil {
				return err
			}
			if conflict != nil && conflict.ID != loan.ID {
				return &ConflictError{
					Message:         "vehicle is already booked for those dates",
					ConflictingLoan: conflict,
				}
			}
		}

		if err := loan.ApplyTransition(target, time.Now()); err != nil {
			return &InvalidStateError{Current: loan.Status, Attempted: target}
		}
		loan.ApproverID = &approverID
		loan.DecisionNote = req.Note

		if err := tx.Save(&loan).Error; err != nil {
			return fmt.Errorf("failed to update loan request: %w", err)
		}

		if req.Approved {
			if err := tx.Model(&models.Vehicle{}).
				Where("id = ?", loan.VehicleID).
				Update("status", models.VehicleStatusOnLoan).Error; err != nil {
				return fmt.Errorf("failed to update vehicle status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Vehicle").Preload("RequesterUser").Preload("RequesterBorrower").
		Preload("Approver").First(&loan, loan.ID)

	return &loan, nil
}

func (s *LoanService) Get(id uuid.UUID) (*models.LoanRequest, error) {
	var loan models.LoanRequest
	err := s.db.Preload("Vehicle").Preload("RequesterUser").Preload("RequesterBorrower").
		Preload("Creator").Preload("Approver").Preload("Return").
		First(&loan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "loan"}
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &loan, nil
}

func (s *LoanService) Search(params LoanSearchParams) ([]models.LoanRequest, int64, error) {
	query := s.db.Model(&models.LoanRequest{}).
		Preload("Vehicle").Preload("RequesterUser").Preload("RequesterBorrower").
		Preload("Creator").Preload("Approver").Preload("Return")

	if params.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *params.VehicleID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.StartFrom != nil {
		query = query.Where("start_date >= ?", params.StartFrom.Time)
	}
	if params.StartTo != nil {
		query = query.Where("start_date <= ?", params.StartTo.Time)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count loan requests: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "start_date", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var loans []models.LoanRequest
	if err := query.Find(&loans).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch loan requests: %w", err)
	}

	return loans, total, nil
}

// History returns the caller's loan history. Staff see loans they
// requested or submitted on someone's behalf; admins see everything.
func (s *LoanService) History(userID uuid.UUID, role models.UserRole) ([]models.LoanRequest, error) {
	query := s.db.Model(&models.LoanRequest{}).
		Preload("Vehicle").Preload("RequesterUser").Preload("RequesterBorrower").
		Preload("Creator").Preload("Approver").Preload("Return").
		Order("created_at desc")

	if role != models.UserRoleAdmin {
		query = query.Where("requester_user_id = ? OR creator_id = ?", userID, userID)
	}

	var loans []models.LoanRequest
	if err := query.Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch loan history: %w", err)
	}
	return loans, nil
}
