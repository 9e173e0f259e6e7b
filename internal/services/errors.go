// internal/services/errors.go
package services

import (
	"fmt"

	"github.com/sipeka/sipeka-backend/internal/models"
	"github.com/sipeka/sipeka-backend/internal/utils"
)

// The service layer reports failures through a closed taxonomy so handlers
// can map them to HTTP statuses with errors.As instead of matching on
// message text. Anything outside these types is a persistence failure and
// surfaces as a 500.

// ValidationError covers malformed or missing fields, failed affirmations
// and bad date ordering.
type ValidationError struct {
	Message string
	Fields  []utils.ValidationError
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NotFoundError names the missing resource kind (vehicle, loan, user,
// borrower) for the 404 response.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ConflictError reports a binding reservation overlapping the requested
// range, or a vehicle out of service. The conflicting loan, when present,
// carries the range shown to the caller.
type ConflictError struct {
	Message         string
	ConflictingLoan *models.LoanRequest
}

func (e *ConflictError) Error() string {
	if e.ConflictingLoan != nil {
		return fmt.Sprintf("%s: conflicts with loan from %s to %s",
			e.Message, e.ConflictingLoan.StartDate, e.ConflictingLoan.PlannedEndDate)
	}
	return e.Message
}

// InvalidStateError reports a transition attempted from the wrong status.
type InvalidStateError struct {
	Current   models.LoanStatus
	Attempted models.LoanStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid loan state: cannot move from %s to %s", e.Current, e.Attempted)
}

// DuplicateError reports a uniqueness violation, e.g. a second return for
// the same loan or a re-registered plate number.
type DuplicateError struct {
	Message string
}

func (e *DuplicateError) Error() string {
	return e.Message
}
