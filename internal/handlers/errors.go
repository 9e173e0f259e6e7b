// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sipeka/sipeka-backend/internal/i18n"
	"github.com/sipeka/sipeka-backend/internal/services"
	"github.com/sipeka/sipeka-backend/internal/utils"
)

// handleServiceError maps the service error taxonomy onto HTTP responses.
// Every handler funnels service failures through here so the mapping stays
// in one place.
func handleServiceError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		if len(validationErr.Fields) > 0 {
			utils.ValidationErrorResponse(c, validationErr.Fields)
			return
		}
		utils.BadRequestResponse(c, validationErr.Message, nil)
		return
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		utils.NotFoundResponse(c, notFoundErr.Resource)
		return
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		message := conflictErr.Message
		var details interface{}
		if conflictErr.ConflictingLoan != nil {
			message = i18n.T(lang, i18n.KeyLoanConflict,
				conflictErr.ConflictingLoan.StartDate.String(),
				conflictErr.ConflictingLoan.PlannedEndDate.String())
			details = gin.H{
				"conflicting_loan_id": conflictErr.ConflictingLoan.ID,
				"start_date":          conflictErr.ConflictingLoan.StartDate,
				"planned_end_date":    conflictErr.ConflictingLoan.PlannedEndDate,
			}
		}
		utils.ConflictResponse(c, message, details)
		return
	}

	var stateErr *services.InvalidStateError
	if errors.As(err, &stateErr) {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyLoanAlreadyDecided), gin.H{
			"current_status":   stateErr.Current,
			"attempted_status": stateErr.Attempted,
		})
		return
	}

	var dupErr *services.DuplicateError
	if errors.As(err, &dupErr) {
		utils.ConflictResponse(c, dupErr.Message, nil)
		return
	}

	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
		return
	}

	utils.InternalErrorResponse(c, err.Error())
}
