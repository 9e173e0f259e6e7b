// internal/handlers/loan.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sipeka/sipeka-backend/internal/i18n"
	"github.com/sipeka/sipeka-backend/internal/models"
	"github.com/sipeka/sipeka-backend/internal/services"
	"github.com/sipeka/sipeka-backend/internal/utils"
)

type LoanHandler struct {
	loanService    *services.LoanService
	storageService *services.StorageService
}

func NewLoanHandler(loanService *services.LoanService, storageService *services.StorageService) *LoanHandler {
	return &LoanHandler{
		loanService:    loanService,
		storageService: storageService,
	}
}

// POST /loans
//
// Accepts JSON, or multipart/form-data when the request carries a surat
// tugas attachment.
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateLoanRequest
	var err error

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req, err = h.bindMultipartLoan(c)
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}
	}

	// The creator is always the authenticated caller.
	if userIDStr, exists := utils.GetUserIDFromContext(c); exists {
		if creatorID, err := uuid.Parse(userIDStr); err == nil {
			req.CreatorID = &creatorID
			// A staff request without an explicit requester is for the
			// caller themselves.
			if req.RequesterID == nil && req.BorrowerID == nil {
				req.RequesterID = &creatorID
			}
		}
	}

	loan, err := h.loanService.Create(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyLoanCreated),
		"loan":    loan,
	})
}

func (h *LoanHandler) bindMultipartLoan(c *gin.Context) (services.CreateLoanRequest, error) {
	var req services.CreateLoanRequest

	vehicleID, err := uuid.Parse(c.PostForm("vehicle_id"))
	if err != nil {
		return req, err
	}
	req.VehicleID = vehicleID

	if v := c.PostForm("requester_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return req, err
		}
		req.RequesterID = &id
	}
	if v := c.PostForm("borrower_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return req, err
		}
		req.BorrowerID = &id
	}

	req.StartDate = c.PostForm("start_date")
	req.PlannedEndDate = c.PostForm("planned_end_date")
	req.Purpose = c.PostForm("purpose")
	req.Destination = c.PostForm("destination")
	req.DutyUseAffirmed, _ = strconv.ParseBool(c.PostForm("duty_use_affirmed"))
	req.CleanlinessAffirmed, _ = strconv.ParseBool(c.PostForm("cleanliness_affirmed"))
	req.LiabilityAffirmed, _ = strconv.ParseBool(c.PostForm("liability_affirmed"))

	file, header, err := c.Request.FormFile("attachment")
	if err == nil {
		defer file.Close()
		result, err := h.storageService.UploadFile(file, header, h.storageService.AttachmentUploadOptions())
		if err != nil {
			return req, err
		}
		req.AttachmentName = &header.Filename
		req.AttachmentURL = &result.URL
	}

	return req, nil
}

// GET /loans
func (h *LoanHandler) GetLoans(c *gin.Context) {
	params := services.LoanSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if vehicleIDStr := c.Query("vehicle_id"); vehicleIDStr != "" {
		if vehicleID, err := uuid.Parse(vehicleIDStr); err == nil {
			params.VehicleID = &vehicleID
		}
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status, err := models.ParseLoanStatus(statusStr)
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		params.Status = &status
	}
	if fromStr := c.Query("start_from"); fromStr != "" {
		from, err := models.ParseDate(fromStr)
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		params.StartFrom = &from
	}
	if toStr := c.Query("start_to"); toStr != "" {
		to, err := models.ParseDate(toStr)
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		params.StartTo = &to
	}

	loans, total, err := h.loanService.Search(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(loans, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// GET /loans/history
func (h *LoanHandler) GetLoanHistory(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	role := models.UserRoleStaff
	if roleStr, ok := utils.GetUserRoleFromContext(c); ok {
		if parsed, err := models.ParseUserRole(roleStr); err == nil {
			role = parsed
		}
	}

	loans, err := h.loanService.History(userID, role)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"loans": loans})
}

// GET /loans/:id
func (h *LoanHandler) GetLoan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid loan ID", nil)
		return
	}

	loan, err := h.loanService.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"loan": loan})
}

// PUT /loans/:id/approve
func (h *LoanHandler) ApproveLoan(c *gin.Context) {
	h.decide(c, true)
}

// PUT /loans/:id/reject
func (h *LoanHandler) RejectLoan(c *gin.Context) {
	h.decide(c, false)
}

func (h *LoanHandler) decide(c *gin.Context, approved bool) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid loan ID", nil)
		return
	}

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	approverID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var body struct {
		Note *string `json:"note"`
	}
	// The note is optional; an empty body is fine.
	c.ShouldBindJSON(&body)

	loan, err := h.loanService.Decide(id, approverID, &services.DecideLoanRequest{
		Approved: approved,
		Note:     body.Note,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	messageKey := i18n.KeyLoanRejected
	if approved {
		messageKey = i18n.KeyLoanApproved
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, messageKey),
		"loan":    loan,
	})
}
