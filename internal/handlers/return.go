// internal/handlers/return.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sipeka/sipeka-backend/internal/i18n"
	"github.com/sipeka/sipeka-backend/internal/services"
	"github.com/sipeka/sipeka-backend/internal/utils"
)

type ReturnHandler struct {
	returnService *services.ReturnService
}

func NewReturnHandler(returnService *services.ReturnService) *ReturnHandler {
	return &ReturnHandler{
		returnService: returnService,
	}
}

// POST /returns
func (h *ReturnHandler) RecordReturn(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RecordReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	summary, err := h.returnService.Record(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyReturnRecorded),
		"return":  summary,
	})
}

// GET /returns
func (h *ReturnHandler) GetReturns(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	records, total, err := h.returnService.List(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(records, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /returns/:id
func (h *ReturnHandler) GetReturn(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid return ID", nil)
		return
	}

	record, err := h.returnService.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"return": record})
}
