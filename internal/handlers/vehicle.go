// internal/handlers/vehicle.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sipeka/sipeka-backend/internal/i18n"
	"github.com/sipeka/sipeka-backend/internal/models"
	"github.com/sipeka/sipeka-backend/internal/services"
	"github.com/sipeka/sipeka-backend/internal/utils"
)

type VehicleHandler struct {
	vehicleService      *services.VehicleService
	availabilityService *services.AvailabilityService
}

func NewVehicleHandler(vehicleService *services.VehicleService, availabilityService *services.AvailabilityService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService:      vehicleService,
		availabilityService: availabilityService,
	}
}

// POST /vehicles
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	vehicle, err := h.vehicleService.Create(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyVehicleCreated),
		"vehicle": vehicle,
	})
}

// GET /vehicles
func (h *VehicleHandler) GetVehicles(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var status *models.VehicleStatus
	if statusStr := c.Query("status"); statusStr != "" {
		parsed, err := models.ParseVehicleStatus(statusStr)
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		status = &parsed
	}

	vehicles, total, err := h.vehicleService.List(params, status)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(vehicles, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /vehicles/available?start_date=...&end_date=...
func (h *VehicleHandler) GetAvailableVehicles(c *gin.Context) {
	start, err := models.ParseDate(c.Query("start_date"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	end, err := models.ParseDate(c.Query("end_date"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	vehicles, err := h.availabilityService.ListAvailableVehicles(start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"start_date": start,
		"end_date":   end,
		"vehicles":   vehicles,
	})
}

// GET /vehicles/:id
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID", nil)
		return
	}

	vehicle, err := h.vehicleService.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"vehicle": vehicle})
}

// GET /vehicles/:id/availability?start_date=...&end_date=...
func (h *VehicleHandler) CheckAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID", nil)
		return
	}

	start, err := models.ParseDate(c.Query("start_date"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	end, err := models.ParseDate(c.Query("end_date"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	result, err := h.availabilityService.CheckAvailability(id, start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// PUT /vehicles/:id
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID", nil)
		return
	}

	var req services.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	vehicle, err := h.vehicleService.Update(id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyVehicleUpdated),
		"vehicle": vehicle,
	})
}

// DELETE /vehicles/:id
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid vehicle ID", nil)
		return
	}

	if err := h.vehicleService.Delete(id); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyVehicleDeleted),
	})
}
