// internal/handlers/report.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sipeka/sipeka-backend/internal/models"
	"github.com/sipeka/sipeka-backend/internal/services"
	"github.com/sipeka/sipeka-backend/internal/utils"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// GET /reports/usage?start_date=...&end_date=...
func (h *ReportHandler) GetUsageReport(c *gin.Context) {
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

	report, err := h.reportService.UsageReport(start, end)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"report": report})
}

// GET /dashboard/stats
func (h *ReportHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.reportService.Dashboard()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}
