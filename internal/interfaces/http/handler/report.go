package handler

import (
	reportapp "github.com/erp/backoffice/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles reporting endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Dashboard godoc
// @ID           getDashboard
// @Summary      Owner dashboard
// @Description  Financials, inventory, purchasing and recent sales for a period (Boss only)
// @Tags         reports
// @Produce      json
// @Param        from query string false "Period start" format(date)
// @Param        to query string false "Period end, inclusive" format(date)
// @Success      200 {object} APIResponse[report.Dashboard]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	var req reportapp.DashboardRequest
	if !h.BindQuery(c, &req) {
		return
	}
	resp, err := h.reportService.Dashboard(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Daily godoc
// @ID           getDailySales
// @Summary      Today's sales
// @Description  Count, totals and payment status breakdown of today's sales
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[report.DailySales]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/daily [get]
func (h *ReportHandler) Daily(c *gin.Context) {
	resp, err := h.reportService.Daily(c.Request.Context(), actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
