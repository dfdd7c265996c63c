package controller

import (
	"net/http"

	"wellbeing_backend/internal/middleware"
	"wellbeing_backend/internal/service"
	"wellbeing_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	ExportService *service.ExportService
}

func NewExportController(exportService *service.ExportService) *ExportController {
	return &ExportController{ExportService: exportService}
}

func (c *ExportController) serve(ctx *gin.Context, result *service.ExportResult) {
	ctx.Header("Content-Disposition", "attachment; filename="+result.Filename)
	ctx.Data(http.StatusOK, "text/csv", result.Data)
}

// Students godoc
// @Summary Export the in-scope student roster as CSV
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV payload"
// @Failure 403 {object} util.Response
// @Router /api/export/students [get]
func (c *ExportController) Students(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	result, err := c.ExportService.ExportStudents(ctx.Request.Context(), scope)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	c.serve(ctx, result)
}

// Attendance godoc
// @Summary Export in-scope attendance as CSV
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV payload"
// @Failure 403 {object} util.Response
// @Router /api/export/attendance [get]
func (c *ExportController) Attendance(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	result, err := c.ExportService.ExportAttendance(ctx.Request.Context(), scope)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	c.serve(ctx, result)
}

// Surveys godoc
// @Summary Export in-scope wellbeing responses as CSV
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV payload"
// @Failure 403 {object} util.Response
// @Router /api/export/surveys [get]
func (c *ExportController) Surveys(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	result, err := c.ExportService.ExportSurveyResponses(ctx.Request.Context(), scope)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	c.serve(ctx, result)
}
