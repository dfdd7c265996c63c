package controller

import (
	"strconv"

	"wellbeing_backend/internal/middleware"
	"wellbeing_backend/internal/service"
	"wellbeing_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AnalyticsController fronts the aggregation engine. Every handler first
// checks the Dashboards grant; the Wellbeing Team sees all raw data but may
// not run these endpoints.
type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// AttendanceRate godoc
// @Summary Attendance rate for one student
// @Description Present over recorded lectures; zero recorded lectures yields an explicit no-data result
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student identifier"
// @Param courseId query int false "Restrict to one course"
// @Success 200 {object} util.Response{data=model.AttendanceRateResult}
// @Failure 403 {object} util.Response
// @Router /api/analytics/students/{id}/attendance [get]
func (c *AnalyticsController) AttendanceRate(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	if err := service.RequireDashboards(scope); err != nil {
		util.HandleError(ctx, err)
		return
	}
	id, ok := studentParam(ctx)
	if !ok {
		return
	}
	var courseID *uint
	if raw := ctx.Query("courseId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			util.BadRequest(ctx, "invalid course identifier")
			return
		}
		v := uint(parsed)
		courseID = &v
	}
	result, err := c.AnalyticsService.AttendanceRate(scope, id, courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// StressTrend godoc
// @Summary Stress trend for one student
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student identifier"
// @Success 200 {object} util.Response{data=model.StressTrendResult}
// @Failure 403 {object} util.Response
// @Router /api/analytics/students/{id}/stress [get]
func (c *AnalyticsController) StressTrend(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	if err := service.RequireDashboards(scope); err != nil {
		util.HandleError(ctx, err)
		return
	}
	id, ok := studentParam(ctx)
	if !ok {
		return
	}
	result, err := c.AnalyticsService.StressTrend(scope, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// RiskFlags godoc
// @Summary Risk flags for one student
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student identifier"
// @Success 200 {object} util.Response{data=model.RiskFlags}
// @Failure 403 {object} util.Response
// @Router /api/analytics/students/{id}/risk [get]
func (c *AnalyticsController) RiskFlags(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	if err := service.RequireDashboards(scope); err != nil {
		util.HandleError(ctx, err)
		return
	}
	id, ok := studentParam(ctx)
	if !ok {
		return
	}
	result, err := c.AnalyticsService.RiskFlags(scope, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// AtRisk godoc
// @Summary Risk flags for every student in scope
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.RiskFlags}
// @Failure 403 {object} util.Response
// @Router /api/analytics/at-risk [get]
func (c *AnalyticsController) AtRisk(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	if err := service.RequireDashboards(scope); err != nil {
		util.HandleError(ctx, err)
		return
	}
	results, err := c.AnalyticsService.AtRiskStudents(ctx.Request.Context(), scope)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// CourseAttendance godoc
// @Summary Mean attendance rate per course
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.CourseAttendanceAverage}
// @Router /api/analytics/courses/attendance [get]
func (c *AnalyticsController) CourseAttendance(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	if err := service.RequireDashboards(scope); err != nil {
		util.HandleError(ctx, err)
		return
	}
	results, err := c.AnalyticsService.CourseAttendanceAverages(ctx.Request.Context(), scope)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// SurveyStress godoc
// @Summary Mean stress level per survey period
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.SurveyStressAverage}
// @Failure 403 {object} util.Response
// @Router /api/analytics/surveys/stress [get]
func (c *AnalyticsController) SurveyStress(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	if err := service.RequireDashboards(scope); err != nil {
		util.HandleError(ctx, err)
		return
	}
	results, err := c.AnalyticsService.SurveyStressAverages(ctx.Request.Context(), scope)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// Correlation godoc
// @Summary Attendance to grade correlation
// @Description Pearson R between per-student mean attendance and mean score, globally and per course
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.CorrelationReport}
// @Router /api/analytics/correlation [get]
func (c *AnalyticsController) Correlation(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	if err := service.RequireDashboards(scope); err != nil {
		util.HandleError(ctx, err)
		return
	}
	report, err := c.AnalyticsService.AttendanceGradeCorrelation(scope)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// StressCorrelation godoc
// @Summary Stress to grade correlation
// @Description Pearson R between each student's latest stress level and mean score, globally and per course
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.CorrelationReport}
// @Failure 403 {object} util.Response
// @Router /api/analytics/correlation/stress [get]
func (c *AnalyticsController) StressCorrelation(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	if err := service.RequireDashboards(scope); err != nil {
		util.HandleError(ctx, err)
		return
	}
	report, err := c.AnalyticsService.StressGradeCorrelation(scope)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
