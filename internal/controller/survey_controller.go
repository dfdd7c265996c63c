package controller

import (
	"wellbeing_backend/internal/middleware"
	"wellbeing_backend/internal/service"
	"wellbeing_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SurveyController struct {
	RecordsService *service.RecordsService
}

func NewSurveyController(recordsService *service.RecordsService) *SurveyController {
	return &SurveyController{RecordsService: recordsService}
}

// LogResponseRequest is one student's wellbeing answer.
// swagger:model LogResponseRequest
type LogResponseRequest struct {
	StudentID   int64   `json:"studentId" binding:"required"`
	SurveyDate  string  `json:"surveyDate" binding:"required"`
	StressLevel int     `json:"stressLevel" binding:"required"`
	SleepHours  float64 `json:"sleepHours"`
}

// LogResponse godoc
// @Summary Log a wellbeing survey response
// @Description Creates the survey row for the date on first use; duplicates for the same survey are rejected
// @Tags wellbeing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body LogResponseRequest true "Survey response"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/surveys/responses [post]
func (c *SurveyController) LogResponse(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	var req LogResponseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	date, err := util.ParseDate("survey.passed_date", req.SurveyDate)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.RecordsService.LogSurveyResponse(ctx.Request.Context(), scope,
		req.StudentID, date, req.StressLevel, req.SleepHours); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"studentId": req.StudentID, "surveyDate": req.SurveyDate})
}

// ListSurveys godoc
// @Summary List survey administrations
// @Tags wellbeing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Survey}
// @Failure 403 {object} util.Response
// @Router /api/surveys [get]
func (c *SurveyController) ListSurveys(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	surveys, err := c.RecordsService.ListSurveys(scope)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, surveys)
}

// ListResponses godoc
// @Summary List a student's survey responses
// @Tags wellbeing
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student identifier"
// @Success 200 {object} util.Response{data=[]model.SurveyRow}
// @Failure 403 {object} util.Response
// @Router /api/students/{id}/surveys [get]
func (c *SurveyController) ListResponses(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	id, ok := studentParam(ctx)
	if !ok {
		return
	}
	rows, err := c.RecordsService.ListSurveyResponses(scope, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}
