package controller

import (
	"time"

	"wellbeing_backend/internal/middleware"
	"wellbeing_backend/internal/service"
	"wellbeing_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	RecordsService *service.RecordsService
}

func NewAssessmentController(recordsService *service.RecordsService) *AssessmentController {
	return &AssessmentController{RecordsService: recordsService}
}

// CreateAssessmentRequest defines a coursework assessment.
// swagger:model CreateAssessmentRequest
type CreateAssessmentRequest struct {
	Title    string  `json:"title" binding:"required"`
	CourseID uint    `json:"courseId" binding:"required"`
	Deadline string  `json:"deadline" binding:"required"`
	MaxScore float64 `json:"maxScore" binding:"required"`
}

// Create godoc
// @Summary Create an assessment
// @Tags grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateAssessmentRequest true "Assessment"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Router /api/assessments [post]
func (c *AssessmentController) Create(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	var req CreateAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	deadline, err := util.ParseDate("assessment.deadline", req.Deadline)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	assessment, err := c.RecordsService.CreateAssessment(scope, req.Title, req.CourseID, deadline, req.MaxScore)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, assessment)
}

// ListByCourse godoc
// @Summary List assessments for a course
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course identifier"
// @Success 200 {object} util.Response{data=[]model.Assessment}
// @Router /api/courses/{courseId}/assessments [get]
func (c *AssessmentController) ListByCourse(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course identifier")
		return
	}
	assessments, err := c.RecordsService.ListAssessments(scope, courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, assessments)
}

// RecordSubmissionRequest records coursework for one student.
// swagger:model RecordSubmissionRequest
type RecordSubmissionRequest struct {
	StudentID   int64   `json:"studentId" binding:"required"`
	SubmittedAt *string `json:"submittedAt"`
	Score       float64 `json:"score"`
}

// RecordSubmission godoc
// @Summary Record a submission
// @Description The score must lie within [0, max_score] of the assessment
// @Tags grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment identifier"
// @Param body body RecordSubmissionRequest true "Submission"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/assessments/{id}/submissions [post]
func (c *AssessmentController) RecordSubmission(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	assessmentID := util.MustParseUint(ctx.Param("id"))
	if assessmentID == 0 {
		util.BadRequest(ctx, "invalid assessment identifier")
		return
	}
	var req RecordSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	var submittedAt *time.Time
	if req.SubmittedAt != nil {
		parsed, err := util.ParseDate("submission.submitted_at", *req.SubmittedAt)
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		submittedAt = &parsed
	}
	if err := c.RecordsService.RecordSubmission(ctx.Request.Context(), scope,
		assessmentID, req.StudentID, submittedAt, req.Score); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"assessmentId": assessmentID, "studentId": req.StudentID})
}

// ListSubmissions godoc
// @Summary List submissions for an assessment
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment identifier"
// @Success 200 {object} util.Response{data=[]model.Submission}
// @Router /api/assessments/{id}/submissions [get]
func (c *AssessmentController) ListSubmissions(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	assessmentID := util.MustParseUint(ctx.Param("id"))
	if assessmentID == 0 {
		util.BadRequest(ctx, "invalid assessment identifier")
		return
	}
	submissions, err := c.RecordsService.ListSubmissions(scope, assessmentID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, submissions)
}
