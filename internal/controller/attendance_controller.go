package controller

import (
	"strconv"

	"wellbeing_backend/internal/middleware"
	"wellbeing_backend/internal/model"
	"wellbeing_backend/internal/service"
	"wellbeing_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttendanceController struct {
	RecordsService *service.RecordsService
}

func NewAttendanceController(recordsService *service.RecordsService) *AttendanceController {
	return &AttendanceController{RecordsService: recordsService}
}

// RecordAttendanceRequest is one lecture record.
// swagger:model RecordAttendanceRequest
type RecordAttendanceRequest struct {
	StudentID   int64  `json:"studentId" binding:"required"`
	CourseID    uint   `json:"courseId" binding:"required"`
	LectureDate string `json:"lectureDate" binding:"required"`
	Status      string `json:"status" binding:"required"`
}

// Record godoc
// @Summary Record attendance for one lecture
// @Description Re-recording the same (student, course, date) replaces the status
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecordAttendanceRequest true "Lecture record"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/attendance [post]
func (c *AttendanceController) Record(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	var req RecordAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	date, err := util.ParseDate("attendance.lecture_date", req.LectureDate)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.RecordsService.RecordAttendance(ctx.Request.Context(), scope,
		req.StudentID, req.CourseID, date, model.AttendanceStatus(req.Status)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"studentId": req.StudentID, "lectureDate": req.LectureDate})
}

// List godoc
// @Summary List attendance in scope
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param courseId query int false "Restrict to one course"
// @Success 200 {object} util.Response{data=[]model.Attendance}
// @Router /api/attendance [get]
func (c *AttendanceController) List(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	var courseID *uint
	if raw := ctx.Query("courseId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			util.BadRequest(ctx, "invalid course identifier")
			return
		}
		id := uint(parsed)
		courseID = &id
	}
	rows, err := c.RecordsService.ListAttendance(scope, courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}
