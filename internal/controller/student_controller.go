package controller

import (
	"strconv"
	"time"

	"wellbeing_backend/internal/middleware"
	"wellbeing_backend/internal/model"
	"wellbeing_backend/internal/service"
	"wellbeing_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	RecordsService *service.RecordsService
	ScopeService   *service.ScopeService
}

func NewStudentController(recordsService *service.RecordsService, scopeService *service.ScopeService) *StudentController {
	return &StudentController{RecordsService: recordsService, ScopeService: scopeService}
}

func studentParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		util.BadRequest(ctx, "invalid student identifier")
		return 0, false
	}
	return id, true
}

// List godoc
// @Summary List students in scope
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.StudentView}
// @Router /api/students [get]
func (c *StudentController) List(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	students, err := c.RecordsService.ListStudents(scope)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, students)
}

// Get godoc
// @Summary Fetch one student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student identifier"
// @Success 200 {object} util.Response{data=service.StudentView}
// @Failure 404 {object} util.Response
// @Router /api/students/{id} [get]
func (c *StudentController) Get(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	id, ok := studentParam(ctx)
	if !ok {
		return
	}
	student, err := c.RecordsService.GetStudent(scope, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, student)
}

// CreateStudentRequest is the intake payload.
// swagger:model CreateStudentRequest
type CreateStudentRequest struct {
	ID             int64  `json:"id" binding:"required"`
	GraduationDate string `json:"graduationDate" binding:"required"`
	CourseID       uint   `json:"courseId" binding:"required"`
}

// Create godoc
// @Summary Register a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateStudentRequest true "Intake payload"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/students [post]
func (c *StudentController) Create(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	var req CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	gradDate, err := util.ParseDate("student.graduation_date", req.GraduationDate)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.RecordsService.CreateStudent(ctx.Request.Context(), scope, req.ID, gradDate, req.CourseID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"id": req.ID})
}

// BulkIntake godoc
// @Summary Register students from a CSV file
// @Description Expects a multipart file with an id,graduation_date,course_id header
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Success 200 {object} util.Response{data=service.IntakeReport}
// @Router /api/students/import [post]
func (c *StudentController) BulkIntake(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing csv file")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		util.BadRequest(ctx, "unreadable csv file")
		return
	}
	defer file.Close()

	report, err := c.RecordsService.BulkIntake(ctx.Request.Context(), scope, file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// UpdateStudentRequest edits graduation date and status.
// swagger:model UpdateStudentRequest
type UpdateStudentRequest struct {
	GraduationDate *string `json:"graduationDate"`
	Status         *string `json:"status"`
}

// Update godoc
// @Summary Edit a student's graduation date or status
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student identifier"
// @Param body body UpdateStudentRequest true "Fields to change"
// @Success 200 {object} util.Response
// @Router /api/students/{id} [put]
func (c *StudentController) Update(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	id, ok := studentParam(ctx)
	if !ok {
		return
	}
	var req UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var datePtr *time.Time
	if req.GraduationDate != nil {
		parsed, err := util.ParseDate("student.graduation_date", *req.GraduationDate)
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		datePtr = &parsed
	}
	var statusPtr *model.StudentStatus
	if req.Status != nil {
		s := model.StudentStatus(*req.Status)
		statusPtr = &s
	}

	if err := c.RecordsService.UpdateStudent(ctx.Request.Context(), scope, id, datePtr, statusPtr); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}

// EnrollRequest names the course to join or leave.
// swagger:model EnrollRequest
type EnrollRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

// Enroll godoc
// @Summary Enroll a student in a course
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student identifier"
// @Param body body EnrollRequest true "Course"
// @Success 201 {object} util.Response
// @Router /api/students/{id}/enrollments [post]
func (c *StudentController) Enroll(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	id, ok := studentParam(ctx)
	if !ok {
		return
	}
	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.RecordsService.Enroll(ctx.Request.Context(), scope, id, req.CourseID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"studentId": id, "courseId": req.CourseID})
}

// Unenroll godoc
// @Summary Remove a student from a course
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student identifier"
// @Param courseId path int true "Course identifier"
// @Success 200 {object} util.Response
// @Router /api/students/{id}/enrollments/{courseId} [delete]
func (c *StudentController) Unenroll(ctx *gin.Context) {
	scope, ok := middleware.GetScope(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	id, ok := studentParam(ctx)
	if !ok {
		return
	}
	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course identifier")
		return
	}
	if err := c.RecordsService.Unenroll(ctx.Request.Context(), scope, id, courseID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"studentId": id, "courseId": courseID})
}

// AssignDirectorRequest names the user to link to a course.
// swagger:model AssignDirectorRequest
type AssignDirectorRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// AssignDirector godoc
// @Summary Assign a course director
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course identifier"
// @Param body body AssignDirectorRequest true "Director"
// @Success 201 {object} util.Response
// @Router /api/courses/{courseId}/directors [post]
func (c *StudentController) AssignDirector(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course identifier")
		return
	}
	var req AssignDirectorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ScopeService.AssignDirector(req.UserID, courseID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"userId": req.UserID, "courseId": courseID})
}

// ListCourses godoc
// @Summary List courses
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/courses [get]
func (c *StudentController) ListCourses(ctx *gin.Context) {
	courses, err := c.RecordsService.ListCourses()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}
