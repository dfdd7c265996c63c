package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"wellbeing_backend/internal/model"
	"wellbeing_backend/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StudentStore interface {
	FindByID(id int64) (*model.Student, error)
	Exists(id int64) (bool, error)
	FindInScope(scope model.Scope) ([]model.Student, error)
	CreateWithEnrollment(student *model.Student, courseID uint) error
	Update(student *model.Student) error
	Enroll(studentID int64, courseID uint) error
	Unenroll(studentID int64, courseID uint) error
	IsEnrolled(studentID int64, courseID uint) (bool, error)
	CourseIDsByStudent(studentID int64) ([]uint, error)
}

type CourseStore interface {
	FindByID(id uint) (*model.Course, error)
	FindAll() ([]model.Course, error)
	Names() (map[uint]string, error)
}

type AttendanceStore interface {
	Upsert(a *model.Attendance) error
	FindInScope(scope model.Scope, courseID *uint) ([]model.Attendance, error)
}

type AssessmentStore interface {
	Create(a *model.Assessment) error
	FindByID(id uint) (*model.Assessment, error)
	FindByCourse(courseID uint) ([]model.Assessment, error)
	UpsertSubmission(s *model.Submission) error
	SubmissionsByAssessment(assessmentID uint, scope model.Scope) ([]model.Submission, error)
}

type SurveyStore interface {
	GetOrCreateByDate(date time.Time) (*model.Survey, error)
	FindAll() ([]model.Survey, error)
	HasResponse(studentID int64, surveyID uint) (bool, error)
	CreateResponse(resp *model.WellbeingSurvey) error
	ResponsesByStudent(studentID int64) ([]model.SurveyRow, error)
}

// StudentView is a student row decorated with its effective status and the
// names of its courses.
type StudentView struct {
	ID             int64               `json:"id"`
	GraduationDate time.Time           `json:"graduationDate"`
	Status         model.StudentStatus `json:"status"`
	Courses        []string            `json:"courses"`
}

// IntakeFailure reports one rejected row of a bulk intake file.
type IntakeFailure struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// IntakeReport is the outcome of a bulk intake; rejected rows never abort
// the rest of the file.
type IntakeReport struct {
	Created  []int64         `json:"created"`
	Failures []IntakeFailure `json:"failures"`
}

// RecordsService is the raw read/write path. Every read is filtered by the
// caller's scope and every write is validated against the declared ranges and
// referential rules before the store is touched.
type RecordsService struct {
	students    StudentStore
	courses     CourseStore
	attendance  AttendanceStore
	assessments AssessmentStore
	surveys     SurveyStore
	locks       *StudentLocks
	cache       *AnalyticsCache
	logger      *zap.Logger
}

func NewRecordsService(
	students StudentStore,
	courses CourseStore,
	attendance AttendanceStore,
	assessments AssessmentStore,
	surveys SurveyStore,
	locks *StudentLocks,
	cache *AnalyticsCache,
	logger *zap.Logger,
) *RecordsService {
	return &RecordsService{
		students:    students,
		courses:     courses,
		attendance:  attendance,
		assessments: assessments,
		surveys:     surveys,
		locks:       locks,
		cache:       cache,
		logger:      logger,
	}
}

// ListStudents returns the students admitted by the scope with their course
// names and read-time effective status.
func (s *RecordsService) ListStudents(scope model.Scope) ([]StudentView, error) {
	if err := RequireField(scope, model.FieldProfile); err != nil {
		return nil, err
	}
	students, err := s.students.FindInScope(scope)
	if err != nil {
		return nil, err
	}
	names, err := s.courses.Names()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	views := make([]StudentView, 0, len(students))
	for _, st := range students {
		courseIDs, err := s.students.CourseIDsByStudent(st.ID)
		if err != nil {
			return nil, err
		}
		courses := make([]string, 0, len(courseIDs))
		for _, cid := range courseIDs {
			courses = append(courses, names[cid])
		}
		views = append(views, StudentView{
			ID:             st.ID,
			GraduationDate: st.GraduationDate,
			Status:         st.EffectiveStatus(now),
			Courses:        courses,
		})
	}
	return views, nil
}

func (s *RecordsService) GetStudent(scope model.Scope, studentID int64) (*StudentView, error) {
	if err := RequireField(scope, model.FieldProfile); err != nil {
		return nil, err
	}
	if err := RequireStudent(scope, studentID); err != nil {
		return nil, err
	}
	st, err := s.students.FindByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NewNotFoundError("student", fmt.Sprintf("student %d", studentID))
		}
		return nil, err
	}
	courseIDs, err := s.students.CourseIDsByStudent(studentID)
	if err != nil {
		return nil, err
	}
	names, err := s.courses.Names()
	if err != nil {
		return nil, err
	}
	courses := make([]string, 0, len(courseIDs))
	for _, cid := range courseIDs {
		courses = append(courses, names[cid])
	}
	return &StudentView{
		ID:             st.ID,
		GraduationDate: st.GraduationDate,
		Status:         st.EffectiveStatus(time.Now()),
		Courses:        courses,
	}, nil
}

// CreateStudent is the intake operation: identifier, graduation date and the
// initial course, inserted as one transaction. Only full-visibility roles may
// intake new students.
func (s *RecordsService) CreateStudent(ctx context.Context, scope model.Scope, studentID int64, graduationDate time.Time, courseID uint) error {
	if !scope.AllStudents {
		return util.NewAuthorizationError("student.intake",
			fmt.Sprintf("role %s may not register students", scope.Role))
	}
	if studentID <= 0 {
		return util.NewValidationError("student.id", "must be a positive identifier")
	}
	if graduationDate.IsZero() {
		return util.NewValidationError("student.graduation_date", "required")
	}
	if _, err := s.courses.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NewValidationError("student.course", fmt.Sprintf("course %d does not exist", courseID))
		}
		return err
	}
	exists, err := s.students.Exists(studentID)
	if err != nil {
		return err
	}
	if exists {
		return util.NewValidationError("student.id", fmt.Sprintf("identifier %d already in use", studentID))
	}

	release, err := s.locks.Acquire(ctx, studentID)
	if err != nil {
		return err
	}
	defer release()

	student := &model.Student{
		ID:             studentID,
		GraduationDate: graduationDate,
		Status:         model.StudentActive,
	}
	if err := s.students.CreateWithEnrollment(student, courseID); err != nil {
		return err
	}
	s.logger.Info("student registered",
		zap.Int64("studentId", studentID),
		zap.Uint("courseId", courseID))
	return nil
}

// BulkIntake registers students from a CSV stream with an
// id,graduation_date,course_id header. Each row is validated independently.
func (s *RecordsService) BulkIntake(ctx context.Context, scope model.Scope, r io.Reader) (*IntakeReport, error) {
	if !scope.AllStudents {
		return nil, util.NewAuthorizationError("student.intake",
			fmt.Sprintf("role %s may not register students", scope.Role))
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, util.NewValidationError("intake.csv", "missing header row")
	}
	if len(header) < 3 || header[0] != "id" || header[1] != "graduation_date" || header[2] != "course_id" {
		return nil, util.NewValidationError("intake.csv", "header must be id,graduation_date,course_id")
	}

	report := &IntakeReport{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			report.Failures = append(report.Failures, IntakeFailure{Line: line, Reason: "malformed row"})
			continue
		}

		id, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			report.Failures = append(report.Failures, IntakeFailure{Line: line, Reason: "invalid identifier"})
			continue
		}
		gradDate, err := util.ParseDate("student.graduation_date", record[1])
		if err != nil {
			report.Failures = append(report.Failures, IntakeFailure{Line: line, Reason: err.Error()})
			continue
		}
		courseID, err := strconv.ParseUint(record[2], 10, 32)
		if err != nil {
			report.Failures = append(report.Failures, IntakeFailure{Line: line, Reason: "invalid course id"})
			continue
		}

		if err := s.CreateStudent(ctx, scope, id, gradDate, uint(courseID)); err != nil {
			report.Failures = append(report.Failures, IntakeFailure{Line: line, Reason: err.Error()})
			continue
		}
		report.Created = append(report.Created, id)
	}
	return report, nil
}

// UpdateStudent edits graduation date and status under the per-student lock.
func (s *RecordsService) UpdateStudent(ctx context.Context, scope model.Scope, studentID int64, graduationDate *time.Time, status *model.StudentStatus) error {
	if err := RequireField(scope, model.FieldProfile); err != nil {
		return err
	}
	if err := RequireStudent(scope, studentID); err != nil {
		return err
	}
	if status != nil && *status != model.StudentActive && *status != model.StudentInactive {
		return util.NewValidationError("student.status", fmt.Sprintf("unrecognized status %q", *status))
	}

	release, err := s.locks.Acquire(ctx, studentID)
	if err != nil {
		return err
	}
	defer release()

	st, err := s.students.FindByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NewNotFoundError("student", fmt.Sprintf("student %d", studentID))
		}
		return err
	}
	if graduationDate != nil {
		st.GraduationDate = *graduationDate
	}
	if status != nil {
		st.Status = *status
	}
	return s.students.Update(st)
}

func (s *RecordsService) Enroll(ctx context.Context, scope model.Scope, studentID int64, courseID uint) error {
	if err := RequireStudent(scope, studentID); err != nil {
		return err
	}
	if err := RequireCourse(scope, courseID); err != nil {
		return err
	}
	if _, err := s.courses.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NewValidationError("enrollment.course", fmt.Sprintf("course %d does not exist", courseID))
		}
		return err
	}
	enrolled, err := s.students.IsEnrolled(studentID, courseID)
	if err != nil {
		return err
	}
	if enrolled {
		return util.NewValidationError("enrollment.unique",
			fmt.Sprintf("student %d is already enrolled in course %d", studentID, courseID))
	}

	release, err := s.locks.Acquire(ctx, studentID)
	if err != nil {
		return err
	}
	defer release()
	return s.students.Enroll(studentID, courseID)
}

func (s *RecordsService) Unenroll(ctx context.Context, scope model.Scope, studentID int64, courseID uint) error {
	if err := RequireStudent(scope, studentID); err != nil {
		return err
	}
	if err := RequireCourse(scope, courseID); err != nil {
		return err
	}

	release, err := s.locks.Acquire(ctx, studentID)
	if err != nil {
		return err
	}
	defer release()

	if err := s.students.Unenroll(studentID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NewNotFoundError("enrollment",
				fmt.Sprintf("student %d is not enrolled in course %d", studentID, courseID))
		}
		return err
	}
	return nil
}

func (s *RecordsService) ListCourses() ([]model.Course, error) {
	return s.courses.FindAll()
}

// RecordAttendance upserts one lecture record. The student must be enrolled
// in the course; re-recording the same lecture replaces the status.
func (s *RecordsService) RecordAttendance(ctx context.Context, scope model.Scope, studentID int64, courseID uint, lectureDate time.Time, status model.AttendanceStatus) error {
	if err := RequireField(scope, model.FieldAttendance); err != nil {
		return err
	}
	if err := RequireStudent(scope, studentID); err != nil {
		return err
	}
	if err := RequireCourse(scope, courseID); err != nil {
		return err
	}
	if !model.ValidAttendanceStatus(status) {
		return util.NewValidationError("attendance.status",
			fmt.Sprintf("must be Present, Absent or Late, got %q", status))
	}
	enrolled, err := s.students.IsEnrolled(studentID, courseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return util.NewValidationError("attendance.enrollment",
			fmt.Sprintf("student %d is not enrolled in course %d", studentID, courseID))
	}

	release, err := s.locks.Acquire(ctx, studentID)
	if err != nil {
		return err
	}
	defer release()

	if err := s.attendance.Upsert(&model.Attendance{
		StudentID:   studentID,
		CourseID:    courseID,
		LectureDate: lectureDate,
		Status:      status,
	}); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *RecordsService) ListAttendance(scope model.Scope, courseID *uint) ([]model.Attendance, error) {
	if err := RequireField(scope, model.FieldAttendance); err != nil {
		return nil, err
	}
	if courseID != nil {
		if err := RequireCourse(scope, *courseID); err != nil {
			return nil, err
		}
	}
	return s.attendance.FindInScope(scope, courseID)
}

func (s *RecordsService) CreateAssessment(scope model.Scope, title string, courseID uint, deadline time.Time, maxScore float64) (*model.Assessment, error) {
	if err := RequireField(scope, model.FieldSubmissions); err != nil {
		return nil, err
	}
	if err := RequireCourse(scope, courseID); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, util.NewValidationError("assessment.title", "required")
	}
	if maxScore <= 0 {
		return nil, util.NewValidationError("assessment.max_score",
			fmt.Sprintf("must be positive, got %g", maxScore))
	}
	if _, err := s.courses.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NewValidationError("assessment.course",
				fmt.Sprintf("course %d does not exist", courseID))
		}
		return nil, err
	}
	a := &model.Assessment{
		Title:    title,
		CourseID: courseID,
		Deadline: deadline,
		MaxScore: maxScore,
	}
	if err := s.assessments.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *RecordsService) ListAssessments(scope model.Scope, courseID uint) ([]model.Assessment, error) {
	if err := RequireField(scope, model.FieldSubmissions); err != nil {
		return nil, err
	}
	if err := RequireCourse(scope, courseID); err != nil {
		return nil, err
	}
	return s.assessments.FindByCourse(courseID)
}

// RecordSubmission upserts coursework for one (assessment, student) pair.
// The score must lie within [0, max_score] of the assessment.
func (s *RecordsService) RecordSubmission(ctx context.Context, scope model.Scope, assessmentID uint, studentID int64, submittedAt *time.Time, score float64) error {
	if err := RequireField(scope, model.FieldSubmissions); err != nil {
		return err
	}
	if err := RequireStudent(scope, studentID); err != nil {
		return err
	}
	assessment, err := s.assessments.FindByID(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NewNotFoundError("assessment", fmt.Sprintf("assessment %d", assessmentID))
		}
		return err
	}
	if err := RequireCourse(scope, assessment.CourseID); err != nil {
		return err
	}
	if score < 0 || score > assessment.MaxScore {
		return util.NewValidationError("submission.score",
			fmt.Sprintf("must be within [0,%g], got %g", assessment.MaxScore, score))
	}
	enrolled, err := s.students.IsEnrolled(studentID, assessment.CourseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return util.NewValidationError("submission.enrollment",
			fmt.Sprintf("student %d is not enrolled in course %d", studentID, assessment.CourseID))
	}

	release, err := s.locks.Acquire(ctx, studentID)
	if err != nil {
		return err
	}
	defer release()

	return s.assessments.UpsertSubmission(&model.Submission{
		AssessmentID: assessmentID,
		StudentID:    studentID,
		SubmittedAt:  submittedAt,
		Score:        score,
	})
}

func (s *RecordsService) ListSubmissions(scope model.Scope, assessmentID uint) ([]model.Submission, error) {
	if err := RequireField(scope, model.FieldSubmissions); err != nil {
		return nil, err
	}
	assessment, err := s.assessments.FindByID(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NewNotFoundError("assessment", fmt.Sprintf("assessment %d", assessmentID))
		}
		return nil, err
	}
	if err := RequireCourse(scope, assessment.CourseID); err != nil {
		return nil, err
	}
	return s.assessments.SubmissionsByAssessment(assessmentID, scope)
}

// LogSurveyResponse records one student's response for a survey date,
// creating the survey row on first use. Duplicate responses for the same
// survey are rejected rather than overwritten; a wellbeing answer is not
// editable after the fact.
func (s *RecordsService) LogSurveyResponse(ctx context.Context, scope model.Scope, studentID int64, passedDate time.Time, stressLevel int, sleepHours float64) error {
	if err := RequireField(scope, model.FieldWellbeing); err != nil {
		return err
	}
	if err := RequireStudent(scope, studentID); err != nil {
		return err
	}
	if stressLevel < 1 || stressLevel > 5 {
		return util.NewValidationError("survey.stress_level",
			fmt.Sprintf("must be within [1,5], got %d", stressLevel))
	}
	if sleepHours < 0 {
		return util.NewValidationError("survey.sleep_hours",
			fmt.Sprintf("must be >= 0, got %g", sleepHours))
	}
	exists, err := s.students.Exists(studentID)
	if err != nil {
		return err
	}
	if !exists {
		return util.NewNotFoundError("student", fmt.Sprintf("student %d", studentID))
	}

	release, err := s.locks.Acquire(ctx, studentID)
	if err != nil {
		return err
	}
	defer release()

	survey, err := s.surveys.GetOrCreateByDate(passedDate)
	if err != nil {
		return err
	}
	answered, err := s.surveys.HasResponse(studentID, survey.ID)
	if err != nil {
		return err
	}
	if answered {
		return util.NewValidationError("survey.unique",
			fmt.Sprintf("student %d already answered the %s survey", studentID, passedDate.Format(util.DateFormat)))
	}

	if err := s.surveys.CreateResponse(&model.WellbeingSurvey{
		StudentID:   studentID,
		SurveyID:    survey.ID,
		StressLevel: stressLevel,
		SleepHours:  sleepHours,
	}); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// ListSurveys lists the survey administrations on record.
func (s *RecordsService) ListSurveys(scope model.Scope) ([]model.Survey, error) {
	if err := RequireField(scope, model.FieldWellbeing); err != nil {
		return nil, err
	}
	return s.surveys.FindAll()
}

func (s *RecordsService) ListSurveyResponses(scope model.Scope, studentID int64) ([]model.SurveyRow, error) {
	if err := RequireField(scope, model.FieldWellbeing); err != nil {
		return nil, err
	}
	if err := RequireStudent(scope, studentID); err != nil {
		return nil, err
	}
	return s.surveys.ResponsesByStudent(studentID)
}
