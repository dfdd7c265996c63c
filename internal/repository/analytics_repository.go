package repository

import (
	"wellbeing_backend/internal/model"

	"gorm.io/gorm"
)

// AnalyticsRepository serves the read-side datasets the aggregation engine
// consumes. Every query is scope-filtered at the SQL level so rows outside a
// caller's visibility never leave the database.
type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

func scopeStudents(q *gorm.DB, scope model.Scope, col string) *gorm.DB {
	if !scope.AllStudents {
		q = q.Where(col+" IN ?", scope.StudentIDs)
	}
	return q
}

// SurveyRows returns wellbeing responses admitted by the scope, newest pass
// date first so trend windows can slice the head of each student's series.
func (r *AnalyticsRepository) SurveyRows(scope model.Scope) ([]model.SurveyRow, error) {
	var rows []model.SurveyRow
	q := r.DB.Model(&model.WellbeingSurvey{}).
		Select("wellbeing_surveys.student_id, wellbeing_surveys.survey_id, surveys.passed_date, wellbeing_surveys.stress_level, wellbeing_surveys.sleep_hours").
		Joins("JOIN surveys ON surveys.id = wellbeing_surveys.survey_id").
		Order("wellbeing_surveys.student_id ASC, surveys.passed_date DESC, wellbeing_surveys.survey_id DESC")
	q = scopeStudents(q, scope, "wellbeing_surveys.student_id")
	err := q.Scan(&rows).Error
	return rows, err
}

// AttendanceRows returns attendance admitted by the scope.
func (r *AnalyticsRepository) AttendanceRows(scope model.Scope) ([]model.Attendance, error) {
	var rows []model.Attendance
	q := r.DB.Model(&model.Attendance{}).
		Order("student_id ASC, lecture_date ASC")
	q = scopeStudents(q, scope, "student_id")
	if !scope.AllCourses {
		q = q.Where("course_id IN ?", scope.CourseIDs)
	}
	err := q.Find(&rows).Error
	return rows, err
}

// ScoreRows returns scored submissions joined through assessments so each row
// carries its course.
func (r *AnalyticsRepository) ScoreRows(scope model.Scope) ([]model.ScoreRow, error) {
	var rows []model.ScoreRow
	q := r.DB.Model(&model.Submission{}).
		Select("submissions.student_id, assessments.course_id, submissions.score").
		Joins("JOIN assessments ON assessments.id = submissions.assessment_id").
		Where("submissions.submitted_at IS NOT NULL").
		Order("submissions.student_id ASC, assessments.course_id ASC")
	q = scopeStudents(q, scope, "submissions.student_id")
	if !scope.AllCourses {
		q = q.Where("assessments.course_id IN ?", scope.CourseIDs)
	}
	err := q.Scan(&rows).Error
	return rows, err
}

// AttendanceAndScores reads both correlation inputs inside one read
// transaction so the pair reflects a single snapshot.
func (r *AnalyticsRepository) AttendanceAndScores(scope model.Scope) ([]model.Attendance, []model.ScoreRow, error) {
	var (
		attendance []model.Attendance
		scores     []model.ScoreRow
	)
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		inner := &AnalyticsRepository{DB: tx}
		var err error
		if attendance, err = inner.AttendanceRows(scope); err != nil {
			return err
		}
		scores, err = inner.ScoreRows(scope)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return attendance, scores, nil
}
