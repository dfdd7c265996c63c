package repository

import (
	"wellbeing_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceRepository struct {
	DB *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{DB: db}
}

// Upsert records one lecture's status, replacing any existing row for the
// same (student, course, date).
func (r *AttendanceRepository) Upsert(a *model.Attendance) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "student_id"}, {Name: "course_id"}, {Name: "lecture_date"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(a).Error
}

// FindInScope lists attendance rows admitted by the scope, optionally
// restricted to one course.
func (r *AttendanceRepository) FindInScope(scope model.Scope, courseID *uint) ([]model.Attendance, error) {
	var rows []model.Attendance
	q := r.DB.Order("student_id ASC, lecture_date ASC")
	if !scope.AllStudents {
		q = q.Where("student_id IN ?", scope.StudentIDs)
	}
	if !scope.AllCourses {
		q = q.Where("course_id IN ?", scope.CourseIDs)
	}
	if courseID != nil {
		q = q.Where("course_id = ?", *courseID)
	}
	err := q.Find(&rows).Error
	return rows, err
}
