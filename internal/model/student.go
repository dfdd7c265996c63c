package model

import "time"

type StudentStatus string

const (
	StudentActive   StudentStatus = "Active"
	StudentInactive StudentStatus = "Inactive"
)

// Student carries no personal-identifying fields beyond the external
// identifier (anonymity requirement). The identifier is assigned at intake
// and never reused after purge.
//
// No soft-delete column: retention purges are hard deletes.
//
// swagger:model Student
type Student struct {
	ID             int64         `gorm:"primaryKey;autoIncrement:false" json:"id"`
	GraduationDate time.Time     `gorm:"type:date;not null" json:"graduationDate"`
	Status         StudentStatus `gorm:"type:enum('Active','Inactive');default:'Active'" json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

func (Student) TableName() string {
	return "students"
}

// EffectiveStatus evaluates the Active -> Inactive transition at read time:
// a student whose graduation date has passed is Inactive regardless of the
// stored column, which may lag until the next edit or retention run.
func (s *Student) EffectiveStatus(now time.Time) StudentStatus {
	if s.GraduationDate.Before(truncateToDay(now)) {
		return StudentInactive
	}
	return s.Status
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Enrollment is the many-to-many membership between students and courses.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID int64     `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"studentId"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"courseId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
