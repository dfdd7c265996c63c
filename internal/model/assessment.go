package model

import "time"

// swagger:model Assessment
type Assessment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	CourseID  uint      `gorm:"not null;index" json:"courseId"`
	Deadline  time.Time `gorm:"type:date" json:"deadline"`
	MaxScore  float64   `gorm:"not null" json:"maxScore"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// Submission records coursework handed in for an assessment. SubmittedAt is
// nil while nothing has been handed in; a row may still exist to hold a
// provisional score of zero.
type Submission struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	AssessmentID uint       `gorm:"not null;uniqueIndex:idx_submission_assessment_student" json:"assessmentId"`
	StudentID    int64      `gorm:"not null;uniqueIndex:idx_submission_assessment_student;index" json:"studentId"`
	SubmittedAt  *time.Time `gorm:"type:date" json:"submittedAt"`
	Score        float64    `gorm:"not null;default:0" json:"score"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (Submission) TableName() string {
	return "submissions"
}
