package model

import "time"

// swagger:model Course
type Course struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:100;unique;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseDirectorship links a Course Director user to a course they oversee.
// Uniqueness is on the (user, course) pair; a director may hold several
// courses and, in principle, a course may have several directors.
type CourseDirectorship struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_directorship_user_course" json:"userId"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_directorship_user_course" json:"courseId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (CourseDirectorship) TableName() string {
	return "course_directorships"
}
