package model

import (
	"time"
)

type UserRole string

const (
	WellbeingOfficer UserRole = "wellbeing_officer"
	WellbeingTeam    UserRole = "wellbeing_team"
	CourseDirector   UserRole = "course_director"
)

// ParseRole maps a role code from a registration request to the closed role
// set. Unknown codes return false; there is no default role.
func ParseRole(code string) (UserRole, bool) {
	switch UserRole(code) {
	case WellbeingOfficer, WellbeingTeam, CourseDirector:
		return UserRole(code), true
	}
	return "", false
}

// swagger:model User
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"size:50;unique;not null" json:"username"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('wellbeing_officer','wellbeing_team','course_director');not null" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
