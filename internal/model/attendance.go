package model

import "time"

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLate    AttendanceStatus = "Late"
)

func ValidAttendanceStatus(s AttendanceStatus) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// Attendance is one lecture record; unique per (student, course, date).
//
// swagger:model Attendance
type Attendance struct {
	ID          uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID   int64            `gorm:"not null;uniqueIndex:idx_attendance_student_course_date" json:"studentId"`
	CourseID    uint             `gorm:"not null;uniqueIndex:idx_attendance_student_course_date" json:"courseId"`
	LectureDate time.Time        `gorm:"type:date;not null;uniqueIndex:idx_attendance_student_course_date" json:"lectureDate"`
	Status      AttendanceStatus `gorm:"type:enum('Present','Absent','Late');not null" json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (Attendance) TableName() string {
	return "attendance"
}
