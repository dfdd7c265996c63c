package model

import "time"

// Survey is one administration of the weekly wellbeing questionnaire, shared
// across students. Kept as a lookup table rather than an inline date so
// future survey types can attach extra attributes without a schema rework.
type Survey struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PassedDate time.Time `gorm:"type:date;not null;uniqueIndex" json:"passedDate"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Survey) TableName() string {
	return "surveys"
}

// WellbeingSurvey is a single student's response to one survey instance.
// Ranges are enforced at write time by the records service and again by the
// store constraints; the aggregation engine assumes them.
//
// swagger:model WellbeingSurvey
type WellbeingSurvey struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID   int64     `gorm:"not null;uniqueIndex:idx_wellbeing_student_survey" json:"studentId"`
	SurveyID    uint      `gorm:"not null;uniqueIndex:idx_wellbeing_student_survey" json:"surveyId"`
	StressLevel int       `gorm:"not null;check:stress_level BETWEEN 1 AND 5" json:"stressLevel"`
	SleepHours  float64   `gorm:"not null;check:sleep_hours >= 0" json:"sleepHours"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (WellbeingSurvey) TableName() string {
	return "wellbeing_surveys"
}
