package model

import "time"

// AttendanceRateResult reports count(Present)/count(recorded lectures) for a
// student, optionally restricted to one course. HasData distinguishes "no
// recorded lectures" from a genuine zero rate; Rate is meaningful only when
// HasData is true and always lies in [0,1].
type AttendanceRateResult struct {
	StudentID int64   `json:"studentId"`
	CourseID  *uint   `json:"courseId,omitempty"`
	Present   int     `json:"present"`
	Recorded  int     `json:"recorded"`
	Rate      float64 `json:"rate"`
	HasData   bool    `json:"hasData"`
}

// StressPoint is one survey response in date order.
type StressPoint struct {
	SurveyID    uint      `json:"surveyId"`
	Date        time.Time `json:"date"`
	StressLevel int       `json:"stressLevel"`
	SleepHours  float64   `json:"sleepHours"`
}

// StressTrendResult is the ordered stress series for a student plus the
// window classification against the configured thresholds.
type StressTrendResult struct {
	StudentID       int64         `json:"studentId"`
	Points          []StressPoint `json:"points"`
	HighStress      bool          `json:"highStress"`
	LowSleep        bool          `json:"lowSleep"`
	WindowMeanSleep float64       `json:"windowMeanSleep"`
}

// RiskFlags keeps each risk condition as its own boolean so callers can
// explain why a student was flagged; AtRisk is the disjunction, never a
// merged score.
type RiskFlags struct {
	StudentID      int64    `json:"studentId"`
	AttendanceRate *float64 `json:"attendanceRate,omitempty"`
	LowAttendance  bool     `json:"lowAttendance"`
	HighStress     bool     `json:"highStress"`
	LowSleep       bool     `json:"lowSleep"`
	AtRisk         bool     `json:"atRisk"`
}

// CourseAttendanceAverage is the cohort mean of per-student attendance rates
// for one course, over in-scope students with at least one recorded lecture.
type CourseAttendanceAverage struct {
	CourseID    uint    `json:"courseId"`
	CourseName  string  `json:"courseName"`
	AverageRate float64 `json:"averageRate"`
	Students    int     `json:"students"`
}

// SurveyStressAverage is the cohort mean stress level for one survey period.
type SurveyStressAverage struct {
	SurveyID      uint      `json:"surveyId"`
	PassedDate    time.Time `json:"passedDate"`
	AverageStress float64   `json:"averageStress"`
	Responses     int       `json:"responses"`
}

// CourseCorrelation is the per-course Pearson R between mean attendance and
// mean score; R is nil when fewer than two paired students exist or either
// series has zero variance.
type CourseCorrelation struct {
	CourseID   uint     `json:"courseId"`
	CourseName string   `json:"courseName"`
	R          *float64 `json:"r"`
	Students   int      `json:"students"`
}

// CorrelationReport joins attendance and submission data across the scope.
type CorrelationReport struct {
	GlobalR   *float64            `json:"globalR"`
	PerCourse []CourseCorrelation `json:"perCourse"`
}

// SurveyRow is the flat join of a wellbeing response with its survey date,
// the shape the aggregation engine consumes.
type SurveyRow struct {
	StudentID   int64     `json:"studentId"`
	SurveyID    uint      `json:"surveyId"`
	PassedDate  time.Time `json:"passedDate"`
	StressLevel int       `json:"stressLevel"`
	SleepHours  float64   `json:"sleepHours"`
}

// ScoreRow is a recorded submission score joined with the owning course.
type ScoreRow struct {
	StudentID int64   `json:"studentId"`
	CourseID  uint    `json:"courseId"`
	Score     float64 `json:"score"`
}

// PurgeFailure reports one student whose purge unit could not complete.
type PurgeFailure struct {
	StudentID int64  `json:"studentId"`
	Reason    string `json:"reason"`
}

// PurgeReport is the outcome of one retention run. Failed units never abort
// the batch; they are listed here per student.
type PurgeReport struct {
	RunAt     time.Time      `json:"runAt"`
	PurgedIDs []int64        `json:"purgedIds"`
	Failures  []PurgeFailure `json:"failures"`
}
