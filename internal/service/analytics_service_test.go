package service

import (
	"context"
	"testing"
	"time"

	"wellbeing_backend/internal/config"
	"wellbeing_backend/internal/model"
	"wellbeing_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func defaultThresholds() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		StressThreshold: 4,
		StressWindow:    2,
		LowSleepHours:   6.0,
		AttendanceFloor: 0.5,
		CacheTTL:        time.Minute,
	}
}

type analyticsFixture struct {
	svc      *AnalyticsService
	students *fakeStudentStore
	store    *fakeAnalyticsStore
}

func newAnalyticsFixture() *analyticsFixture {
	students := newFakeStudentStore()
	store := &fakeAnalyticsStore{
		attendance: &fakeAttendanceStore{},
		surveys:    newFakeSurveyStore(),
	}
	courses := &fakeCourseStore{courses: map[uint]string{1: "Computing", 2: "Data Science"}}
	cache := NewAnalyticsCache(nil, zap.NewNop(), time.Minute)
	svc := NewAnalyticsService(store, students, courses, cache, zap.NewNop(), defaultThresholds())
	return &analyticsFixture{svc: svc, students: students, store: store}
}

func (f *analyticsFixture) addAttendance(studentID int64, courseID uint, day string, status model.AttendanceStatus) {
	f.store.attendance.rows = append(f.store.attendance.rows, model.Attendance{
		StudentID:   studentID,
		CourseID:    courseID,
		LectureDate: date(day),
		Status:      status,
	})
}

func (f *analyticsFixture) addSurvey(studentID int64, day string, stress int, sleep float64) {
	survey, _ := f.store.surveys.GetOrCreateByDate(date(day))
	f.store.surveys.responses = append(f.store.surveys.responses, model.WellbeingSurvey{
		StudentID:   studentID,
		SurveyID:    survey.ID,
		StressLevel: stress,
		SleepHours:  sleep,
	})
}

func TestAttendanceRate(t *testing.T) {
	t.Run("two of three lectures present", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1)
		f.addAttendance(575001, 1, "2026-01-05", model.AttendancePresent)
		f.addAttendance(575001, 1, "2026-01-12", model.AttendancePresent)
		f.addAttendance(575001, 1, "2026-01-19", model.AttendanceAbsent)

		result, err := f.svc.AttendanceRate(officerScope(), 575001, nil)
		require.NoError(t, err)

		assert.True(t, result.HasData)
		assert.Equal(t, 2, result.Present)
		assert.Equal(t, 3, result.Recorded)
		assert.InDelta(t, 2.0/3.0, result.Rate, 1e-9)
	})

	t.Run("late counts as not present", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1)
		f.addAttendance(575001, 1, "2026-01-05", model.AttendanceLate)
		f.addAttendance(575001, 1, "2026-01-12", model.AttendancePresent)

		result, err := f.svc.AttendanceRate(officerScope(), 575001, nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, result.Rate, 1e-9)
	})

	t.Run("no recorded lectures is explicit no data", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1)

		result, err := f.svc.AttendanceRate(officerScope(), 575001, nil)
		require.NoError(t, err)

		assert.False(t, result.HasData)
		assert.Zero(t, result.Rate)
		assert.Zero(t, result.Recorded)
	})

	t.Run("course filter restricts the count", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1, 2)
		f.addAttendance(575001, 1, "2026-01-05", model.AttendancePresent)
		f.addAttendance(575001, 2, "2026-01-05", model.AttendanceAbsent)

		courseID := uint(1)
		result, err := f.svc.AttendanceRate(officerScope(), 575001, &courseID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Recorded)
		assert.InDelta(t, 1.0, result.Rate, 1e-9)
	})
}

func TestStressTrend(t *testing.T) {
	t.Run("sustained high stress with short sleep is flagged", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575002, date("2027-06-30"), 1)
		f.addSurvey(575002, "2026-02-02", 5, 4.0)
		f.addSurvey(575002, "2026-02-09", 4, 5.0)

		trend, err := f.svc.StressTrend(officerScope(), 575002)
		require.NoError(t, err)

		assert.True(t, trend.HighStress)
		assert.True(t, trend.LowSleep)
		assert.InDelta(t, 4.5, trend.WindowMeanSleep, 1e-9)
		require.Len(t, trend.Points, 2)
		assert.Equal(t, 5, trend.Points[0].StressLevel)
		assert.Equal(t, 4, trend.Points[1].StressLevel)
	})

	t.Run("low stress is not flagged", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1)
		f.addSurvey(575001, "2026-02-02", 2, 8.0)
		f.addSurvey(575001, "2026-02-09", 1, 7.5)

		trend, err := f.svc.StressTrend(officerScope(), 575001)
		require.NoError(t, err)

		assert.False(t, trend.HighStress)
		assert.False(t, trend.LowSleep)
	})

	t.Run("one high reading does not sustain across the window", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575003, date("2027-06-30"), 1)
		f.addSurvey(575003, "2026-02-02", 2, 8.0)
		f.addSurvey(575003, "2026-02-09", 5, 8.0)

		trend, err := f.svc.StressTrend(officerScope(), 575003)
		require.NoError(t, err)
		assert.False(t, trend.HighStress)
	})

	t.Run("fewer responses than the window never flags high stress", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575003, date("2027-06-30"), 1)
		f.addSurvey(575003, "2026-02-09", 5, 8.0)

		trend, err := f.svc.StressTrend(officerScope(), 575003)
		require.NoError(t, err)
		assert.False(t, trend.HighStress)
	})

	t.Run("director scope is rejected, not filtered", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575002, date("2027-06-30"), 1)
		f.addSurvey(575002, "2026-02-02", 5, 4.0)

		_, err := f.svc.StressTrend(directorScope([]int64{575002}, []uint{1}), 575002)
		require.Error(t, err)
		assert.ErrorIs(t, err, util.ErrAuthorization)
	})
}

func TestRiskFlags(t *testing.T) {
	t.Run("stressed short sleeper is at risk", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575002, date("2027-06-30"), 1)
		f.addSurvey(575002, "2026-02-02", 5, 4.0)
		f.addSurvey(575002, "2026-02-09", 4, 5.0)
		f.addAttendance(575002, 1, "2026-01-05", model.AttendancePresent)
		f.addAttendance(575002, 1, "2026-01-12", model.AttendancePresent)

		flags, err := f.svc.RiskFlags(officerScope(), 575002)
		require.NoError(t, err)

		assert.True(t, flags.HighStress)
		assert.True(t, flags.LowSleep)
		assert.False(t, flags.LowAttendance)
		assert.True(t, flags.AtRisk)
	})

	t.Run("healthy student is not flagged", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1)
		f.addSurvey(575001, "2026-02-02", 2, 8.0)
		f.addSurvey(575001, "2026-02-09", 1, 7.5)
		f.addAttendance(575001, 1, "2026-01-05", model.AttendancePresent)
		f.addAttendance(575001, 1, "2026-01-12", model.AttendancePresent)

		flags, err := f.svc.RiskFlags(officerScope(), 575001)
		require.NoError(t, err)

		assert.False(t, flags.HighStress)
		assert.False(t, flags.LowSleep)
		assert.False(t, flags.LowAttendance)
		assert.False(t, flags.AtRisk)
	})

	t.Run("missing attendance data leaves the attendance flag unset", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1)
		f.addSurvey(575001, "2026-02-02", 2, 8.0)

		flags, err := f.svc.RiskFlags(officerScope(), 575001)
		require.NoError(t, err)

		assert.Nil(t, flags.AttendanceRate)
		assert.False(t, flags.LowAttendance)
	})
}

func TestAtRiskStudents(t *testing.T) {
	f := newAnalyticsFixture()
	f.students.add(575001, date("2027-06-30"), 1)
	f.students.add(575002, date("2027-06-30"), 1)
	f.addSurvey(575001, "2026-02-02", 2, 8.0)
	f.addSurvey(575001, "2026-02-09", 1, 7.5)
	f.addSurvey(575002, "2026-02-02", 5, 4.0)
	f.addSurvey(575002, "2026-02-09", 4, 5.0)

	results, err := f.svc.AtRiskStudents(context.Background(), officerScope())
	require.NoError(t, err)
	require.Len(t, results, 2)

	byID := map[int64]model.RiskFlags{}
	for _, r := range results {
		byID[r.StudentID] = r
	}
	assert.False(t, byID[575001].AtRisk)
	assert.True(t, byID[575002].AtRisk)
}

func TestCohortAggregates(t *testing.T) {
	t.Run("course attendance averages per-student rates", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1)
		f.students.add(575002, date("2027-06-30"), 1)
		// 575001: 1/1, 575002: 1/2 -> mean 0.75
		f.addAttendance(575001, 1, "2026-01-05", model.AttendancePresent)
		f.addAttendance(575002, 1, "2026-01-05", model.AttendancePresent)
		f.addAttendance(575002, 1, "2026-01-12", model.AttendanceAbsent)

		results, err := f.svc.CourseAttendanceAverages(context.Background(), officerScope())
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, uint(1), results[0].CourseID)
		assert.Equal(t, "Computing", results[0].CourseName)
		assert.Equal(t, 2, results[0].Students)
		assert.InDelta(t, 0.75, results[0].AverageRate, 1e-9)
	})

	t.Run("survey stress averages per period", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1)
		f.students.add(575002, date("2027-06-30"), 1)
		f.addSurvey(575001, "2026-02-02", 2, 8.0)
		f.addSurvey(575002, "2026-02-02", 4, 6.0)

		results, err := f.svc.SurveyStressAverages(context.Background(), officerScope())
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 2, results[0].Responses)
		assert.InDelta(t, 3.0, results[0].AverageStress, 1e-9)
	})

	t.Run("director scope cannot read cohort stress", func(t *testing.T) {
		f := newAnalyticsFixture()
		_, err := f.svc.SurveyStressAverages(context.Background(), directorScope([]int64{575001}, []uint{1}))
		require.Error(t, err)
		assert.ErrorIs(t, err, util.ErrAuthorization)
	})
}

func TestAttendanceGradeCorrelation(t *testing.T) {
	t.Run("perfectly aligned series correlate at one", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1)
		f.students.add(575002, date("2027-06-30"), 1)
		f.students.add(575003, date("2027-06-30"), 1)

		// rates 1.0, 0.5, 0.0 paired with scores 90, 70, 50
		f.addAttendance(575001, 1, "2026-01-05", model.AttendancePresent)
		f.addAttendance(575001, 1, "2026-01-12", model.AttendancePresent)
		f.addAttendance(575002, 1, "2026-01-05", model.AttendancePresent)
		f.addAttendance(575002, 1, "2026-01-12", model.AttendanceAbsent)
		f.addAttendance(575003, 1, "2026-01-05", model.AttendanceAbsent)
		f.addAttendance(575003, 1, "2026-01-12", model.AttendanceAbsent)
		f.store.scores = []model.ScoreRow{
			{StudentID: 575001, CourseID: 1, Score: 90},
			{StudentID: 575002, CourseID: 1, Score: 70},
			{StudentID: 575003, CourseID: 1, Score: 50},
		}

		report, err := f.svc.AttendanceGradeCorrelation(officerScope())
		require.NoError(t, err)
		require.NotNil(t, report.GlobalR)
		assert.InDelta(t, 1.0, *report.GlobalR, 1e-9)

		require.Len(t, report.PerCourse, 1)
		require.NotNil(t, report.PerCourse[0].R)
		assert.InDelta(t, 1.0, *report.PerCourse[0].R, 1e-9)
		assert.Equal(t, 3, report.PerCourse[0].Students)
	})

	t.Run("single paired student reports no coefficient", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1)
		f.addAttendance(575001, 1, "2026-01-05", model.AttendancePresent)
		f.store.scores = []model.ScoreRow{{StudentID: 575001, CourseID: 1, Score: 90}}

		report, err := f.svc.AttendanceGradeCorrelation(officerScope())
		require.NoError(t, err)
		assert.Nil(t, report.GlobalR)
	})

	t.Run("zero variance reports no coefficient", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1)
		f.students.add(575002, date("2027-06-30"), 1)
		f.addAttendance(575001, 1, "2026-01-05", model.AttendancePresent)
		f.addAttendance(575002, 1, "2026-01-05", model.AttendancePresent)
		f.store.scores = []model.ScoreRow{
			{StudentID: 575001, CourseID: 1, Score: 90},
			{StudentID: 575002, CourseID: 1, Score: 70},
		}

		report, err := f.svc.AttendanceGradeCorrelation(officerScope())
		require.NoError(t, err)
		assert.Nil(t, report.GlobalR)
	})
}

func TestStressGradeCorrelation(t *testing.T) {
	t.Run("latest stress against mean score correlates negatively", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1)
		f.students.add(575002, date("2027-06-30"), 1)
		f.students.add(575003, date("2027-06-30"), 1)

		// 575001's newer response supersedes the calm older one.
		f.addSurvey(575001, "2026-01-05", 1, 8.0)
		f.addSurvey(575001, "2026-01-12", 5, 4.0)
		f.addSurvey(575002, "2026-01-12", 3, 7.0)
		f.addSurvey(575003, "2026-01-12", 1, 8.0)
		f.store.scores = []model.ScoreRow{
			{StudentID: 575001, CourseID: 1, Score: 50},
			{StudentID: 575002, CourseID: 1, Score: 70},
			{StudentID: 575003, CourseID: 1, Score: 90},
		}

		report, err := f.svc.StressGradeCorrelation(officerScope())
		require.NoError(t, err)
		require.NotNil(t, report.GlobalR)
		assert.InDelta(t, -1.0, *report.GlobalR, 1e-9)

		require.Len(t, report.PerCourse, 1)
		require.NotNil(t, report.PerCourse[0].R)
		assert.InDelta(t, -1.0, *report.PerCourse[0].R, 1e-9)
		assert.Equal(t, 3, report.PerCourse[0].Students)
	})

	t.Run("students without responses are not paired", func(t *testing.T) {
		f := newAnalyticsFixture()
		f.students.add(575001, date("2027-06-30"), 1)
		f.students.add(575002, date("2027-06-30"), 1)
		f.addSurvey(575001, "2026-01-12", 4, 5.0)
		f.store.scores = []model.ScoreRow{
			{StudentID: 575001, CourseID: 1, Score: 60},
			{StudentID: 575002, CourseID: 1, Score: 90},
		}

		report, err := f.svc.StressGradeCorrelation(officerScope())
		require.NoError(t, err)
		assert.Nil(t, report.GlobalR)
		require.Len(t, report.PerCourse, 1)
		assert.Equal(t, 1, report.PerCourse[0].Students)
	})

	t.Run("director scope is rejected before any rows are read", func(t *testing.T) {
		f := newAnalyticsFixture()
		_, err := f.svc.StressGradeCorrelation(directorScope([]int64{575001}, []uint{1}))
		require.Error(t, err)
		assert.ErrorIs(t, err, util.ErrAuthorization)
	})
}

func TestThresholdReload(t *testing.T) {
	f := newAnalyticsFixture()
	f.students.add(575002, date("2027-06-30"), 1)
	f.addSurvey(575002, "2026-02-02", 3, 7.0)
	f.addSurvey(575002, "2026-02-09", 3, 7.0)

	trend, err := f.svc.StressTrend(officerScope(), 575002)
	require.NoError(t, err)
	assert.False(t, trend.HighStress)

	reloaded := &config.Config{Analytics: defaultThresholds()}
	reloaded.Analytics.StressThreshold = 3
	f.svc.ApplyConfig(reloaded)

	trend, err = f.svc.StressTrend(officerScope(), 575002)
	require.NoError(t, err)
	assert.True(t, trend.HighStress)

	t.Run("out of range reload is ignored", func(t *testing.T) {
		bad := &config.Config{Analytics: defaultThresholds()}
		bad.Analytics.StressThreshold = 9
		f.svc.ApplyConfig(bad)

		trend, err := f.svc.StressTrend(officerScope(), 575002)
		require.NoError(t, err)
		assert.True(t, trend.HighStress, "previous threshold set should stay in force")
	})
}
