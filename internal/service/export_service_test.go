package service

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"wellbeing_backend/internal/model"
	"wellbeing_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newExportFixture() (*ExportService, *fakeStudentStore, *fakeAnalyticsStore) {
	students := newFakeStudentStore()
	attendance := &fakeAttendanceStore{}
	analytics := &fakeAnalyticsStore{attendance: attendance, surveys: newFakeSurveyStore()}
	courses := &fakeCourseStore{courses: map[uint]string{1: "Computing"}}

	svc := NewExportService(students, attendance, analytics, courses, nil, zap.NewNop())
	return svc, students, analytics
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportStudents(t *testing.T) {
	ctx := context.Background()

	t.Run("roster rendered with header", func(t *testing.T) {
		svc, students, _ := newExportFixture()
		students.add(575001, date("2027-06-30"), 1)
		students.add(575002, date("2027-06-30"), 1)

		result, err := svc.ExportStudents(ctx, officerScope())
		require.NoError(t, err)

		records := parseCSV(t, result.Data)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"id", "graduation_date", "status"}, records[0])
		assert.Equal(t, "575001", records[1][0])
		assert.Equal(t, 2, result.Rows)
	})

	t.Run("director export denied", func(t *testing.T) {
		svc, students, _ := newExportFixture()
		students.add(575001, date("2027-06-30"), 1)

		_, err := svc.ExportStudents(ctx, directorScope([]int64{575001}, []uint{1}))
		require.Error(t, err)
		assert.ErrorIs(t, err, util.ErrAuthorization)
		assert.Equal(t, "scope.export", util.RuleOf(err))
	})
}

func TestExportSurveyResponses(t *testing.T) {
	ctx := context.Background()

	t.Run("wellbeing rows rendered for full scope", func(t *testing.T) {
		svc, students, analytics := newExportFixture()
		students.add(575001, date("2027-06-30"), 1)
		survey, _ := analytics.surveys.GetOrCreateByDate(date("2026-02-02"))
		analytics.surveys.responses = append(analytics.surveys.responses, model.WellbeingSurvey{
			StudentID: 575001, SurveyID: survey.ID, StressLevel: 4, SleepHours: 5.5,
		})

		result, err := svc.ExportSurveyResponses(ctx, officerScope())
		require.NoError(t, err)

		records := parseCSV(t, result.Data)
		require.Len(t, records, 2)
		assert.Equal(t, []string{"student_id", "survey_date", "stress_level", "sleep_hours"}, records[0])
		assert.Equal(t, []string{"575001", "2026-02-02", "4", "5.5"}, records[1])
	})

	t.Run("team may export wellbeing data without dashboards", func(t *testing.T) {
		svc, students, _ := newExportFixture()
		students.add(575001, date("2027-06-30"), 1)

		team := officerScope()
		team.Role = model.WellbeingTeam
		team.Dashboards = false

		_, err := svc.ExportSurveyResponses(ctx, team)
		assert.NoError(t, err)
	})
}

func TestExportAttendance(t *testing.T) {
	svc, students, analytics := newExportFixture()
	students.add(575001, date("2027-06-30"), 1)
	analytics.attendance.rows = []model.Attendance{
		{StudentID: 575001, CourseID: 1, LectureDate: date("2026-01-05"), Status: model.AttendancePresent},
	}

	result, err := svc.ExportAttendance(context.Background(), officerScope())
	require.NoError(t, err)

	records := parseCSV(t, result.Data)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"575001", "Computing", "2026-01-05", "Present"}, records[1])
}
