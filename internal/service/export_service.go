package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wellbeing_backend/internal/model"
	"wellbeing_backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportResult carries a serialized dataset and, when a storage backend is
// configured, where the artifact was persisted.
type ExportResult struct {
	Filename string `json:"filename"`
	Data     []byte `json:"-"`
	Location string `json:"location,omitempty"`
	Rows     int    `json:"rows"`
}

// ExportService serializes exactly the row and field sets a scope admits.
// It performs no filtering of its own: the scope resolver decides what is
// visible and the repositories apply it, the exporter only renders.
type ExportService struct {
	students   StudentStore
	attendance AttendanceStore
	analytics  AnalyticsStore
	courses    CourseStore
	storage    StorageProvider
	logger     *zap.Logger
}

func NewExportService(
	students StudentStore,
	attendance AttendanceStore,
	analytics AnalyticsStore,
	courses CourseStore,
	storage StorageProvider,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		students:   students,
		attendance: attendance,
		analytics:  analytics,
		courses:    courses,
		storage:    storage,
		logger:     logger,
	}
}

// ExportStudents renders the in-scope student roster.
func (s *ExportService) ExportStudents(ctx context.Context, scope model.Scope) (*ExportResult, error) {
	if err := RequireExport(scope); err != nil {
		return nil, err
	}
	if err := RequireField(scope, model.FieldProfile); err != nil {
		return nil, err
	}

	students, err := s.students.FindInScope(scope)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	records := [][]string{{"id", "graduation_date", "status"}}
	for _, st := range students {
		records = append(records, []string{
			strconv.FormatInt(st.ID, 10),
			st.GraduationDate.Format(util.DateFormat),
			string(st.EffectiveStatus(now)),
		})
	}
	return s.finish(ctx, scope, "students", records)
}

// ExportAttendance renders in-scope attendance with course names.
func (s *ExportService) ExportAttendance(ctx context.Context, scope model.Scope) (*ExportResult, error) {
	if err := RequireExport(scope); err != nil {
		return nil, err
	}
	if err := RequireField(scope, model.FieldAttendance); err != nil {
		return nil, err
	}

	rows, err := s.attendance.FindInScope(scope, nil)
	if err != nil {
		return nil, err
	}
	names, err := s.courses.Names()
	if err != nil {
		return nil, err
	}

	records := [][]string{{"student_id", "course", "lecture_date", "status"}}
	for _, row := range rows {
		records = append(records, []string{
			strconv.FormatInt(row.StudentID, 10),
			names[row.CourseID],
			row.LectureDate.Format(util.DateFormat),
			string(row.Status),
		})
	}
	return s.finish(ctx, scope, "attendance", records)
}

// ExportSurveyResponses renders in-scope wellbeing responses. A scope
// without the wellbeing category is rejected before any row is read.
func (s *ExportService) ExportSurveyResponses(ctx context.Context, scope model.Scope) (*ExportResult, error) {
	if err := RequireExport(scope); err != nil {
		return nil, err
	}
	if err := RequireField(scope, model.FieldWellbeing); err != nil {
		return nil, err
	}

	rows, err := s.analytics.SurveyRows(scope)
	if err != nil {
		return nil, err
	}

	records := [][]string{{"student_id", "survey_date", "stress_level", "sleep_hours"}}
	for _, row := range rows {
		records = append(records, []string{
			strconv.FormatInt(row.StudentID, 10),
			row.PassedDate.Format(util.DateFormat),
			strconv.Itoa(row.StressLevel),
			strconv.FormatFloat(row.SleepHours, 'f', 1, 64),
		})
	}
	return s.finish(ctx, scope, "survey_responses", records)
}

// finish serializes the records and hands the artifact to the configured
// storage backend. Without a backend the result is served inline only.
func (s *ExportService) finish(ctx context.Context, scope model.Scope, dataset string, records [][]string) (*ExportResult, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}

	result := &ExportResult{
		Filename: fmt.Sprintf("%s_%s_%s_%s.csv",
			dataset,
			strings.ToLower(string(scope.Role)),
			time.Now().Format("20060102"),
			uuid.New().String()[:8]),
		Data: buf.Bytes(),
		Rows: len(records) - 1,
	}

	if s.storage != nil {
		location, err := s.storage.Save(ctx, result.Filename, result.Data, "text/csv")
		if err != nil {
			return nil, err
		}
		result.Location = location
	}

	s.logger.Info("dataset exported",
		zap.String("dataset", dataset),
		zap.String("role", string(scope.Role)),
		zap.Int("rows", result.Rows))
	return result, nil
}
