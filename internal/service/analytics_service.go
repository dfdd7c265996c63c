package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"wellbeing_backend/internal/config"
	"wellbeing_backend/internal/model"

	"go.uber.org/zap"
)

// AnalyticsStore supplies the scope-filtered datasets the engine aggregates.
type AnalyticsStore interface {
	SurveyRows(scope model.Scope) ([]model.SurveyRow, error)
	AttendanceRows(scope model.Scope) ([]model.Attendance, error)
	ScoreRows(scope model.Scope) ([]model.ScoreRow, error)
	AttendanceAndScores(scope model.Scope) ([]model.Attendance, []model.ScoreRow, error)
}

// AnalyticsService derives attendance, stress and risk metrics from rows
// admitted by a caller's scope. It never queries outside the scope it is
// handed; denial of wellbeing-derived metrics is a rejection, not a silent
// filter.
//
// Thresholds are deployment policy and hot-reloadable; reads take the
// config lock so a reload mid-request cannot produce a torn threshold set.
type AnalyticsService struct {
	store    AnalyticsStore
	students StudentStore
	courses  CourseStore
	cache    *AnalyticsCache
	logger   *zap.Logger

	mu  sync.RWMutex
	cfg config.AnalyticsConfig
}

func NewAnalyticsService(
	store AnalyticsStore,
	students StudentStore,
	courses CourseStore,
	cache *AnalyticsCache,
	logger *zap.Logger,
	cfg config.AnalyticsConfig,
) *AnalyticsService {
	return &AnalyticsService{
		store:    store,
		students: students,
		courses:  courses,
		cache:    cache,
		logger:   logger,
		cfg:      cfg,
	}
}

// ApplyConfig swaps in reloaded thresholds. Registered as a config-watcher
// callback; invalid threshold sets are rejected and the previous set stays
// in force.
func (s *AnalyticsService) ApplyConfig(cfg *config.Config) {
	a := cfg.Analytics
	if a.StressThreshold < 1 || a.StressThreshold > 5 || a.StressWindow < 1 ||
		a.AttendanceFloor < 0 || a.AttendanceFloor > 1 || a.LowSleepHours < 0 {
		s.logger.Warn("ignoring reloaded analytics thresholds, values out of range",
			zap.Int("stressThreshold", a.StressThreshold),
			zap.Int("stressWindow", a.StressWindow),
			zap.Float64("lowSleepHours", a.LowSleepHours),
			zap.Float64("attendanceFloor", a.AttendanceFloor))
		return
	}
	s.mu.Lock()
	s.cfg = a
	s.mu.Unlock()
	s.cache.SetTTL(a.CacheTTL)
	s.logger.Info("analytics thresholds reloaded",
		zap.Int("stressThreshold", a.StressThreshold),
		zap.Int("stressWindow", a.StressWindow),
		zap.Float64("lowSleepHours", a.LowSleepHours),
		zap.Float64("attendanceFloor", a.AttendanceFloor))
}

func (s *AnalyticsService) thresholds() config.AnalyticsConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// narrowToStudent restricts a scope to one already-admitted student so the
// store-level filter does the row selection.
func narrowToStudent(scope model.Scope, studentID int64) model.Scope {
	scope.AllStudents = false
	scope.StudentIDs = []int64{studentID}
	return scope
}

// scopeKey fingerprints a scope for cache keying. Scopes with identical
// visibility share cache entries regardless of which user produced them.
func scopeKey(scope model.Scope) string {
	var b strings.Builder
	b.WriteString(string(scope.Role))
	if scope.AllStudents {
		b.WriteString(":s=*")
	} else {
		b.WriteString(":s=")
		for _, id := range scope.StudentIDs {
			fmt.Fprintf(&b, "%d,", id)
		}
	}
	if scope.AllCourses {
		b.WriteString(":c=*")
	} else {
		b.WriteString(":c=")
		for _, id := range scope.CourseIDs {
			fmt.Fprintf(&b, "%d,", id)
		}
	}
	return b.String()
}

// AttendanceRate computes count(Present)/count(recorded) for one student,
// optionally within one course. Zero recorded lectures yields an explicit
// no-data result, never NaN and never a default zero.
func (s *AnalyticsService) AttendanceRate(scope model.Scope, studentID int64, courseID *uint) (*model.AttendanceRateResult, error) {
	if err := RequireField(scope, model.FieldAttendance); err != nil {
		return nil, err
	}
	if err := RequireStudent(scope, studentID); err != nil {
		return nil, err
	}
	if courseID != nil {
		if err := RequireCourse(scope, *courseID); err != nil {
			return nil, err
		}
	}

	rows, err := s.store.AttendanceRows(narrowToStudent(scope, studentID))
	if err != nil {
		return nil, err
	}

	result := &model.AttendanceRateResult{StudentID: studentID, CourseID: courseID}
	for _, row := range rows {
		if courseID != nil && row.CourseID != *courseID {
			continue
		}
		result.Recorded++
		if row.Status == model.AttendancePresent {
			result.Present++
		}
	}
	if result.Recorded == 0 {
		return result, nil
	}
	result.HasData = true
	result.Rate = float64(result.Present) / float64(result.Recorded)
	return result, nil
}

// StressTrend returns the date-ordered stress series for one student plus
// the window classification. High stress means every response in the latest
// window sits at or above the threshold, and requires a full window of
// responses. Low sleep means the mean sleep over the latest responses (up to
// the window size) falls below the configured floor.
func (s *AnalyticsService) StressTrend(scope model.Scope, studentID int64) (*model.StressTrendResult, error) {
	if err := RequireField(scope, model.FieldWellbeing); err != nil {
		return nil, err
	}
	if err := RequireStudent(scope, studentID); err != nil {
		return nil, err
	}

	rows, err := s.store.SurveyRows(narrowToStudent(scope, studentID))
	if err != nil {
		return nil, err
	}
	return s.trendFromRows(studentID, rows), nil
}

// trendFromRows classifies a newest-first response series.
func (s *AnalyticsService) trendFromRows(studentID int64, newestFirst []model.SurveyRow) *model.StressTrendResult {
	cfg := s.thresholds()

	result := &model.StressTrendResult{StudentID: studentID}
	if len(newestFirst) == 0 {
		return result
	}

	// Series is reported oldest first.
	points := make([]model.StressPoint, len(newestFirst))
	for i, row := range newestFirst {
		points[len(newestFirst)-1-i] = model.StressPoint{
			SurveyID:    row.SurveyID,
			Date:        row.PassedDate,
			StressLevel: row.StressLevel,
			SleepHours:  row.SleepHours,
		}
	}
	result.Points = points

	window := cfg.StressWindow
	if window > len(newestFirst) {
		window = len(newestFirst)
	}

	if len(newestFirst) >= cfg.StressWindow {
		sustained := true
		for _, row := range newestFirst[:cfg.StressWindow] {
			if row.StressLevel < cfg.StressThreshold {
				sustained = false
				break
			}
		}
		result.HighStress = sustained
	}

	var sleepSum float64
	for _, row := range newestFirst[:window] {
		sleepSum += row.SleepHours
	}
	result.WindowMeanSleep = sleepSum / float64(window)
	result.LowSleep = result.WindowMeanSleep < cfg.LowSleepHours

	return result
}

// RiskFlags evaluates the independent risk conditions for one student. Each
// condition stays its own boolean; AtRisk is their disjunction.
func (s *AnalyticsService) RiskFlags(scope model.Scope, studentID int64) (*model.RiskFlags, error) {
	if err := RequireField(scope, model.FieldWellbeing); err != nil {
		return nil, err
	}
	if err := RequireStudent(scope, studentID); err != nil {
		return nil, err
	}

	rate, err := s.AttendanceRate(scope, studentID, nil)
	if err != nil {
		return nil, err
	}
	trend, err := s.StressTrend(scope, studentID)
	if err != nil {
		return nil, err
	}
	return s.combineFlags(studentID, rate, trend), nil
}

func (s *AnalyticsService) combineFlags(studentID int64, rate *model.AttendanceRateResult, trend *model.StressTrendResult) *model.RiskFlags {
	cfg := s.thresholds()

	flags := &model.RiskFlags{
		StudentID:  studentID,
		HighStress: trend.HighStress,
		LowSleep:   trend.LowSleep,
	}
	if rate.HasData {
		r := rate.Rate
		flags.AttendanceRate = &r
		flags.LowAttendance = r < cfg.AttendanceFloor
	}
	flags.AtRisk = flags.LowAttendance || flags.HighStress || flags.LowSleep
	return flags
}

// AtRiskStudents evaluates risk flags for every student in scope. The
// dashboard result is cached briefly; writes and purges invalidate it.
func (s *AnalyticsService) AtRiskStudents(ctx context.Context, scope model.Scope) ([]model.RiskFlags, error) {
	if err := RequireField(scope, model.FieldWellbeing); err != nil {
		return nil, err
	}

	cacheKey := "atrisk:" + scopeKey(scope)
	var cached []model.RiskFlags
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	students, err := s.students.FindInScope(scope)
	if err != nil {
		return nil, err
	}
	surveyRows, err := s.store.SurveyRows(scope)
	if err != nil {
		return nil, err
	}
	attendanceRows, err := s.store.AttendanceRows(scope)
	if err != nil {
		return nil, err
	}

	surveysByStudent := make(map[int64][]model.SurveyRow)
	for _, row := range surveyRows {
		surveysByStudent[row.StudentID] = append(surveysByStudent[row.StudentID], row)
	}
	attendanceByStudent := make(map[int64]*model.AttendanceRateResult)
	for _, row := range attendanceRows {
		r, ok := attendanceByStudent[row.StudentID]
		if !ok {
			r = &model.AttendanceRateResult{StudentID: row.StudentID}
			attendanceByStudent[row.StudentID] = r
		}
		r.Recorded++
		if row.Status == model.AttendancePresent {
			r.Present++
		}
	}

	results := make([]model.RiskFlags, 0, len(students))
	for _, st := range students {
		rate, ok := attendanceByStudent[st.ID]
		if !ok {
			rate = &model.AttendanceRateResult{StudentID: st.ID}
		} else {
			rate.HasData = true
			rate.Rate = float64(rate.Present) / float64(rate.Recorded)
		}
		trend := s.trendFromRows(st.ID, surveysByStudent[st.ID])
		results = append(results, *s.combineFlags(st.ID, rate, trend))
	}

	s.cache.Set(ctx, cacheKey, results)
	return results, nil
}

// CourseAttendanceAverages reports, per course, the mean of per-student
// attendance rates over in-scope students with at least one recorded lecture.
func (s *AnalyticsService) CourseAttendanceAverages(ctx context.Context, scope model.Scope) ([]model.CourseAttendanceAverage, error) {
	if err := RequireField(scope, model.FieldAttendance); err != nil {
		return nil, err
	}

	cacheKey := "course-attendance:" + scopeKey(scope)
	var cached []model.CourseAttendanceAverage
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	rows, err := s.store.AttendanceRows(scope)
	if err != nil {
		return nil, err
	}
	names, err := s.courses.Names()
	if err != nil {
		return nil, err
	}

	type key struct {
		courseID  uint
		studentID int64
	}
	type counts struct{ present, recorded int }
	perPair := make(map[key]*counts)
	for _, row := range rows {
		k := key{row.CourseID, row.StudentID}
		c, ok := perPair[k]
		if !ok {
			c = &counts{}
			perPair[k] = c
		}
		c.recorded++
		if row.Status == model.AttendancePresent {
			c.present++
		}
	}

	type agg struct {
		sum      float64
		students int
	}
	perCourse := make(map[uint]*agg)
	for k, c := range perPair {
		a, ok := perCourse[k.courseID]
		if !ok {
			a = &agg{}
			perCourse[k.courseID] = a
		}
		a.sum += float64(c.present) / float64(c.recorded)
		a.students++
	}

	results := make([]model.CourseAttendanceAverage, 0, len(perCourse))
	for courseID, a := range perCourse {
		results = append(results, model.CourseAttendanceAverage{
			CourseID:    courseID,
			CourseName:  names[courseID],
			AverageRate: a.sum / float64(a.students),
			Students:    a.students,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CourseID < results[j].CourseID })

	s.cache.Set(ctx, cacheKey, results)
	return results, nil
}

// SurveyStressAverages reports the cohort mean stress level per survey
// period, over in-scope students.
func (s *AnalyticsService) SurveyStressAverages(ctx context.Context, scope model.Scope) ([]model.SurveyStressAverage, error) {
	if err := RequireField(scope, model.FieldWellbeing); err != nil {
		return nil, err
	}

	cacheKey := "survey-stress:" + scopeKey(scope)
	var cached []model.SurveyStressAverage
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	rows, err := s.store.SurveyRows(scope)
	if err != nil {
		return nil, err
	}

	type agg struct {
		result model.SurveyStressAverage
		sum    int
	}
	perSurvey := make(map[uint]*agg)
	for _, row := range rows {
		a, ok := perSurvey[row.SurveyID]
		if !ok {
			a = &agg{result: model.SurveyStressAverage{
				SurveyID:   row.SurveyID,
				PassedDate: row.PassedDate,
			}}
			perSurvey[row.SurveyID] = a
		}
		a.sum += row.StressLevel
		a.result.Responses++
	}

	results := make([]model.SurveyStressAverage, 0, len(perSurvey))
	for _, a := range perSurvey {
		a.result.AverageStress = float64(a.sum) / float64(a.result.Responses)
		results = append(results, a.result)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].PassedDate.Before(results[j].PassedDate)
	})

	s.cache.Set(ctx, cacheKey, results)
	return results, nil
}

// AttendanceGradeCorrelation reports the Pearson correlation between
// per-student mean attendance rate and mean score, globally and per course.
// Both inputs are read from one store snapshot. A coefficient is reported
// only when at least two paired students exist and both series vary.
func (s *AnalyticsService) AttendanceGradeCorrelation(scope model.Scope) (*model.CorrelationReport, error) {
	if err := RequireField(scope, model.FieldAttendance); err != nil {
		return nil, err
	}
	if err := RequireField(scope, model.FieldSubmissions); err != nil {
		return nil, err
	}

	attendance, scores, err := s.store.AttendanceAndScores(scope)
	if err != nil {
		return nil, err
	}
	names, err := s.courses.Names()
	if err != nil {
		return nil, err
	}

	type pairKey struct {
		courseID  uint
		studentID int64
	}
	type rateCounts struct{ present, recorded int }
	type scoreCounts struct {
		sum float64
		n   int
	}

	attendanceByPair := make(map[pairKey]*rateCounts)
	for _, row := range attendance {
		k := pairKey{row.CourseID, row.StudentID}
		c, ok := attendanceByPair[k]
		if !ok {
			c = &rateCounts{}
			attendanceByPair[k] = c
		}
		c.recorded++
		if row.Status == model.AttendancePresent {
			c.present++
		}
	}
	scoresByPair := make(map[pairKey]*scoreCounts)
	for _, row := range scores {
		k := pairKey{row.CourseID, row.StudentID}
		c, ok := scoresByPair[k]
		if !ok {
			c = &scoreCounts{}
			scoresByPair[k] = c
		}
		c.sum += row.Score
		c.n++
	}

	// Per-student means across all courses feed the global coefficient.
	globalRate := make(map[int64]*rateCounts)
	for k, c := range attendanceByPair {
		g, ok := globalRate[k.studentID]
		if !ok {
			g = &rateCounts{}
			globalRate[k.studentID] = g
		}
		g.present += c.present
		g.recorded += c.recorded
	}
	globalScore := make(map[int64]*scoreCounts)
	for k, c := range scoresByPair {
		g, ok := globalScore[k.studentID]
		if !ok {
			g = &scoreCounts{}
			globalScore[k.studentID] = g
		}
		g.sum += c.sum
		g.n += c.n
	}

	var xs, ys []float64
	for studentID, rate := range globalRate {
		score, ok := globalScore[studentID]
		if !ok {
			continue
		}
		xs = append(xs, float64(rate.present)/float64(rate.recorded))
		ys = append(ys, score.sum/float64(score.n))
	}

	report := &model.CorrelationReport{GlobalR: pearson(xs, ys)}

	courseIDs := make(map[uint]bool)
	for k := range attendanceByPair {
		courseIDs[k.courseID] = true
	}
	for courseID := range courseIDs {
		var cxs, cys []float64
		for k, rate := range attendanceByPair {
			if k.courseID != courseID {
				continue
			}
			score, ok := scoresByPair[k]
			if !ok {
				continue
			}
			cxs = append(cxs, float64(rate.present)/float64(rate.recorded))
			cys = append(cys, score.sum/float64(score.n))
		}
		report.PerCourse = append(report.PerCourse, model.CourseCorrelation{
			CourseID:   courseID,
			CourseName: names[courseID],
			R:          pearson(cxs, cys),
			Students:   len(cxs),
		})
	}
	sort.Slice(report.PerCourse, func(i, j int) bool {
		return report.PerCourse[i].CourseID < report.PerCourse[j].CourseID
	})
	return report, nil
}

// StressGradeCorrelation reports the Pearson correlation between each
// student's latest reported stress level and their mean score, globally and
// per course. Requires both the wellbeing and submissions categories; a scope
// lacking either is rejected before any row is read.
func (s *AnalyticsService) StressGradeCorrelation(scope model.Scope) (*model.CorrelationReport, error) {
	if err := RequireField(scope, model.FieldWellbeing); err != nil {
		return nil, err
	}
	if err := RequireField(scope, model.FieldSubmissions); err != nil {
		return nil, err
	}

	surveys, err := s.store.SurveyRows(scope)
	if err != nil {
		return nil, err
	}
	scores, err := s.store.ScoreRows(scope)
	if err != nil {
		return nil, err
	}
	names, err := s.courses.Names()
	if err != nil {
		return nil, err
	}

	// Rows arrive newest first per student; the first row seen wins.
	latestStress := make(map[int64]float64)
	for _, row := range surveys {
		if _, ok := latestStress[row.StudentID]; !ok {
			latestStress[row.StudentID] = float64(row.StressLevel)
		}
	}

	type pairKey struct {
		courseID  uint
		studentID int64
	}
	type scoreCounts struct {
		sum float64
		n   int
	}
	scoresByPair := make(map[pairKey]*scoreCounts)
	globalScore := make(map[int64]*scoreCounts)
	for _, row := range scores {
		k := pairKey{row.CourseID, row.StudentID}
		c, ok := scoresByPair[k]
		if !ok {
			c = &scoreCounts{}
			scoresByPair[k] = c
		}
		c.sum += row.Score
		c.n++

		g, ok := globalScore[row.StudentID]
		if !ok {
			g = &scoreCounts{}
			globalScore[row.StudentID] = g
		}
		g.sum += row.Score
		g.n++
	}

	var xs, ys []float64
	for studentID, score := range globalScore {
		stress, ok := latestStress[studentID]
		if !ok {
			continue
		}
		xs = append(xs, stress)
		ys = append(ys, score.sum/float64(score.n))
	}
	report := &model.CorrelationReport{GlobalR: pearson(xs, ys)}

	courseIDs := make(map[uint]bool)
	for k := range scoresByPair {
		courseIDs[k.courseID] = true
	}
	for courseID := range courseIDs {
		var cxs, cys []float64
		for k, score := range scoresByPair {
			if k.courseID != courseID {
				continue
			}
			stress, ok := latestStress[k.studentID]
			if !ok {
				continue
			}
			cxs = append(cxs, stress)
			cys = append(cys, score.sum/float64(score.n))
		}
		report.PerCourse = append(report.PerCourse, model.CourseCorrelation{
			CourseID:   courseID,
			CourseName: names[courseID],
			R:          pearson(cxs, cys),
			Students:   len(cxs),
		})
	}
	sort.Slice(report.PerCourse, func(i, j int) bool {
		return report.PerCourse[i].CourseID < report.PerCourse[j].CourseID
	})
	return report, nil
}

// pearson returns the correlation coefficient of two equal-length series, or
// nil with fewer than two points or zero variance in either series.
func pearson(xs, ys []float64) *float64 {
	n := len(xs)
	if n < 2 {
		return nil
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return nil
	}
	r := cov / math.Sqrt(varX*varY)
	return &r
}
