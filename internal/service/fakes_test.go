package service

import (
	"sort"
	"time"

	"wellbeing_backend/internal/model"

	"gorm.io/gorm"
)

// In-memory store fakes. Each fake applies the same scope filtering its gorm
// counterpart performs in SQL.

type fakeDirectorships struct {
	coursesByUser  map[uint][]uint
	studentsByCrs  map[uint][]int64
	resolveFailure error
}

func (f *fakeDirectorships) CourseIDsByDirector(userID uint) ([]uint, error) {
	if f.resolveFailure != nil {
		return nil, f.resolveFailure
	}
	return f.coursesByUser[userID], nil
}

func (f *fakeDirectorships) AssignDirector(userID, courseID uint) error {
	if f.coursesByUser == nil {
		f.coursesByUser = map[uint][]uint{}
	}
	f.coursesByUser[userID] = append(f.coursesByUser[userID], courseID)
	return nil
}

func (f *fakeDirectorships) StudentIDsByCourses(courseIDs []uint) ([]int64, error) {
	if f.resolveFailure != nil {
		return nil, f.resolveFailure
	}
	seen := map[int64]bool{}
	var ids []int64
	for _, cid := range courseIDs {
		for _, sid := range f.studentsByCrs[cid] {
			if !seen[sid] {
				seen[sid] = true
				ids = append(ids, sid)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakeStudentStore struct {
	students    map[int64]*model.Student
	enrollments map[int64][]uint
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{
		students:    map[int64]*model.Student{},
		enrollments: map[int64][]uint{},
	}
}

func (f *fakeStudentStore) add(id int64, graduation time.Time, courses ...uint) {
	f.students[id] = &model.Student{ID: id, GraduationDate: graduation, Status: model.StudentActive}
	f.enrollments[id] = courses
}

func (f *fakeStudentStore) FindByID(id int64) (*model.Student, error) {
	st, ok := f.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *st
	return &copied, nil
}

func (f *fakeStudentStore) Exists(id int64) (bool, error) {
	_, ok := f.students[id]
	return ok, nil
}

func (f *fakeStudentStore) FindInScope(scope model.Scope) ([]model.Student, error) {
	var out []model.Student
	for _, st := range f.students {
		if scope.AdmitsStudent(st.ID) {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStudentStore) CreateWithEnrollment(student *model.Student, courseID uint) error {
	f.students[student.ID] = student
	f.enrollments[student.ID] = []uint{courseID}
	return nil
}

func (f *fakeStudentStore) Update(student *model.Student) error {
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentStore) Enroll(studentID int64, courseID uint) error {
	f.enrollments[studentID] = append(f.enrollments[studentID], courseID)
	return nil
}

func (f *fakeStudentStore) Unenroll(studentID int64, courseID uint) error {
	courses := f.enrollments[studentID]
	for i, cid := range courses {
		if cid == courseID {
			f.enrollments[studentID] = append(courses[:i], courses[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeStudentStore) IsEnrolled(studentID int64, courseID uint) (bool, error) {
	for _, cid := range f.enrollments[studentID] {
		if cid == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentStore) CourseIDsByStudent(studentID int64) ([]uint, error) {
	return f.enrollments[studentID], nil
}

type fakeCourseStore struct {
	courses map[uint]string
}

func (f *fakeCourseStore) FindByID(id uint) (*model.Course, error) {
	name, ok := f.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Course{ID: id, Name: name}, nil
}

func (f *fakeCourseStore) FindAll() ([]model.Course, error) {
	var out []model.Course
	for id, name := range f.courses {
		out = append(out, model.Course{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCourseStore) Names() (map[uint]string, error) {
	return f.courses, nil
}

type fakeAttendanceStore struct {
	rows []model.Attendance
}

func (f *fakeAttendanceStore) Upsert(a *model.Attendance) error {
	for i, row := range f.rows {
		if row.StudentID == a.StudentID && row.CourseID == a.CourseID && row.LectureDate.Equal(a.LectureDate) {
			f.rows[i].Status = a.Status
			return nil
		}
	}
	f.rows = append(f.rows, *a)
	return nil
}

func (f *fakeAttendanceStore) FindInScope(scope model.Scope, courseID *uint) ([]model.Attendance, error) {
	var out []model.Attendance
	for _, row := range f.rows {
		if !scope.AdmitsStudent(row.StudentID) || !scope.AdmitsCourse(row.CourseID) {
			continue
		}
		if courseID != nil && row.CourseID != *courseID {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

type fakeAssessmentStore struct {
	assessments map[uint]*model.Assessment
	submissions []model.Submission
}

func newFakeAssessmentStore() *fakeAssessmentStore {
	return &fakeAssessmentStore{assessments: map[uint]*model.Assessment{}}
}

func (f *fakeAssessmentStore) Create(a *model.Assessment) error {
	a.ID = uint(len(f.assessments) + 1)
	f.assessments[a.ID] = a
	return nil
}

func (f *fakeAssessmentStore) FindByID(id uint) (*model.Assessment, error) {
	a, ok := f.assessments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeAssessmentStore) FindByCourse(courseID uint) ([]model.Assessment, error) {
	var out []model.Assessment
	for _, a := range f.assessments {
		if a.CourseID == courseID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAssessmentStore) UpsertSubmission(s *model.Submission) error {
	for i, row := range f.submissions {
		if row.AssessmentID == s.AssessmentID && row.StudentID == s.StudentID {
			f.submissions[i].Score = s.Score
			f.submissions[i].SubmittedAt = s.SubmittedAt
			return nil
		}
	}
	f.submissions = append(f.submissions, *s)
	return nil
}

func (f *fakeAssessmentStore) SubmissionsByAssessment(assessmentID uint, scope model.Scope) ([]model.Submission, error) {
	var out []model.Submission
	for _, row := range f.submissions {
		if row.AssessmentID == assessmentID && scope.AdmitsStudent(row.StudentID) {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeSurveyStore struct {
	surveys   map[string]*model.Survey
	responses []model.WellbeingSurvey
	nextID    uint
}

func newFakeSurveyStore() *fakeSurveyStore {
	return &fakeSurveyStore{surveys: map[string]*model.Survey{}}
}

func (f *fakeSurveyStore) GetOrCreateByDate(date time.Time) (*model.Survey, error) {
	key := date.Format("2006-01-02")
	if s, ok := f.surveys[key]; ok {
		return s, nil
	}
	f.nextID++
	s := &model.Survey{ID: f.nextID, PassedDate: date}
	f.surveys[key] = s
	return s, nil
}

func (f *fakeSurveyStore) FindAll() ([]model.Survey, error) {
	var out []model.Survey
	for _, s := range f.surveys {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PassedDate.Before(out[j].PassedDate) })
	return out, nil
}

func (f *fakeSurveyStore) HasResponse(studentID int64, surveyID uint) (bool, error) {
	for _, r := range f.responses {
		if r.StudentID == studentID && r.SurveyID == surveyID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSurveyStore) CreateResponse(resp *model.WellbeingSurvey) error {
	f.responses = append(f.responses, *resp)
	return nil
}

func (f *fakeSurveyStore) ResponsesByStudent(studentID int64) ([]model.SurveyRow, error) {
	var out []model.SurveyRow
	for _, r := range f.responses {
		if r.StudentID != studentID {
			continue
		}
		out = append(out, f.toRow(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PassedDate.After(out[j].PassedDate) })
	return out, nil
}

func (f *fakeSurveyStore) toRow(r model.WellbeingSurvey) model.SurveyRow {
	var passed time.Time
	for _, s := range f.surveys {
		if s.ID == r.SurveyID {
			passed = s.PassedDate
		}
	}
	return model.SurveyRow{
		StudentID:   r.StudentID,
		SurveyID:    r.SurveyID,
		PassedDate:  passed,
		StressLevel: r.StressLevel,
		SleepHours:  r.SleepHours,
	}
}

// fakeAnalyticsStore feeds the aggregation engine from the other fakes.
type fakeAnalyticsStore struct {
	attendance *fakeAttendanceStore
	surveys    *fakeSurveyStore
	scores     []model.ScoreRow
}

func (f *fakeAnalyticsStore) SurveyRows(scope model.Scope) ([]model.SurveyRow, error) {
	var out []model.SurveyRow
	for _, r := range f.surveys.responses {
		if !scope.AdmitsStudent(r.StudentID) {
			continue
		}
		out = append(out, f.surveys.toRow(r))
	}
	// newest first per student, matching the SQL ordering
	sort.Slice(out, func(i, j int) bool {
		if out[i].StudentID != out[j].StudentID {
			return out[i].StudentID < out[j].StudentID
		}
		return out[i].PassedDate.After(out[j].PassedDate)
	})
	return out, nil
}

func (f *fakeAnalyticsStore) AttendanceRows(scope model.Scope) ([]model.Attendance, error) {
	return f.attendance.FindInScope(scope, nil)
}

func (f *fakeAnalyticsStore) ScoreRows(scope model.Scope) ([]model.ScoreRow, error) {
	var out []model.ScoreRow
	for _, row := range f.scores {
		if scope.AdmitsStudent(row.StudentID) && scope.AdmitsCourse(row.CourseID) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeAnalyticsStore) AttendanceAndScores(scope model.Scope) ([]model.Attendance, []model.ScoreRow, error) {
	attendance, err := f.AttendanceRows(scope)
	if err != nil {
		return nil, nil, err
	}
	scores, err := f.ScoreRows(scope)
	if err != nil {
		return nil, nil, err
	}
	return attendance, scores, nil
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func officerScope() model.Scope {
	return model.Scope{
		Role:        model.WellbeingOfficer,
		AllStudents: true,
		AllCourses:  true,
		Fields: []model.FieldCategory{
			model.FieldProfile, model.FieldAttendance,
			model.FieldSubmissions, model.FieldWellbeing,
		},
		Dashboards: true,
		Export:     true,
	}
}

func directorScope(studentIDs []int64, courseIDs []uint) model.Scope {
	return model.Scope{
		Role:       model.CourseDirector,
		StudentIDs: studentIDs,
		CourseIDs:  courseIDs,
		Fields: []model.FieldCategory{
			model.FieldProfile, model.FieldAttendance, model.FieldSubmissions,
		},
		Dashboards: true,
		Export:     false,
	}
}
