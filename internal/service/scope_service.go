package service

import (
	"fmt"

	"wellbeing_backend/internal/model"
	"wellbeing_backend/internal/util"
)

// DirectorshipStore resolves which courses and students a Course Director
// may see, and records new directorships.
type DirectorshipStore interface {
	CourseIDsByDirector(userID uint) ([]uint, error)
	StudentIDsByCourses(courseIDs []uint) ([]int64, error)
	AssignDirector(userID, courseID uint) error
}

// ScopeService maps an authenticated identity to its visibility set. Every
// read, write, analytics and export path starts here; there is no
// default-permit branch, an unknown role is an authorization failure.
type ScopeService struct {
	directorships DirectorshipStore
}

func NewScopeService(directorships DirectorshipStore) *ScopeService {
	return &ScopeService{directorships: directorships}
}

// AssignDirector links a user to a course they direct. The pair is unique at
// the store level; re-assignment surfaces as a validation failure.
func (s *ScopeService) AssignDirector(userID, courseID uint) error {
	if userID == 0 || courseID == 0 {
		return util.NewValidationError("directorship", "user and course identifiers are required")
	}
	existing, err := s.directorships.CourseIDsByDirector(userID)
	if err != nil {
		return err
	}
	for _, cid := range existing {
		if cid == courseID {
			return util.NewValidationError("directorship.unique",
				fmt.Sprintf("user %d already directs course %d", userID, courseID))
		}
	}
	return s.directorships.AssignDirector(userID, courseID)
}

var allFields = []model.FieldCategory{
	model.FieldProfile,
	model.FieldAttendance,
	model.FieldSubmissions,
	model.FieldWellbeing,
}

// directorFields excludes the wellbeing category entirely. A director's
// scope never admits survey data, regardless of which students it covers.
var directorFields = []model.FieldCategory{
	model.FieldProfile,
	model.FieldAttendance,
	model.FieldSubmissions,
}

// Resolve builds the scope for one identity.
//
// Wellbeing Officer: every student, every course, every field category,
// dashboards and export. Wellbeing Team: same data visibility, export
// allowed, but dashboards withheld. Course Director: only students enrolled
// in directed courses, no wellbeing fields, dashboards over that cohort, no
// export.
func (s *ScopeService) Resolve(userID uint, role model.UserRole) (model.Scope, error) {
	switch role {
	case model.WellbeingOfficer:
		return model.Scope{
			Role:        role,
			AllStudents: true,
			AllCourses:  true,
			Fields:      allFields,
			Dashboards:  true,
			Export:      true,
		}, nil

	case model.WellbeingTeam:
		return model.Scope{
			Role:        role,
			AllStudents: true,
			AllCourses:  true,
			Fields:      allFields,
			Dashboards:  false,
			Export:      true,
		}, nil

	case model.CourseDirector:
		courseIDs, err := s.directorships.CourseIDsByDirector(userID)
		if err != nil {
			return model.Scope{}, err
		}
		studentIDs, err := s.directorships.StudentIDsByCourses(courseIDs)
		if err != nil {
			return model.Scope{}, err
		}
		return model.Scope{
			Role:        role,
			AllStudents: false,
			StudentIDs:  studentIDs,
			AllCourses:  false,
			CourseIDs:   courseIDs,
			Fields:      directorFields,
			Dashboards:  true,
			Export:      false,
		}, nil
	}

	return model.Scope{}, util.NewAuthorizationError(
		"scope.role", fmt.Sprintf("unrecognized role %q", role))
}

// RequireField rejects access to a field category the scope does not carry.
func RequireField(scope model.Scope, f model.FieldCategory) error {
	if !scope.HasField(f) {
		return util.NewAuthorizationError(
			"scope.field", fmt.Sprintf("role %s may not access %s data", scope.Role, f))
	}
	return nil
}

// RequireStudent rejects access to a student outside the scope. The denial is
// indistinguishable from the student not existing.
func RequireStudent(scope model.Scope, studentID int64) error {
	if !scope.AdmitsStudent(studentID) {
		return util.NewNotFoundError(
			"scope.student", fmt.Sprintf("student %d", studentID))
	}
	return nil
}

// RequireCourse rejects access to a course outside the scope.
func RequireCourse(scope model.Scope, courseID uint) error {
	if !scope.AdmitsCourse(courseID) {
		return util.NewNotFoundError(
			"scope.course", fmt.Sprintf("course %d", courseID))
	}
	return nil
}

// RequireDashboards gates the aggregation engine.
func RequireDashboards(scope model.Scope) error {
	if !scope.Dashboards {
		return util.NewAuthorizationError(
			"scope.dashboards", fmt.Sprintf("role %s may not run dashboards", scope.Role))
	}
	return nil
}

// RequireExport gates the export surface.
func RequireExport(scope model.Scope) error {
	if !scope.Export {
		return util.NewAuthorizationError(
			"scope.export", fmt.Sprintf("role %s may not export data", scope.Role))
	}
	return nil
}
