package service

import (
	"testing"

	"wellbeing_backend/internal/model"
	"wellbeing_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveScope(t *testing.T) {
	directorships := &fakeDirectorships{
		coursesByUser: map[uint][]uint{
			7: {1, 2},
		},
		studentsByCrs: map[uint][]int64{
			1: {575001, 575002},
			2: {575002, 575003},
		},
	}
	svc := NewScopeService(directorships)

	t.Run("wellbeing officer sees everything", func(t *testing.T) {
		scope, err := svc.Resolve(1, model.WellbeingOfficer)
		require.NoError(t, err)

		assert.True(t, scope.AllStudents)
		assert.True(t, scope.AllCourses)
		assert.True(t, scope.Dashboards)
		assert.True(t, scope.Export)
		assert.True(t, scope.HasField(model.FieldWellbeing))
	})

	t.Run("wellbeing team has data but no dashboards", func(t *testing.T) {
		scope, err := svc.Resolve(2, model.WellbeingTeam)
		require.NoError(t, err)

		assert.True(t, scope.AllStudents)
		assert.True(t, scope.HasField(model.FieldWellbeing))
		assert.False(t, scope.Dashboards)
		assert.True(t, scope.Export)
	})

	t.Run("course director limited to enrolled students", func(t *testing.T) {
		scope, err := svc.Resolve(7, model.CourseDirector)
		require.NoError(t, err)

		assert.False(t, scope.AllStudents)
		assert.Equal(t, []int64{575001, 575002, 575003}, scope.StudentIDs)
		assert.Equal(t, []uint{1, 2}, scope.CourseIDs)
		assert.True(t, scope.Dashboards)
		assert.False(t, scope.Export)
	})

	t.Run("course director never gets wellbeing fields", func(t *testing.T) {
		scope, err := svc.Resolve(7, model.CourseDirector)
		require.NoError(t, err)

		assert.False(t, scope.HasField(model.FieldWellbeing))
		assert.True(t, scope.HasField(model.FieldAttendance))
		assert.True(t, scope.HasField(model.FieldSubmissions))
		assert.True(t, scope.HasField(model.FieldProfile))
	})

	t.Run("director without courses has empty visibility", func(t *testing.T) {
		scope, err := svc.Resolve(99, model.CourseDirector)
		require.NoError(t, err)

		assert.Empty(t, scope.StudentIDs)
		assert.False(t, scope.AdmitsStudent(575001))
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		_, err := svc.Resolve(3, model.UserRole("registrar"))
		require.Error(t, err)
		assert.ErrorIs(t, err, util.ErrAuthorization)
		assert.Equal(t, "scope.role", util.RuleOf(err))
	})
}

func TestScopeGuards(t *testing.T) {
	scope := directorScope([]int64{575001}, []uint{1})

	t.Run("field guard names the rule", func(t *testing.T) {
		err := RequireField(scope, model.FieldWellbeing)
		require.Error(t, err)
		assert.ErrorIs(t, err, util.ErrAuthorization)
		assert.Equal(t, "scope.field", util.RuleOf(err))
	})

	t.Run("out of scope student reads as not found", func(t *testing.T) {
		err := RequireStudent(scope, 575009)
		require.Error(t, err)
		assert.ErrorIs(t, err, util.ErrNotFound)
	})

	t.Run("in scope passes", func(t *testing.T) {
		assert.NoError(t, RequireStudent(scope, 575001))
		assert.NoError(t, RequireCourse(scope, 1))
		assert.NoError(t, RequireDashboards(scope))
	})

	t.Run("export denied for directors", func(t *testing.T) {
		err := RequireExport(scope)
		require.Error(t, err)
		assert.ErrorIs(t, err, util.ErrAuthorization)
	})
}
