package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", NewValidationError("survey.stress_level", "must be within [1,5]"), ErrValidation},
		{"authorization", NewAuthorizationError("scope.field", "no wellbeing access"), ErrAuthorization},
		{"not found", NewNotFoundError("student", "student 575001"), ErrNotFound},
		{"retention", NewRetentionIntegrityError("retention.purge_unit", "constraint"), ErrRetentionIntegrity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.kind)

			// never matches a sibling kind
			for _, other := range []error{ErrValidation, ErrAuthorization, ErrNotFound, ErrRetentionIntegrity} {
				if other == tc.kind {
					continue
				}
				assert.NotErrorIs(t, tc.err, other)
			}
		})
	}
}

func TestDomainErrorCarriesRule(t *testing.T) {
	err := NewValidationError("submission.score", "must be within [0,100], got 120")

	assert.Equal(t, "submission.score", RuleOf(err))
	assert.Contains(t, err.Error(), "submission.score")
	assert.Contains(t, err.Error(), "got 120")

	t.Run("survives wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("recording submission: %w", err)
		assert.ErrorIs(t, wrapped, ErrValidation)
		assert.Equal(t, "submission.score", RuleOf(wrapped))
	})

	t.Run("non-domain errors have no rule", func(t *testing.T) {
		assert.Equal(t, "", RuleOf(errors.New("boom")))
	})
}

func TestDomainErrorMessage(t *testing.T) {
	withDetail := &DomainError{Kind: ErrValidation, Rule: "x", Detail: "y"}
	require.Equal(t, "validation failed: x: y", withDetail.Error())

	withoutDetail := &DomainError{Kind: ErrStoreBusy, Rule: "store.lock_timeout"}
	require.Equal(t, "store busy: store.lock_timeout", withoutDetail.Error())
}
