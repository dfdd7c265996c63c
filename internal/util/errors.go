package util

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain failure wraps exactly one of these sentinels so
// callers can classify with errors.Is and controllers can map to HTTP codes.
var (
	// ErrValidation: a value fails a declared range, uniqueness or
	// referential rule.
	ErrValidation = errors.New("validation failed")
	// ErrAuthorization: scope or field-category violation, or an
	// unrecognized role. Never a default-permit.
	ErrAuthorization = errors.New("authorization failed")
	// ErrNotFound: the target record does not exist, including records
	// already purged.
	ErrNotFound = errors.New("record not found")
	// ErrRetentionIntegrity: a purge unit cannot complete cleanly.
	ErrRetentionIntegrity = errors.New("retention integrity failure")
	// ErrStoreBusy: a bounded lock wait expired; transient, retryable.
	ErrStoreBusy = errors.New("store busy")
	// ErrStoreUnavailable: the store cannot be reached; transient.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// DomainError carries the violated rule alongside the kind, so validation
// and authorization failures always name what was broken.
type DomainError struct {
	Kind   error
	Rule   string
	Detail string
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind.Error(), e.Rule, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Rule)
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

func NewValidationError(rule, detail string) error {
	return &DomainError{Kind: ErrValidation, Rule: rule, Detail: detail}
}

func NewAuthorizationError(rule, detail string) error {
	return &DomainError{Kind: ErrAuthorization, Rule: rule, Detail: detail}
}

func NewNotFoundError(rule, detail string) error {
	return &DomainError{Kind: ErrNotFound, Rule: rule, Detail: detail}
}

func NewRetentionIntegrityError(rule, detail string) error {
	return &DomainError{Kind: ErrRetentionIntegrity, Rule: rule, Detail: detail}
}

// RuleOf extracts the violated rule name, or "" for non-domain errors.
func RuleOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Rule
	}
	return ""
}
