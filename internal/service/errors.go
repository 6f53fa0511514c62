package service

import (
	"errors"
	"fmt"
)

var (
	ErrLeadNotFound   = errors.New("lead not found")
	ErrFunnelNotFound = errors.New("funnel not found")
)

// ValidationError reports malformed caller input. Nothing is persisted when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for field
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// CapacityExceededError reports that the monthly distinct-lead cap is reached
type CapacityExceededError struct {
	Month string
	Used  int64
	Cap   int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("Monthly lead cap reached (%d/%d) for %s.", e.Used, e.Cap, e.Month)
}

// IsValidation reports whether err is, or wraps, a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
