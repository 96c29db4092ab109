package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrUpstreamOverload    = errors.New("upstream overloaded")
	ErrServiceUnconfigured = errors.New("service not configured")
	ErrUpstreamFailure     = errors.New("upstream failure")
)

// ValidationError names the request field that was missing or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
