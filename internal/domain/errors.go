// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// ValidationError is returned when an entity invariant is violated at construction or mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is allows errors.Is(err, &ValidationError{}) style checks.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// NotFoundError is returned by services when an id cannot be resolved.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: id=%v", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// DomainError is a business-rule violation that is not a simple field invariant.
type DomainError struct {
	Reason string
}

func (e *DomainError) Error() string {
	return e.Reason
}

func (e *DomainError) Is(target error) bool {
	_, ok := target.(*DomainError)
	return ok
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func NewNotFoundError(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func NewDomainError(reason string) error {
	return &DomainError{Reason: reason}
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFoundError reports whether err wraps a NotFoundError.
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsDomainError reports whether err wraps a DomainError.
func IsDomainError(err error) bool {
	var target *DomainError
	return errors.As(err, &target)
}
