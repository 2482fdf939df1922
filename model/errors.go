package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload is returned by every parser when a required field is
	// missing, a field has the wrong type or a timestamp can't be parsed.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrUserNotFound is returned when a user lookup came back empty.
	ErrUserNotFound = errors.New("user not found")

	// ErrUnknownTokenKind is only reported, a render never fails on it.
	ErrUnknownTokenKind = errors.New("unknown token kind")
)

// PayloadError describes which entity and field failed to parse.
type PayloadError struct {
	Entity string
	Field  string
	Err    error
}

func (e *PayloadError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedPayload, e.Entity, e.Err)
	}

	return fmt.Sprintf("%s: %s.%s: %v", ErrMalformedPayload, e.Entity, e.Field, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

func (e *PayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}

func malformed(entity, field string, err error) error {
	return &PayloadError{Entity: entity, Field: field, Err: err}
}

// NotFoundError carries the reference that didn't match any user.
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUserNotFound, e.Ref)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrUserNotFound
}
