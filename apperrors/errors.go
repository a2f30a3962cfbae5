// Package apperrors holds the error kinds that services return and that the
// HTTP layer maps onto status codes.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError reports a missing Course, Section, Video, User, Blog or
// leaderboard entry.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found!" }

// ValidationError carries field-level detail for malformed input. Fields may
// be empty for single-message rule violations such as an insufficient balance.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a duplicate purchase or a duplicate unique field.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ForbiddenError reports an authenticated caller lacking access, e.g. an
// unpurchased course.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// ProviderError is any non-success response or transport failure from the
// video host.
type ProviderError struct {
	Op         string
	StatusCode int // 0 on transport failure
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: provider returned %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StorageError wraps a transaction or commit failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func NotFound(entity string) error { return &NotFoundError{Entity: entity} }

func Validation(message string, fields map[string]string) error {
	return &ValidationError{Message: message, Fields: fields}
}

func Conflict(message string) error { return &ConflictError{Message: message} }

func Forbidden(message string) error { return &ForbiddenError{Message: message} }

func Storage(op string, err error) error { return &StorageError{Op: op, Err: err} }

// HTTPStatus maps an error onto the status code the API answers with.
func HTTPStatus(err error) int {
	var (
		notFound   *NotFoundError
		validation *ValidationError
		conflict   *ConflictError
		forbidden  *ForbiddenError
		provider   *ProviderError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		if len(validation.Fields) > 0 {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &provider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
