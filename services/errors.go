package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError carries the HTTP status a controller should answer with.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func badRequest(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: msg}
}

func unauthorized(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusUnauthorized, Message: msg}
}

func notFound(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: msg}
}

func internalError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: msg}
}

// ValidationError rejects a checkout before any side effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// UploadError means the receipt never reached the image store; nothing was
// persisted.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return "receipt upload failed: " + e.Err.Error() }

func (e *UploadError) Unwrap() error { return e.Err }

// PersistenceError means the order could not be written. RetryErr is set when
// the legacy-key retry was attempted and also failed.
type PersistenceError struct {
	Err      error
	RetryErr error
}

func (e *PersistenceError) Error() string {
	if e.RetryErr != nil {
		return fmt.Sprintf("order insert failed: %v; retry with fallback key failed: %v", e.Err, e.RetryErr)
	}
	return "order insert failed: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() []error {
	if e.RetryErr != nil {
		return []error{e.Err, e.RetryErr}
	}
	return []error{e.Err}
}

// Retried reports whether the fallback-key retry ran.
func (e *PersistenceError) Retried() bool { return e.RetryErr != nil }

// HTTPStatus maps a submission error to its response status.
func HTTPStatus(err error) int {
	var (
		validationErr  *ValidationError
		uploadErr      *UploadError
		persistenceErr *PersistenceError
		serviceErr     *ServiceError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &uploadErr):
		return http.StatusBadGateway
	case errors.As(err, &persistenceErr):
		return http.StatusInternalServerError
	case errors.As(err, &serviceErr):
		return serviceErr.StatusCode
	default:
		return http.StatusInternalServerError
	}
}
