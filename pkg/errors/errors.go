package errors

import (
	"errors"
	"fmt"
)

var (
	ErrEstudianteNotFound   = errors.New("estudiante not found")
	ErrDuplicateID          = errors.New("duplicate student id")
	ErrImportNotFound       = errors.New("import not found")
	ErrInvalidImport        = errors.New("import validation failed")
	ErrInvalidFileFormat    = errors.New("invalid file format")
	ErrRemoteAPIError       = errors.New("remote table API error")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}
