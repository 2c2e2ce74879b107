package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to a specific request field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a rejected request payload carrying per-field messages;
// the HTTP layer renders Fields as a field->message map. Used for rules the
// struct tags cannot express (cross-field requirements).
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown marks an error the service cannot recover from, e.g. a lost
// database connection; catching one brings the server down gracefully.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown checks if the given error (or its cause) requires a graceful shutdown.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
