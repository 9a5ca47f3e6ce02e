package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorType int

const (
	ErrorTypeNotFound ErrorType = iota
	ErrorTypeInvalidRecord
	ErrorTypeMalformedMessage
	ErrorTypeUnknown
)

type StoreError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Key        string
	Causes     []error
}

func (se *StoreError) WithCause(errs ...error) *StoreError {
	se.Causes = append(se.Causes, errs...)

	return se
}

func (se StoreError) Error() string {
	return se.Message
}

// Unwrap exposes the causes to errors.Is and errors.As.
func (se StoreError) Unwrap() []error {
	return se.Causes
}

// IsNotFound reports whether err, or any error it wraps, is a StoreError of
// type ErrorTypeNotFound.
func IsNotFound(err error) bool {
	var se *StoreError

	return stderrors.As(err, &se) && se.Type == ErrorTypeNotFound
}

func NewNotFoundError(key string) *StoreError {
	return &StoreError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("could not find file under key: %s", key),
		StatusCode: http.StatusNotFound,
		Key:        key,
	}
}

func NewInvalidRecordError(key, reason string) *StoreError {
	return &StoreError{
		Type:       ErrorTypeInvalidRecord,
		Message:    fmt.Sprintf("invalid record %q: %s", key, reason),
		StatusCode: http.StatusBadRequest,
		Key:        key,
	}
}

func NewMalformedMessageError(reason string) *StoreError {
	return &StoreError{
		Type:       ErrorTypeMalformedMessage,
		Message:    "malformed control message: " + reason,
		StatusCode: http.StatusBadRequest,
	}
}

func NewUnknownError(msg string) *StoreError {
	return &StoreError{
		Type:       ErrorTypeUnknown,
		Message:    msg,
		StatusCode: http.StatusInternalServerError,
	}
}
