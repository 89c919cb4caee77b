package model

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures so callers can decide recoverability.
type ErrorCode string

const (
	ErrInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrMalformed         ErrorCode = "MALFORMED_INPUT"
	ErrLengthMismatch    ErrorCode = "LENGTH_MISMATCH"
	ErrValidation        ErrorCode = "VALIDATION"
	ErrMissingData       ErrorCode = "MISSING_DATA"
	ErrPersistence       ErrorCode = "PERSISTENCE"
	ErrReviewComplete    ErrorCode = "REVIEW_COMPLETE"
)

// Error is a classified error. Two errors match under errors.Is when their codes match.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code so callers can write errors.Is(err, model.Code(model.ErrPersistence)).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// NewError creates a classified error.
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Code returns a bare error for matching with errors.Is.
func Code(code ErrorCode) error {
	return &Error{Code: code, Message: string(code)}
}

// CodeOf extracts the code from err, or "" when err is not classified.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return ErrValidation
	}
	var m *MalformedError
	if errors.As(err, &m) {
		return ErrMalformed
	}
	return ""
}

// ValidationError rejects user input without changing state.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, model.Code(model.ErrValidation)) match.
func (e *ValidationError) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && t.Code == ErrValidation
}

// CellError locates one unparsable cell.
type CellError struct {
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
}

// MalformedError lists cells that could not be normalized.
type MalformedError struct {
	Source string
	Cells  []CellError
}

func (e *MalformedError) Error() string {
	const show = 3
	msg := fmt.Sprintf("%s: %d malformed cell(s)", e.Source, len(e.Cells))
	for i, c := range e.Cells {
		if i == show {
			msg += ", ..."
			break
		}
		msg += fmt.Sprintf("; row %d %q=%q", c.Row, c.Column, c.Value)
	}
	return msg
}

// Is lets errors.Is(err, model.Code(model.ErrMalformed)) match.
func (e *MalformedError) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && t.Code == ErrMalformed
}
