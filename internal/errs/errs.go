// Package errs provides the typed errors shared by the resolver,
// builder, merger and retry layers. Always match on Code, not message
// text.
package errs

import (
	"errors"
	"fmt"
)

// Code identifies a failure class. Values are stable; callers switch on
// them to decide skip/abort/retry behavior.
type Code string

const (
	// Timezone resolution.
	CodeUnknownZone           Code = "UNKNOWN_ZONE"
	CodeAmbiguousAbbreviation Code = "AMBIGUOUS_ABBREVIATION"

	// Event validation.
	CodeUnparseableDate      Code = "UNPARSEABLE_DATE"
	CodeUnparseableTime      Code = "UNPARSEABLE_TIME"
	CodeMissingRequiredField Code = "MISSING_REQUIRED_FIELD"
	CodeEndBeforeStart       Code = "END_BEFORE_START"
	CodeInvalidRecurrence    Code = "INVALID_RECURRENCE"

	// Document merging.
	CodeConflictingZoneDeclaration Code = "CONFLICTING_ZONE_DECLARATION"
	CodeInvalidDocument            Code = "INVALID_DOCUMENT"

	// Extraction call handling.
	CodeRetryableCall  Code = "RETRYABLE_CALL"
	CodePermanentCall  Code = "PERMANENT_CALL"
	CodeRetryExhausted Code = "RETRY_EXHAUSTED"
)

// Error is a coded error. Field, when set, names the candidate field
// that caused the failure so the boundary can report it without a
// stack dump.
type Error struct {
	Code    Code
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %q)", msg, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithField returns a copy of e naming the offending input field.
func (e *Error) WithField(field string) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Field = field
	return &clone
}

// CodeOf extracts the Code from anywhere in err's chain, or "" if err
// carries no *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// FieldOf extracts the offending field name from err's chain, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
