package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode identifies a failure category so callers and tests can match on
// it without parsing messages.
type ErrorCode string

const (
	// CodeConfiguration reports a form block declaring more than one
	// catch-all field spec.
	CodeConfiguration     ErrorCode = "CONFIGURATION"
	CodeInvalidMatcher    ErrorCode = "INVALID_MATCHER"
	CodeUnknownField      ErrorCode = "UNKNOWN_FIELD"
	CodeRequiredUnmatched ErrorCode = "REQUIRED_UNMATCHED"
	CodeUnmatchedFields   ErrorCode = "UNMATCHED_FIELDS"
	CodeTemplate          ErrorCode = "TEMPLATE"
)

// Sentinels usable with errors.Is; comparison is by code only.
var (
	ErrConfiguration     = &Error{Code: CodeConfiguration}
	ErrInvalidMatcher    = &Error{Code: CodeInvalidMatcher}
	ErrUnknownField      = &Error{Code: CodeUnknownField}
	ErrRequiredUnmatched = &Error{Code: CodeRequiredUnmatched}
	ErrUnmatchedFields   = &Error{Code: CodeUnmatchedFields}
	ErrTemplate          = &Error{Code: CodeTemplate}
)

// Error is the structured error returned by the matcher, assignment and tag
// packages.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Wrapped error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(string(e.Code))
	b.WriteString("] ")
	b.WriteString(e.Message)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for key := range e.Details {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, key := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", key, e.Details[key])
		}
		b.WriteString(")")
	}
	if e.Wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.Wrapped.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// WithDetail attaches a key/value pair and returns the receiver for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Wrapped: err}
}

// Wrapf returns nil when err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// CodeOf extracts the code of the first *Error in the chain, or "".
func CodeOf(err error) ErrorCode {
	var target *Error
	if errors.As(err, &target) {
		return target.Code
	}
	return ""
}

// HasCode reports whether any error in the chain carries code.
func HasCode(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}
