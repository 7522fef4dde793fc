// Package errors is the project error type: a code that decides the HTTP status,
// a message safe to show callers, an optional field and op, and the wrapped cause.
// Import it as perr.
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error; it is written to the wire by name
type ErrorCode uint16

// zero means no error
const (
	ErrorCodeUnknown ErrorCode = iota + 1
	// ErrorCodePanic is a panic recovered by middleware
	ErrorCodePanic
	// ErrorCodeUnavailable is a subsystem or reader that may come back
	ErrorCodeUnavailable
	// ErrorCodeConflict is a lifecycle call in the wrong state
	ErrorCodeConflict
	// ErrorCodeInvalidArgument is a request that parsed but cannot be served
	ErrorCodeInvalidArgument
	// ErrorCodeValidation is a body that failed struct validation
	ErrorCodeValidation
	// ErrorCodeJSON is a body that failed to decode
	ErrorCodeJSON
	// ErrorCodeNotFound is a missing resource, e.g. no card inserted
	ErrorCodeNotFound
	// ErrorCodeDevice is a reader or transport failure below the card
	ErrorCodeDevice
	// ErrorCodeCard is an answer from the card we cannot use
	ErrorCodeCard
	// ErrorCodeTimeout is a wait that expired
	ErrorCodeTimeout
)

var codes = map[ErrorCode]struct {
	name   string
	status int
}{
	ErrorCodeUnknown:         {"unknown", http.StatusInternalServerError},
	ErrorCodePanic:           {"panic", http.StatusInternalServerError},
	ErrorCodeUnavailable:     {"unavailable", http.StatusServiceUnavailable},
	ErrorCodeConflict:        {"conflict", http.StatusConflict},
	ErrorCodeInvalidArgument: {"invalid_argument", http.StatusUnprocessableEntity},
	ErrorCodeValidation:      {"validation", http.StatusBadRequest},
	ErrorCodeJSON:            {"json", http.StatusBadRequest},
	ErrorCodeNotFound:        {"not_found", http.StatusNotFound},
	ErrorCodeDevice:          {"device", http.StatusBadGateway},
	ErrorCodeCard:            {"card", http.StatusUnprocessableEntity},
	ErrorCodeTimeout:         {"timeout", http.StatusGatewayTimeout},
}

// String returns the wire name; unregistered codes render as code(N)
func (c ErrorCode) String() string {
	if d, ok := codes[c]; ok {
		return d.name
	}
	return fmt.Sprintf("code(%d)", uint16(c))
}

// Status is the HTTP status the code maps to; unregistered codes are 500
func (c ErrorCode) Status() int {
	if d, ok := codes[c]; ok {
		return d.status
	}
	return http.StatusInternalServerError
}

// MarshalText writes the wire name
func (c ErrorCode) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText accepts a wire name
func (c *ErrorCode) UnmarshalText(b []byte) error {
	for code, d := range codes {
		if d.name == string(b) {
			*c = code
			return nil
		}
	}
	return fmt.Errorf("unknown error code %q", b)
}

// Error carries a code and a caller-facing message around an optional cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Wire is what callers see of an error
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.orig }

// Is makes errors built with New usable as sentinels: a bare target matches
// any *Error with the same code and message, whatever it wraps
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil || e == nil || t.orig != nil {
		return false
	}
	return t.code == e.code && t.msg == e.msg
}

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending request field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if any
func (e *Error) Op() string { return e.op }

// WireFrom is the caller-facing view of err; the cause and op stay in logs
// errors from outside the package keep their text under ErrorCodeUnknown
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return Wire{Code: e.code, Message: e.msg, Field: e.field}
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// CodeOf is the code of the outermost *Error in err's chain, or ErrorCodeUnknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// HTTPStatus is CodeOf(err).Status()
func HTTPStatus(err error) int { return CodeOf(err).Status() }

// As finds the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// WithField returns a copy of err's *Error naming the offending field; other errors pass through
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp returns a copy of err's *Error labelled with op; other errors pass through
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// New returns an *Error; package-level values built with it serve as sentinels
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf is New with a formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap puts orig behind a code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// WrapAs wraps orig under sentinel's code and message so errors.Is(result, sentinel) holds
// a sentinel from outside the package yields an Unknown wrap
func WrapAs(sentinel error, orig error) error {
	s, ok := sentinel.(*Error)
	if !ok {
		return &Error{code: ErrorCodeUnknown, msg: sentinel.Error(), orig: orig}
	}
	return &Error{code: s.code, msg: s.msg, orig: orig}
}

// shorthands for the codes handlers return most

func NotFoundf(format string, a ...any) error    { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error  { return Newf(ErrorCodeInvalidArgument, format, a...) }
func JSONErrf(format string, a ...any) error     { return Newf(ErrorCodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error    { return Newf(ErrorCodePanic, format, a...) }
func Conflictf(format string, a ...any) error    { return Newf(ErrorCodeConflict, format, a...) }
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }

// Retryable reports whether another attempt may succeed without operator action
// reader hiccups, unavailable subsystems and expired waits qualify; card answers do not
func Retryable(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeDevice, ErrorCodeTimeout:
		return true
	}
	return false
}
