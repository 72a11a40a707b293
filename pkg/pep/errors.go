package pep

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Code enumerates the error taxonomy of the authorization pipeline,
// the Go-idiomatic replacement for the C "error code plus thread-local
// message" design: a typed Code plus a cockroachdb/errors-wrapped
// cause, resolved with errors.Is/errors.As instead of inspecting a
// last-error buffer.
type Code int

const (
	// CodeOK is never carried by an Error value; it exists so Code's
	// zero value reads as "no error" when used outside this package.
	CodeOK Code = iota
	CodeNullPointer
	CodeMemory
	CodeInitLists
	CodeInitTransport
	CodeInitPIP
	CodeInitOH
	CodeOptionInvalid
	CodeMarshalling
	CodeUnmarshalling
	CodeAuthzPIPProcess
	CodeAuthzOHProcess
	CodeAuthzRequest
	CodeAuthzTransport
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeNullPointer:
		return "NULL_POINTER"
	case CodeMemory:
		return "MEMORY"
	case CodeInitLists:
		return "INIT_LISTS"
	case CodeInitTransport:
		return "INIT_TRANSPORT"
	case CodeInitPIP:
		return "INIT_PIP"
	case CodeInitOH:
		return "INIT_OH"
	case CodeOptionInvalid:
		return "OPTION_INVALID"
	case CodeMarshalling:
		return "MARSHALLING"
	case CodeUnmarshalling:
		return "UNMARSHALLING"
	case CodeAuthzPIPProcess:
		return "AUTHZ_PIP_PROCESS"
	case CodeAuthzOHProcess:
		return "AUTHZ_OH_PROCESS"
	case CodeAuthzRequest:
		return "AUTHZ_REQUEST"
	case CodeAuthzTransport:
		return "AUTHZ_TRANSPORT"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Error is the error type every exported pep operation returns on
// failure. It carries a Code for programmatic dispatch and, when a
// lower-level cause exists, a cockroachdb/errors-wrapped stack trace.
type Error struct {
	Code  Code
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pep: %s: %v", e.Code, e.Cause)
	}
	return fmt.Sprintf("pep: %s", e.Code)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Code, so callers
// can write errors.Is(err, pep.CodeError(pep.CodeAuthzRequest)).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// newError wraps cause (which may be nil) with code, attaching a stack
// trace via cockroachdb/errors when a cause is present.
func newError(code Code, cause error) *Error {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &Error{Code: code, Cause: cause}
}

// newErrorf builds an Error whose cause is a freshly formatted message.
func newErrorf(code Code, format string, args ...any) *Error {
	return newError(code, errors.Newf(format, args...))
}

// CodeError returns a sentinel *Error carrying only a Code, suitable
// for use with errors.Is(err, pep.CodeError(pep.CodeAuthzRequest)).
func CodeError(code Code) *Error {
	return &Error{Code: code}
}

// CodeOf extracts the Code from err if it is (or wraps) a *Error,
// returning CodeOK and false otherwise.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return CodeOK, false
}
