package core

import (
	"errors"
	"fmt"
)

const (
	CodeInvalidArgument          = "E_INVALID_ARGUMENT"
	CodeUnsupportedConfiguration = "E_UNSUPPORTED_CONFIGURATION"
	CodeNotFound                 = "E_NOT_FOUND"
)

// Sentinels for errors.Is matching against a coded Error.
var (
	ErrInvalidArgument          = &Error{Code: CodeInvalidArgument}
	ErrUnsupportedConfiguration = &Error{Code: CodeUnsupportedConfiguration}
	ErrNotFound                 = &Error{Code: CodeNotFound}
)

// Error wraps a compiler failure with its taxonomy code.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error     { return e.Err }
func (e *Error) CodeValue() string { return e.Code }

// Is matches any *Error carrying the same code, so callers can test
// errors.Is(err, core.ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// InvalidArgument reports bad or missing compiler input.
func InvalidArgument(format string, args ...any) error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedConfiguration reports an unknown backend or type identifier.
func UnsupportedConfiguration(format string, args ...any) error {
	return &Error{Code: CodeUnsupportedConfiguration, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing deployment or resource.
func NotFound(format string, args ...any) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the taxonomy code carried by err, or "" if it has none.
func CodeOf(err error) string {
	var coded interface{ CodeValue() string }
	if errors.As(err, &coded) {
		return coded.CodeValue()
	}
	return ""
}
