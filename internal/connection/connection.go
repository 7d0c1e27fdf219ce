// Package connection validates destination connections before they are saved.
//
// Every validator runs two phases in order: parameter checks on the loose
// configuration map, then a single read-only call against the live system.
// Failures never surface as Go errors; they are folded into a Result whose
// Kind places them in one taxonomy shared by all destination families.
package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/nucleus/cdc-conductor/internal/core"
)

// DefaultTimeout bounds the live phase when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// NullConfigurationMessage is returned by every validator for a nil connection.
const NullConfigurationMessage = "Connection configuration cannot be null"

// Kind classifies a failed validation.
type Kind string

const (
	// KindInvalid marks a parameter-phase failure.
	KindInvalid        Kind = "invalid"
	KindTimeout        Kind = "timeout"
	KindAuthentication Kind = "authentication"
	KindPermission     Kind = "permission"
	KindNotFound       Kind = "not-found"
	KindUnavailable    Kind = "unavailable"
	KindGeneric        Kind = "generic"
)

// Result is the uniform outcome of a validation. A valid result carries at
// most an informational message; an invalid one always explains itself.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
}

// Success returns a valid result.
func Success() Result {
	return Result{Valid: true}
}

// Failure returns an invalid result of the given kind.
func Failure(kind Kind, format string, args ...any) Result {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		msg = "Connection validation failed"
	}
	return Result{Valid: false, Message: msg, Kind: kind}
}

// Invalid reports a parameter-phase failure.
func Invalid(format string, args ...any) Result { return Failure(KindInvalid, format, args...) }

// InvalidParam reports a parameter-phase failure using err's message as is.
func InvalidParam(err error) Result {
	return Result{Valid: false, Message: err.Error(), Kind: KindInvalid}
}

// Timeout reports a live call that did not finish in time.
func Timeout(format string, args ...any) Result { return Failure(KindTimeout, format, args...) }

// Unavailable reports an unreachable or not-ready service.
func Unavailable(format string, args ...any) Result {
	return Failure(KindUnavailable, format, args...)
}

// Generic reports a failure outside the other kinds.
func Generic(format string, args ...any) Result { return Failure(KindGeneric, format, args...) }

// NotFound reports a missing stream, bucket, database or collection.
func NotFound(format string, args ...any) Result { return Failure(KindNotFound, format, args...) }

// AuthenticationFailed reports rejected credentials.
func AuthenticationFailed(format string, args ...any) Result {
	return Failure(KindAuthentication, format, args...)
}

// PermissionDenied reports valid credentials lacking a required right.
func PermissionDenied(format string, args ...any) Result {
	return Failure(KindPermission, format, args...)
}

// Options carries per-call settings for a validator.
type Options struct {
	// Timeout bounds the live phase (default: 5s).
	Timeout time.Duration
}

// EffectiveTimeout returns the configured timeout or the default.
func (o Options) EffectiveTimeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// Validator checks one destination family.
type Validator interface {
	// Type returns the destination type tag, e.g. "REDIS".
	Type() string
	// Descriptor describes the configuration fields the validator reads.
	Descriptor() *Descriptor
	// Validate never panics and never returns an error.
	Validate(ctx context.Context, conn *core.Connection) Result
}
