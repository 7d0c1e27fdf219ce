package connection

import (
	"context"
	"log"
	"time"

	"github.com/nucleus/cdc-conductor/internal/core"
)

// Body is the family-specific part of a validation.
type Body func(ctx context.Context, config map[string]any) Result

// Guard runs body with the behaviour shared by every validator: a nil
// connection fails with NullConfigurationMessage, the context is bounded by
// timeout, and a panic inside body becomes a generic failure.
func Guard(ctx context.Context, conn *core.Connection, timeout time.Duration, body Body) (res Result) {
	if conn == nil {
		return Invalid(NullConfigurationMessage)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[connection] %s validation panicked: %v", conn.Type, r)
			res = Generic("Validation failed due to unexpected error: %v", r)
		}
	}()

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	config := conn.Config
	if config == nil {
		config = map[string]any{}
	}

	res = body(ctx, config)
	if !res.Valid {
		log.Printf("[connection] %s validation of %q failed (%s): %s", conn.Type, conn.Name, res.Kind, res.Message)
	}
	return res
}
