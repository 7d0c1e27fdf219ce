// Package connection exposes destination validation to other modules and
// registers every built-in validator.
package connection

import (
	"context"

	"github.com/nucleus/cdc-conductor/internal/connection"
	"github.com/nucleus/cdc-conductor/internal/core"

	// Import all validators to register them
	_ "github.com/nucleus/cdc-conductor/internal/connection/jdbc"
	_ "github.com/nucleus/cdc-conductor/internal/connection/kinesis"
	_ "github.com/nucleus/cdc-conductor/internal/connection/milvus"
	_ "github.com/nucleus/cdc-conductor/internal/connection/objectstore"
	_ "github.com/nucleus/cdc-conductor/internal/connection/qdrant"
	_ "github.com/nucleus/cdc-conductor/internal/connection/redis"
)

type (
	Result     = connection.Result
	Kind       = connection.Kind
	Options    = connection.Options
	Validator  = connection.Validator
	Descriptor = connection.Descriptor
	Connection = core.Connection
)

const (
	KindInvalid        = connection.KindInvalid
	KindTimeout        = connection.KindTimeout
	KindAuthentication = connection.KindAuthentication
	KindPermission     = connection.KindPermission
	KindNotFound       = connection.KindNotFound
	KindUnavailable    = connection.KindUnavailable
	KindGeneric        = connection.KindGeneric
)

// Validate checks conn against the validator registered for its type.
func Validate(ctx context.Context, conn *Connection, opts Options) Result {
	return connection.DefaultRegistry().Validate(ctx, conn, opts)
}

// Types lists the registered destination types.
func Types() []string {
	return connection.DefaultRegistry().List()
}

// Descriptors returns the form metadata of every registered type.
func Descriptors() []*Descriptor {
	return connection.DefaultRegistry().Descriptors()
}
