package kinesis

import "github.com/nucleus/cdc-conductor/internal/connection"

func init() {
	connection.Register(Type, func(opts connection.Options) connection.Validator {
		return New(opts)
	})
}
