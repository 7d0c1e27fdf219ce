// Package qdrant validates QDRANT destinations over gRPC.
package qdrant

import (
	"context"
	"errors"
	"log"
	"time"

	qc "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nucleus/cdc-conductor/internal/connection"
	"github.com/nucleus/cdc-conductor/internal/core"
)

// Type is the destination type tag.
const Type = "QDRANT"

const (
	KeyHostname = "hostname"
	KeyPort     = "port"
	KeyUseTLS   = "useTls"
	KeyAPIKey   = "apiKey"
)

// Config holds the parsed connection parameters.
type Config struct {
	Hostname string
	Port     int
	UseTLS   bool
	APIKey   string
}

// ParseConfig runs the parameter phase.
func ParseConfig(params map[string]any) (*Config, error) {
	hostname, err := connection.RequireString(params, KeyHostname, "Hostname")
	if err != nil {
		return nil, err
	}
	port, err := connection.RequirePort(params, KeyPort)
	if err != nil {
		return nil, err
	}
	useTLS, err := connection.OptionalBool(params, KeyUseTLS, false)
	if err != nil {
		return nil, err
	}
	return &Config{
		Hostname: hostname,
		Port:     port,
		UseTLS:   useTLS,
		APIKey:   connection.StringValue(params, KeyAPIKey),
	}, nil
}

// Validator lists collections to prove the server is reachable and the API
// key is accepted.
type Validator struct {
	timeout time.Duration
}

// New creates a Qdrant validator.
func New(opts connection.Options) *Validator {
	return &Validator{timeout: opts.EffectiveTimeout()}
}

func (v *Validator) Type() string { return Type }

func (v *Validator) Validate(ctx context.Context, conn *core.Connection) connection.Result {
	return connection.Guard(ctx, conn, v.timeout, v.validate)
}

func (v *Validator) validate(ctx context.Context, params map[string]any) connection.Result {
	cfg, err := ParseConfig(params)
	if err != nil {
		return connection.InvalidParam(err)
	}

	log.Printf("[qdrant] connecting to %s:%d tls=%t", cfg.Hostname, cfg.Port, cfg.UseTLS)
	client, err := qc.NewClient(&qc.Config{
		Host:                   cfg.Hostname,
		Port:                   cfg.Port,
		APIKey:                 cfg.APIKey,
		UseTLS:                 cfg.UseTLS,
		SkipCompatibilityCheck: true,
	})
	if err != nil {
		return connection.Generic("Failed to connect to Qdrant: %v", err)
	}
	defer client.Close()

	collections, err := client.ListCollections(ctx)
	if err != nil {
		return classifyError(err, cfg.UseTLS)
	}
	log.Printf("[qdrant] %s:%d reachable, %d collections", cfg.Hostname, cfg.Port, len(collections))
	return connection.Success()
}

// classifyError maps gRPC status codes onto the validation taxonomy.
func classifyError(err error, useTLS bool) connection.Result {
	if errors.Is(err, context.DeadlineExceeded) {
		return connection.Timeout("Connection timeout - please check hostname, port and network connectivity")
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable:
			if useTLS {
				return connection.Unavailable("Qdrant server is unavailable - check TLS certificates and hostname")
			}
			return connection.Unavailable("Qdrant server is unavailable - please check if the server is running")
		case codes.Unauthenticated:
			return connection.AuthenticationFailed("Authentication failed - please check API key")
		case codes.PermissionDenied:
			return connection.PermissionDenied("Permission denied - please check API key permissions")
		case codes.DeadlineExceeded, codes.Canceled:
			return connection.Timeout("Connection timeout - please check network connectivity")
		case codes.NotFound:
			return connection.NotFound("Not found: %s", st.Message())
		case codes.Unknown:
			// not a gRPC status; fall through to transport checks
		default:
			return connection.Generic("gRPC error: %s", st.Message())
		}
	}

	if res, ok := connection.ClassifyNetwork(err, "Qdrant"); ok {
		return res
	}
	return connection.Generic("Failed to connect to Qdrant: %v", err)
}
