// Package milvus validates MILVUS destinations by listing databases.
package milvus

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nucleus/cdc-conductor/internal/connection"
	"github.com/nucleus/cdc-conductor/internal/core"
)

// Type is the destination type tag.
const Type = "MILVUS"

const (
	KeyURI      = "uri"
	KeyDatabase = "database"
	KeyToken    = "token"
	KeyUsername = "username"
	KeyPassword = "password"
)

// Config holds the parsed connection parameters.
type Config struct {
	URI      string
	Database string
	Token    string
	Username string
	Password string
}

// ParseConfig runs the parameter phase.
func ParseConfig(params map[string]any) (*Config, error) {
	uri, err := connection.RequireString(params, KeyURI, "URI")
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		return nil, &connection.ParamError{Field: KeyURI, Message: "URI must start with http:// or https://"}
	}
	return &Config{
		URI:      uri,
		Database: connection.StringValue(params, KeyDatabase),
		Token:    connection.StringValue(params, KeyToken),
		Username: connection.StringValue(params, KeyUsername),
		Password: connection.StringValue(params, KeyPassword),
	}, nil
}

// clientConfig selects token auth over username/password when both are set.
func (c *Config) clientConfig() *milvusclient.ClientConfig {
	cc := &milvusclient.ClientConfig{
		Address: c.URI,
		DBName:  c.Database,
	}
	switch {
	case c.Token != "":
		cc.APIKey = c.Token
	case c.Username != "" && c.Password != "":
		cc.Username = c.Username
		cc.Password = c.Password
	}
	return cc
}

// Validator connects with the v2 client and lists databases.
type Validator struct {
	timeout time.Duration
}

// New creates a Milvus validator.
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

	log.Printf("[milvus] connecting to %s db=%q", cfg.URI, cfg.Database)
	client, err := milvusclient.New(ctx, cfg.clientConfig())
	if err != nil {
		return classifyError(err)
	}
	defer client.Close(context.Background())

	databases, err := client.ListDatabase(ctx, milvusclient.NewListDatabaseOption())
	if err != nil {
		return classifyError(err)
	}
	log.Printf("[milvus] %s reachable, %d databases", cfg.URI, len(databases))
	return connection.Success()
}

// classifyError checks gRPC status codes first, then falls back to message
// matching since the client wraps most server errors as plain text.
func classifyError(err error) connection.Result {
	if errors.Is(err, context.DeadlineExceeded) {
		return connection.Timeout("Connection timeout - please check host, port and network connectivity")
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.DeadlineExceeded:
			return connection.Timeout("Connection timeout - please check host, port and network connectivity")
		case codes.Unauthenticated:
			return connection.AuthenticationFailed("Authentication failed - please check username, password, or token")
		case codes.PermissionDenied:
			return connection.PermissionDenied("Permission denied - please check user privileges")
		case codes.Unavailable:
			return connection.Unavailable("Cannot connect to Milvus server - please check host and port configuration")
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return connection.Timeout("Connection timeout - please check host, port and network connectivity")
	case strings.Contains(msg, "permission"), strings.Contains(msg, "privilege"):
		return connection.PermissionDenied("Permission denied - please check user privileges")
	case strings.Contains(msg, "auth"), strings.Contains(msg, "credential"), strings.Contains(msg, "unauthenticated"):
		return connection.AuthenticationFailed("Authentication failed - please check username, password, or token")
	case strings.Contains(msg, "database") && strings.Contains(msg, "not found"):
		return connection.NotFound("Specified database does not exist - please check database name")
	case strings.Contains(msg, "connect"), strings.Contains(msg, "refused"), strings.Contains(msg, "unreachable"), strings.Contains(msg, "unavailable"):
		return connection.Unavailable("Cannot connect to Milvus server - please check host and port configuration")
	}
	return connection.Generic("Failed to connect to Milvus: %v", err)
}
