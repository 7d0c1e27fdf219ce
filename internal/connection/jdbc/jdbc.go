// Package jdbc validates JDBC destinations by pinging the database.
//
// Supported vendors:
//
//	postgresql - lib/pq
//	sqlserver  - go-mssqldb
package jdbc

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"math"
	"time"

	"github.com/lib/pq"
	mssql "github.com/microsoft/go-mssqldb"

	"github.com/nucleus/cdc-conductor/internal/connection"
	"github.com/nucleus/cdc-conductor/internal/core"
)

// Type is the destination type tag.
const Type = "JDBC"

// Validator opens a single connection and pings it.
type Validator struct {
	timeout time.Duration
}

// New creates a JDBC validator.
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
	return Ping(ctx, cfg, v.timeout)
}

// Ping opens cfg with its driver, pings once and closes.
func Ping(ctx context.Context, cfg *Config, timeout time.Duration) connection.Result {
	log.Printf("[jdbc] connecting to %s %s:%d/%s", cfg.Vendor, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open(cfg.Driver, cfg.DSN(int(math.Ceil(timeout.Seconds()))))
	if err != nil {
		return connection.Generic("Failed to open %s connection: %v", cfg.Vendor, err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	if err := db.PingContext(ctx); err != nil {
		return classifyError(err, cfg)
	}
	return connection.Success()
}

// classifyError maps driver errors onto the validation taxonomy.
func classifyError(err error, cfg *Config) connection.Result {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "28P01", "28000":
			return connection.AuthenticationFailed("Authentication failed - please check user and password")
		case "42501":
			return connection.PermissionDenied("Permission denied - user %s cannot connect", cfg.User)
		case "3D000":
			return connection.NotFound("Database %s does not exist - please check the JDBC URL", cfg.Database)
		case "57P03", "53300":
			return connection.Unavailable("Database server is unavailable: %s", pqErr.Message)
		}
		return connection.Generic("Failed to connect to PostgreSQL: %s", pqErr.Message)
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		switch msErr.Number {
		case 18456, 18452:
			return connection.AuthenticationFailed("Authentication failed - please check user and password")
		case 4060:
			return connection.NotFound("Database %s does not exist or is not accessible", cfg.Database)
		case 229, 916:
			return connection.PermissionDenied("Permission denied - user %s cannot connect", cfg.User)
		}
		return connection.Generic("Failed to connect to SQL Server: %s", msErr.Message)
	}

	if res, ok := connection.ClassifyNetwork(err, cfg.Vendor); ok {
		return res
	}
	return connection.Generic("Failed to connect to %s: %v", cfg.Vendor, err)
}
