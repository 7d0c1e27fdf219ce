// Package redis validates REDIS destinations with a PING.
package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nucleus/cdc-conductor/internal/connection"
	"github.com/nucleus/cdc-conductor/internal/core"
)

// Type is the destination type tag.
const Type = "REDIS"

const (
	KeyHost     = "host"
	KeyPort     = "port"
	KeyUsername = "username"
	KeyPassword = "password"
	KeyUseSSL   = "useSsl"
)

// Config holds the parsed connection parameters.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	UseSSL   bool
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ParseConfig runs the parameter phase. The first failing field wins.
func ParseConfig(params map[string]any) (*Config, error) {
	host, err := connection.RequireString(params, KeyHost, "Host")
	if err != nil {
		return nil, err
	}
	port, err := connection.RequirePort(params, KeyPort)
	if err != nil {
		return nil, err
	}
	useSSL, err := connection.OptionalBool(params, KeyUseSSL, false)
	if err != nil {
		return nil, err
	}
	return &Config{
		Host:     host,
		Port:     port,
		Username: connection.StringValue(params, KeyUsername),
		Password: connection.StringValue(params, KeyPassword),
		UseSSL:   useSSL,
	}, nil
}

// Validator checks that a Redis server answers PING with the given credentials.
type Validator struct {
	timeout time.Duration
}

// New creates a Redis validator.
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

// Ping opens a single connection to cfg, issues PING and closes it.
func Ping(ctx context.Context, cfg *Config, timeout time.Duration) connection.Result {
	log.Printf("[redis] connecting to %s ssl=%t", cfg.Addr(), cfg.UseSSL)

	opts := &goredis.Options{
		Addr:         cfg.Addr(),
		Username:     cfg.Username,
		Password:     cfg.Password,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   -1,
		PoolSize:     1,
	}
	if cfg.UseSSL {
		opts.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	}

	client := goredis.NewClient(opts)
	defer client.Close()

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		return classifyError(err)
	}
	if pong != "PONG" {
		return connection.Unavailable("Unexpected PING response from Redis: %s", pong)
	}
	return connection.Success()
}

// classifyError maps go-redis failures onto the validation taxonomy.
func classifyError(err error) connection.Result {
	var redisErr goredis.Error
	if errors.As(err, &redisErr) {
		msg := redisErr.Error()
		switch {
		case strings.HasPrefix(msg, "WRONGPASS"), strings.HasPrefix(msg, "NOAUTH"), strings.Contains(msg, "invalid password"):
			return connection.AuthenticationFailed("Authentication failed - please check username and password")
		case strings.HasPrefix(msg, "NOPERM"):
			return connection.PermissionDenied("Permission denied - user is not allowed to run PING")
		case strings.HasPrefix(msg, "LOADING"), strings.HasPrefix(msg, "MASTERDOWN"), strings.HasPrefix(msg, "BUSY"):
			return connection.Unavailable("Redis server is unavailable: %s", msg)
		}
	}

	if res, ok := connection.ClassifyNetwork(err, "Redis"); ok {
		return res
	}
	return connection.Generic("Failed to connect to Redis: %v", err)
}
