package storage

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/nucleus/cdc-conductor/internal/connection/jdbc"
	"github.com/nucleus/cdc-conductor/internal/connection/redis"
	"github.com/nucleus/cdc-conductor/internal/core"
)

// preflightPipeline stands in for a real pipeline when resolving table
// templates during the startup check.
var preflightPipeline = &core.Pipeline{Name: "preflight"}

// Report is the outcome of checking one storage axis.
type Report struct {
	Axis    string
	Kind    Kind
	Skipped bool
	Err     error
}

// probe checks one backing store is reachable.
type probe func(ctx context.Context, timeout time.Duration) error

// Preflight checks the configured backends of every resolver concurrently.
// Only network backends with a client here are probed; the rest are
// reported as skipped. The returned error is the first failure, if any.
// Callers log it; deploys never depend on it. Each axis gets its own
// timeout, so a failing axis never cuts another one short.
func Preflight(ctx context.Context, timeout time.Duration, resolvers ...*Resolver) ([]Report, error) {
	reports := make([]Report, len(resolvers))
	var g errgroup.Group

	for i, r := range resolvers {
		g.Go(func() error {
			rep := Report{Axis: r.Name()}
			defer func() { reports[i] = rep }()

			kind, err := r.Kind()
			if err != nil {
				rep.Err = err
				return err
			}
			rep.Kind = kind

			store, err := r.Create(preflightPipeline)
			if err != nil {
				rep.Err = err
				return err
			}

			pb := probeFor(store)
			if pb == nil {
				rep.Skipped = true
				log.Printf("[preflight] %s storage %s: no probe, skipped", rep.Axis, kind)
				return nil
			}

			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := pb(probeCtx, timeout); err != nil {
				rep.Err = fmt.Errorf("%s storage %s: %w", rep.Axis, kind, err)
				log.Printf("[preflight] %v", rep.Err)
				return rep.Err
			}
			log.Printf("[preflight] %s storage %s reachable", rep.Axis, kind)
			return nil
		})
	}

	err := g.Wait()
	return reports, err
}

// probeFor picks the probe for a store, or nil when none applies.
func probeFor(store Store) probe {
	b := &probeBuilder{}
	store.Accept(b)
	return b.probe
}

type probeBuilder struct {
	probe probe
}

func (b *probeBuilder) VisitFile(*FileStore)           {}
func (b *probeBuilder) VisitKafka(*KafkaStore)         {}
func (b *probeBuilder) VisitConfigMap(*ConfigMapStore) {}
func (b *probeBuilder) VisitInMemory(*InMemoryStore)   {}

func (b *probeBuilder) VisitJdbc(s *JdbcStore) {
	b.probe = func(ctx context.Context, timeout time.Duration) error {
		cfg, err := jdbc.ParseURL(s.URL)
		if err != nil {
			return err
		}
		if cfg.User == "" {
			cfg.User = s.User
		}
		if cfg.Password == "" {
			cfg.Password = s.Password
		}

		if cfg.Vendor != jdbc.VendorPostgres {
			if res := jdbc.Ping(ctx, cfg, timeout); !res.Valid {
				return fmt.Errorf("%s", res.Message)
			}
			return nil
		}

		conn, err := pgx.Connect(ctx, cfg.DSN(int(timeout.Seconds())))
		if err != nil {
			return err
		}
		defer conn.Close(context.Background())
		return conn.Ping(ctx)
	}
}

func (b *probeBuilder) VisitRedis(s *RedisStore) {
	b.probe = func(ctx context.Context, timeout time.Duration) error {
		host, rawPort, err := net.SplitHostPort(s.Address)
		if err != nil {
			return fmt.Errorf("redis address %q: %w", s.Address, err)
		}
		port, err := strconv.Atoi(rawPort)
		if err != nil {
			return fmt.Errorf("redis address %q: invalid port", s.Address)
		}
		res := redis.Ping(ctx, &redis.Config{
			Host:     host,
			Port:     port,
			Username: s.User,
			Password: s.Password,
			UseSSL:   s.SSLEnabled,
		}, timeout)
		if !res.Valid {
			return fmt.Errorf("%s", res.Message)
		}
		return nil
	}
}
