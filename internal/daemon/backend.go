package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/felixgeelhaar/codementor/internal/api"
	"github.com/felixgeelhaar/codementor/internal/config"
	"github.com/felixgeelhaar/codementor/internal/history"
	"github.com/felixgeelhaar/codementor/internal/queue"
	"github.com/felixgeelhaar/codementor/internal/storage/local"
	"github.com/felixgeelhaar/codementor/internal/storage/postgres"
	"github.com/felixgeelhaar/codementor/internal/storage/sqlite"
)

// Backend is the review history wiring selected by the history driver
type Backend struct {
	Driver string
	// Recorder receives completed reviews, guarded by a bulkhead
	Recorder history.Recorder
	// Reader serves history reads; nil for the queue driver
	Reader history.Reader
	// Checks are the dependencies reported by /ready
	Checks map[string]api.Pinger

	closers []func() error
}

// OpenBackend builds the history backend for cfg.History.Driver
func OpenBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{
		Driver: cfg.History.Driver,
		Checks: make(map[string]api.Pinger),
	}

	var sink history.Recorder
	switch cfg.History.Driver {
	case config.DriverQueue:
		conn, err := queue.NewConnection(cfg.Queue.URL)
		if err != nil {
			return nil, fmt.Errorf("connect queue: %w", err)
		}
		b.closers = append(b.closers, conn.Close)
		b.Checks["queue"] = conn
		sink = queue.NewPublisher(conn, queue.DefaultPublisherConfig())

	default:
		store, err := OpenStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, store.Close)
		b.Checks["history"] = store
		b.Reader = store
		sink = store
	}

	guarded := history.DefaultGuardedConfig()
	if cfg.History.MaxConcurrent > 0 {
		guarded.MaxConcurrent = cfg.History.MaxConcurrent
	}
	guarded.Logger = slog.Default()
	b.Recorder = history.NewGuardedRecorder(sink, guarded)

	slog.Info("review history ready", "driver", b.Driver)
	return b, nil
}

// OpenStore opens the persistent history store for cfg. The queue driver
// has no local store; callers that drain the queue persist into SQLite
// unless a database URL is configured.
func OpenStore(ctx context.Context, cfg *config.Config) (history.Store, error) {
	driver := cfg.History.Driver
	if driver == config.DriverQueue {
		driver = config.DriverSQLite
		if cfg.History.DatabaseURL != "" {
			driver = config.DriverPostgres
		}
	}

	switch driver {
	case config.DriverMemory:
		return history.NewMemoryStore(), nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.History.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return sqlite.NewReviewStore(db), nil

	case config.DriverFile:
		store, err := local.NewReviewStore(afero.NewOsFs(), cfg.History.Dir)
		if err != nil {
			return nil, fmt.Errorf("open history dir: %w", err)
		}
		return store, nil

	case config.DriverPostgres:
		if err := postgres.Migrate(ctx, cfg.History.DatabaseURL); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		pool, err := postgres.Open(ctx, cfg.History.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return postgres.NewReviewStore(pool), nil
	}

	return nil, fmt.Errorf("unknown history driver %q", cfg.History.Driver)
}

// Close releases every resource opened by the backend
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
