// Package postgres opens the connection pool behind the optional
// submission ledger. Without LEDGER_DATABASE_URL the driver runs with
// no database at all.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tabfm-labs/evalsweep/internal/platform/env"
)

// Config sizes a small pool. A sweep is a single-threaded batch run, so
// the driver never needs more than a handful of connections; lifetime
// tuning is irrelevant for a process that exits after one sweep.
type Config struct {
	URL          string
	PingTimeout  time.Duration
	MaxOpenConns int
	MaxIdleConns int
}

func ConfigFromEnv() (Config, error) {
	pingTimeout, err := env.Duration("LEDGER_PING_TIMEOUT", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	maxOpenConns, err := env.Int("LEDGER_MAX_OPEN_CONNS", 4)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := env.Int("LEDGER_MAX_IDLE_CONNS", 2)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		URL:          env.String("LEDGER_DATABASE_URL", ""),
		PingTimeout:  pingTimeout,
		MaxOpenConns: maxOpenConns,
		MaxIdleConns: maxIdleConns,
	}
	if cfg.Enabled() {
		if err := cfg.Validate(); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// Enabled reports whether a ledger database is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return errors.New("LEDGER_DATABASE_URL is required")
	}
	if c.PingTimeout <= 0 {
		return errors.New("LEDGER_PING_TIMEOUT must be positive")
	}
	if c.MaxOpenConns < 1 {
		return errors.New("LEDGER_MAX_OPEN_CONNS must be >= 1")
	}
	if c.MaxIdleConns < 0 {
		return errors.New("LEDGER_MAX_IDLE_CONNS must be >= 0")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("LEDGER_MAX_IDLE_CONNS must be <= LEDGER_MAX_OPEN_CONNS")
	}
	return nil
}

// Open connects, applies the pool limits and verifies the database is
// reachable before the sweep starts submitting.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return db, nil
}
