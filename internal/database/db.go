package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// healthCheckPeriod is how often pgxpool re-checks idle connections.
const healthCheckPeriod = time.Minute

var (
	poolMu sync.RWMutex
	pool   *pgxpool.Pool
)

// Connect opens the shared connection pool and verifies it with a ping.
// The service holds a single pool for its lifetime; calling Connect while
// one is open is an error.
func Connect(ctx context.Context, connString string, maxConns, minConns int, maxLifetime, maxIdleTime time.Duration) error {
	poolMu.Lock()
	defer poolMu.Unlock()

	if pool != nil {
		return errors.New("database already connected")
	}

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return fmt.Errorf("parsing database config: %w", err)
	}

	config.MaxConns = int32(maxConns)
	config.MinConns = int32(minConns)
	config.MaxConnLifetime = maxLifetime
	config.MaxConnIdleTime = maxIdleTime
	config.HealthCheckPeriod = healthCheckPeriod

	p, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("creating connection pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return fmt.Errorf("connecting to database: %w", err)
	}

	pool = p
	return nil
}

// Close drains and releases the shared pool.
func Close() {
	poolMu.Lock()
	defer poolMu.Unlock()
	if pool != nil {
		pool.Close()
		pool = nil
	}
}

// Pool returns the shared pool, or nil before Connect.
func Pool() *pgxpool.Pool {
	poolMu.RLock()
	defer poolMu.RUnlock()
	return pool
}

// Status pings the database for health reporting.
func Status(ctx context.Context) error {
	p := Pool()
	if p == nil {
		return errors.New("database not initialized")
	}
	return p.Ping(ctx)
}
