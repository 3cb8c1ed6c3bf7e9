package utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	DB            *pgxpool.Pool
	dbInitialized = false
	dbMutex       sync.RWMutex
)

// SetupDatabase initializes the database connection pool. An empty URL leaves
// DB nil and the bot runs on file-backed data only.
func SetupDatabase(ctx context.Context, databaseURL string) error {
	dbMutex.Lock()
	defer dbMutex.Unlock()

	if dbInitialized || databaseURL == "" {
		return nil
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	// The derby only reads a small catalog table, keep the pool modest
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 45 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	config.ConnConfig.RuntimeParams = map[string]string{
		"application_name":                    "hrc-derby",
		"timezone":                            "UTC",
		"statement_timeout":                   "30s",
		"idle_in_transaction_session_timeout": "60s",
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	conn.Release()

	DB = pool
	dbInitialized = true
	return nil
}

// CloseDatabase closes the database connection pool
func CloseDatabase() {
	dbMutex.Lock()
	defer dbMutex.Unlock()

	if DB != nil {
		DB.Close()
		DB = nil
		dbInitialized = false
	}
}
