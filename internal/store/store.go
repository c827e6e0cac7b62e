// Package store persists per-user document collections (notes, todos,
// events) in PostgreSQL. Documents are stored as JSONB in their original
// shape; title, category, and creation time are lifted into columns for
// querying. Every write is a single-document upsert — there is no
// cross-collection transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"daybook/internal/config"
)

// ErrNotFound is returned when a document does not exist in its collection.
var ErrNotFound = errors.New("document not found")

// Store wraps the database connection pool
type Store struct {
	Pool   *pgxpool.Pool
	config *config.DatabaseConfig
}

// New creates a new database connection pool
func New(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	// Configure pool settings
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("connected to database",
		"host", cfg.Host,
		"database", cfg.Database)

	return &Store{
		Pool:   pool,
		config: cfg,
	}, nil
}

// Close closes the database connection pool
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
		slog.Info("database connection closed")
	}
}

// Ping checks if the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// RunMigrations executes all pending database migrations
func (s *Store) RunMigrations(migrationsDir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	stdDB, err := sql.Open("pgx", s.config.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open stdlib connection: %w", err)
	}
	defer stdDB.Close()

	if err := goose.Up(stdDB, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("migrations completed successfully")
	return nil
}

// MigrationStatus prints the current migration status
func (s *Store) MigrationStatus(migrationsDir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	stdDB, err := sql.Open("pgx", s.config.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open stdlib connection: %w", err)
	}
	defer stdDB.Close()

	return goose.Status(stdDB, migrationsDir)
}

// Status summarizes the store contents for the status command.
type Status struct {
	Connected bool
	Notes     int
	Todos     int
	Events    int
	LastWrite *time.Time
}

// GetStatus returns per-collection document counts and the most recent write
func (s *Store) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{Connected: true}

	counts := []struct {
		table string
		dst   *int
	}{
		{"notes", &status.Notes},
		{"todos", &status.Todos},
		{"events", &status.Events},
	}
	for _, c := range counts {
		if err := s.Pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", c.table)).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	var lastWrite *time.Time
	err := s.Pool.QueryRow(ctx, `
		SELECT MAX(updated_at) FROM (
			SELECT updated_at FROM notes
			UNION ALL
			SELECT updated_at FROM todos
			UNION ALL
			SELECT updated_at FROM events
		) t
	`).Scan(&lastWrite)
	if err != nil {
		slog.Warn("failed to get last write time", "error", err)
	}
	status.LastWrite = lastWrite

	return status, nil
}
