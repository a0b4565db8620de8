// Package store implements the Store collaborator from spec.md §4.6: the
// analysis_request queue table and the analysis table, with upsert/status
// update/get operations keyed on (match_id, requester_id).
//
// The ent schema files under ent/schema/ document this data model (they
// compile against entgo.io/ent directly, no codegen required), but the
// retrieval pack carries no generated ent runtime client — only
// ent/schema/*.go — and go generate cannot be run here. So the actual
// queries below are hand-written SQL over database/sql, using
// jackc/pgx/v5's stdlib driver, following pkg/database/client.go's
// DSN/pool/migration wiring exactly (see DESIGN.md).
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/matchmind/matchmind/internal/config"
)

//go:embed migrations
var migrationsFS embed.FS

// DB wraps a *sql.DB connection pool sized per config.DatabaseConfig,
// mirroring pkg/database.Client's NewClient wiring.
type DB struct {
	conn *sql.DB
}

// Open connects to Postgres, configures the pool and applies embedded
// migrations, returning a ready-to-use DB.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode)

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database connection: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(1 * time.Hour)
	}
	if cfg.ConnMaxIdleTime > 0 {
		conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	} else {
		conn.SetConnMaxIdleTime(15 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Conn returns the underlying *sql.DB, for health checks and the
// diagnostics API.
func (d *DB) Conn() *sql.DB { return d.conn }

// Ping reports whether the connection pool can still reach Postgres, used
// by internal/api's health endpoint.
func (d *DB) Ping(ctx context.Context) error { return d.conn.PingContext(ctx) }

// Close closes the underlying connection pool.
func (d *DB) Close() error { return d.conn.Close() }

func runMigrations(conn *sql.DB) error {
	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("creating postgres migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	// Close only the source driver, not the shared *sql.DB the postgres
	// driver wraps — closing the migrate instance would close conn too.
	defer src.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
