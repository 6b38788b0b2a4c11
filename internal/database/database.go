package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/golang-migrate/migrate/v4"
	"time"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const pingTimeout = 5 * time.Second

// Open connects to postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func Migrate(sourceURL, dbURL string) error {
	m, err := newMigrate(sourceURL, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err = m.Up(); !errors.Is(err, migrate.ErrNoChange) && err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// Rollback reverts the given number of migration steps.
func Rollback(sourceURL, dbURL string, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}

	m, err := newMigrate(sourceURL, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err = m.Steps(-steps); !errors.Is(err, migrate.ErrNoChange) && err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	return nil
}

func newMigrate(sourceURL, dbURL string) (*migrate.Migrate, error) {
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init migrations: %w", err)
	}
	return m, nil
}
