// Package db opens the SQLite database shared by the wallet and round history
// repositories.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fadedpez/blackjacktable/internal/logging"
	"github.com/fadedpez/blackjacktable/pkg/db/migrations"
)

// InMemory opens a private database that lives as long as the handle
const InMemory = ":memory:"

// Open opens the SQLite database at path without touching the schema
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != InMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
		dsn = "file:" + path
	}
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on"
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// SQLite allows one writer; an in-memory database is also per connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	return conn, nil
}

// OpenAndMigrate opens the database and applies the embedded migrations
func OpenAndMigrate(ctx context.Context, path string, logger *logging.Logger) (*sql.DB, error) {
	conn, err := Open(path)
	if err != nil {
		return nil, err
	}

	if _, err := migrations.NewMigrator(conn, migrations.Embedded(), logger).MigrateUp(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error migrating database: %w", err)
	}

	return conn, nil
}
