// Package audit implements the optional, replay-incapable message audit
// trail: a SQLite-backed sink a hive can fire envelope copies at for
// debugging, grounded on the teacher's internal/db SQLite store but trimmed
// down to the one table this sink needs.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

// Store wraps a SQLite database holding the audit_records table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and applies
// the embedded migrations, returning a ready-to-use Store.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf(
				"audit: create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf(
		"file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path,
	)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: open database: %w", err)
	}

	// A single writer, single reader is plenty for a debug sink.
	db.SetMaxOpenConns(1)

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("audit: load embedded migrations: %w", err)
	}

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("audit: sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("audit: build migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("audit: apply migrations: %w", err)
	}

	return nil
}

// RecordEnvelope inserts one row from an envelope's wire map (see
// envelope.Message.ToWireMap), the shape an audit_record directive's body
// carries.
func (s *Store) RecordEnvelope(ctx context.Context, wire map[string]any) error {
	messageID, _ := wire["id"].(string)
	to, _ := wire["to"].(string)
	from, _ := wire["from_id"].(string)
	directive, _ := wire["directive"].(string)
	inReplyTo, _ := wire["in_reply_to"].(string)
	wantsReply, _ := wire["wants_reply"].(bool)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_records
			(message_id, to_id, from_id, directive, in_reply_to, wants_reply)
		VALUES (?, ?, ?, ?, ?, ?)`,
		messageID, to, nullIfEmpty(from), directive, nullIfEmpty(inReplyTo),
		wantsReply,
	)
	if err != nil {
		return fmt.Errorf("audit: insert record: %w", err)
	}

	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
