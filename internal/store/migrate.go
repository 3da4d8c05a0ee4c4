package store

import (
	"context"
	"fmt"

	"remindd/pkg/logx"
)

// MigrationError means the on-disk schema could not be brought up to
// the current version. It is fatal: running against a half-migrated
// schema risks silent data corruption, so Open fails instead.
type MigrationError struct {
	Version int
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("schema migration to version %d failed: %v", e.Version, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// migrations is the ordered, append-only history of the tasks schema.
// Steps only ever add columns with backward-compatible defaults; they
// never drop, rename or reorder. The persisted PRAGMA user_version
// records which steps have already run, making migrate idempotent.
var migrations = []struct {
	version int
	stmts   []string
}{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS tasks (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				title      TEXT NOT NULL,
				date       TEXT NOT NULL,
				time       TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
		},
	},
	{
		version: 2,
		stmts: []string{
			`ALTER TABLE tasks ADD COLUMN note TEXT NOT NULL DEFAULT ''`,
		},
	},
	{
		version: 3,
		stmts: []string{
			`ALTER TABLE tasks ADD COLUMN fired INTEGER NOT NULL DEFAULT 0`,
		},
	},
	{
		version: 4,
		stmts: []string{
			`ALTER TABLE tasks ADD COLUMN recurrence TEXT NOT NULL DEFAULT 'none'`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(fired, date, time)`,
		},
	},
}

func schemaVersion() int { return migrations[len(migrations)-1].version }

func (s *Store) migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&current); err != nil {
		return &MigrationError{Err: err}
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return &MigrationError{Version: m.version, Err: err}
		}
		for _, stmt := range m.stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return &MigrationError{Version: m.version, Err: err}
			}
		}
		// PRAGMA takes no bind parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			_ = tx.Rollback()
			return &MigrationError{Version: m.version, Err: err}
		}
		if err := tx.Commit(); err != nil {
			return &MigrationError{Version: m.version, Err: err}
		}
		s.log.Info("schema migrated", logx.Int("version", m.version))
		current = m.version
	}
	return nil
}
