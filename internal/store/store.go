// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/nclock/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for persisted settings and alarm history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS alarm_fires (
			id INTEGER PRIMARY KEY,
			alarm_id TEXT NOT NULL,
			hour INTEGER NOT NULL,
			minute INTEGER NOT NULL,
			trigger_key TEXT NOT NULL,
			fired_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_alarm_fires_fired_at ON alarm_fires(fired_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetAll returns every stored key-value pair.
func (s *Store) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM kv`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetMany upserts all values in one transaction.
func (s *Store) SetMany(ctx context.Context, values map[string]string) (err error) {
	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	now := time.Now().Format(time.RFC3339Nano)
	for key, value := range values {
		if _, err = stmt.ExecContext(ctx, key, value, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// InsertFire records an emitted alarm event.
func (s *Store) InsertFire(ctx context.Context, rec model.FireRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO alarm_fires (alarm_id, hour, minute, trigger_key, fired_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.AlarmID,
		rec.Hour,
		rec.Minute,
		rec.TriggerKey,
		rec.FiredAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListFires returns the most recent fire records, newest first. A limit of
// zero or less returns all records.
func (s *Store) ListFires(ctx context.Context, limit int) ([]model.FireRecord, error) {
	query := `SELECT id, alarm_id, hour, minute, trigger_key, fired_at
		FROM alarm_fires
		ORDER BY fired_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.FireRecord
	for rows.Next() {
		var rec model.FireRecord
		var firedAt string
		if err := rows.Scan(&rec.ID, &rec.AlarmID, &rec.Hour, &rec.Minute, &rec.TriggerKey, &firedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, firedAt)
		if err != nil {
			return nil, err
		}
		rec.FiredAt = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
