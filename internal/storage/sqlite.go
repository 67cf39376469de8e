package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists namespaced state blobs in SQLite. Each namespace holds one
// JSON payload wrapped in a schema-version envelope, mirroring the
// "write state, read state back" contract the in-memory stores expect.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) the database at path and initializes the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	// WAL keeps reads cheap while the write-through stores update state.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles a single writer best.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS app_state (
		namespace      TEXT PRIMARY KEY,
		schema_version INTEGER NOT NULL,
		payload        TEXT NOT NULL,
		updated_at     INTEGER NOT NULL
	);`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Save upserts the namespace's payload with its schema version.
func (s *Store) Save(ctx context.Context, namespace string, version int, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s state: %w", namespace, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO app_state (namespace, schema_version, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET
			schema_version = excluded.schema_version,
			payload        = excluded.payload,
			updated_at     = excluded.updated_at`,
		namespace, version, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save %s state: %w", namespace, err)
	}
	return nil
}

// Load reads the namespace's payload into out. It returns false when the
// namespace is absent or was written with a different schema version; a
// version mismatch is logged and treated as absent rather than trusted.
func (s *Store) Load(ctx context.Context, namespace string, version int, out any) (bool, error) {
	var storedVersion int
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT schema_version, payload FROM app_state WHERE namespace = ?`,
		namespace).Scan(&storedVersion, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s state: %w", namespace, err)
	}

	if storedVersion != version {
		log.Printf("[storage] %s state has schema version %d, expected %d; discarding", namespace, storedVersion, version)
		return false, nil
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, fmt.Errorf("failed to decode %s state: %w", namespace, err)
	}
	return true, nil
}

// Delete removes the namespace's payload.
func (s *Store) Delete(ctx context.Context, namespace string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM app_state WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("failed to delete %s state: %w", namespace, err)
	}
	return nil
}
