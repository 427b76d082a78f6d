package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore persists the snapshot as a single keyed row. It shares the
// store package's database handle so the snapshot and the event log live
// in one file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the backing table if needed.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS assessment_snapshot (
		storage_key TEXT PRIMARY KEY,
		payload     TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessment_snapshot (storage_key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(storage_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		StorageKey, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, learnerID string) (*Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM assessment_snapshot WHERE storage_key = ?`, StorageKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		// Corrupt record: delete and treat as absence.
		s.db.ExecContext(ctx, `DELETE FROM assessment_snapshot WHERE storage_key = ?`, StorageKey)
		return nil, nil
	}

	if snap.LearnerID != learnerID {
		return nil, nil
	}
	return &snap, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM assessment_snapshot WHERE storage_key = ?`, StorageKey); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
