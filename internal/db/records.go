package db

import (
	"database/sql"
	"fmt"

	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/memory"
)

// Records provides keyed, atomic access to persisted persona snapshots.
// A put is a single upsert statement, so a concurrent get sees either the
// old snapshot or the new one, never a partial write.
type Records struct {
	db *DB
}

// NewRecords creates a Records store backed by the given DB.
func NewRecords(database *DB) *Records {
	return &Records{db: database}
}

// Put stores or replaces the snapshot for a persona key.
func (r *Records) Put(key string, snapshot []byte) error {
	_, err := r.db.Conn().Exec(`
		INSERT INTO persona_records (persona_key, snapshot, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(persona_key) DO UPDATE SET
		    snapshot   = excluded.snapshot,
		    updated_at = CURRENT_TIMESTAMP`,
		key, string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("records: put %q: %w", key, err)
	}
	return nil
}

// Get returns the snapshot for a persona key, or memory.ErrNoRecord when
// none exists.
func (r *Records) Get(key string) ([]byte, error) {
	var snapshot string
	err := r.db.Conn().QueryRow(
		`SELECT snapshot FROM persona_records WHERE persona_key = ?`, key,
	).Scan(&snapshot)
	if err == sql.ErrNoRows {
		return nil, memory.ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("records: get %q: %w", key, err)
	}
	return []byte(snapshot), nil
}

// List returns every persona key with a stored record, ordered by key.
func (r *Records) List() ([]string, error) {
	rows, err := r.db.Conn().Query(
		`SELECT persona_key FROM persona_records ORDER BY persona_key`,
	)
	if err != nil {
		return nil, fmt.Errorf("records: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Delete removes a persona's record. Deleting a missing key is not an error.
func (r *Records) Delete(key string) error {
	_, err := r.db.Conn().Exec(`DELETE FROM persona_records WHERE persona_key = ?`, key)
	if err != nil {
		return fmt.Errorf("records: delete %q: %w", key, err)
	}
	return nil
}
