package store

import (
	"database/sql"
	"fmt"
	"strings"

	"niyamtrack/internal/database"
)

// Store is a flat key-value adapter over the entries table. It mirrors the
// storage contract the mobile client relies on: string keys, string values,
// batch reads and writes keyed one row per entry.
type Store struct {
	db *database.DB
}

// New creates a new key-value store backed by db
func New(db *database.DB) *Store {
	return &Store{db: db}
}

// Get returns the value for key and whether it was present
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT v FROM entries WHERE k = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read entry %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes or overwrites a single entry
func (s *Store) Set(key, value string) error {
	if _, err := s.db.Exec(s.db.Dialect.UpsertEntryQuery(), key, value); err != nil {
		return fmt.Errorf("failed to write entry %q: %w", key, err)
	}
	return nil
}

// MultiGet returns the values for the given keys; absent keys are omitted
func (s *Store) MultiGet(keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?, ", len(keys)-1) + "?"
	args := make([]interface{}, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	rows, err := s.db.Query("SELECT k, v FROM entries WHERE k IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		result[key] = value
	}
	return result, rows.Err()
}

// MultiSet writes all entries; each write is an idempotent keyed upsert
func (s *Store) MultiSet(entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin batch write: %w", err)
	}

	query := s.db.Dialect.RewriteQuery(s.db.Dialect.UpsertEntryQuery())
	for key, value := range entries {
		if _, err := tx.Exec(query, key, value); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to write entry %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// Remove deletes the given keys; missing keys are not an error
func (s *Store) Remove(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?, ", len(keys)-1) + "?"
	args := make([]interface{}, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	if _, err := s.db.Exec("DELETE FROM entries WHERE k IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("failed to remove entries: %w", err)
	}
	return nil
}

// Keys returns every key in the store
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT k FROM entries")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// KeysWithPrefix returns every key starting with prefix. The LIKE clause
// narrows the scan; the exact prefix check happens in Go so LIKE wildcard
// characters inside keys cannot widen the match.
func (s *Store) KeysWithPrefix(prefix string) ([]string, error) {
	rows, err := s.db.Query("SELECT k FROM entries WHERE k LIKE ?", prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys with prefix %q: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, rows.Err()
}
