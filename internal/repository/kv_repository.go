package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// KVRepository stores opaque blobs by key in the kv_store table.
type KVRepository struct {
	db *sql.DB
}

func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{db: db}
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := r.GetEntry(ctx, key)
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (r *KVRepository) GetEntry(ctx context.Context, key string) (*Entry, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT key, value, updated_at FROM kv_store WHERE key = ?`,
		key,
	)

	var entry Entry
	var value string
	var updatedAt string
	if err := row.Scan(&entry.Key, &value, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get key %s: %w", key, err)
	}

	parsedUpdatedAt, err := parseUpdatedAt(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse %s updated_at: %w", key, err)
	}
	entry.Value = []byte(value)
	entry.UpdatedAt = parsedUpdatedAt
	return &entry, nil
}

func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO kv_store (key, value, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		     value = excluded.value,
			 updated_at = excluded.updated_at`,
		key,
		string(value),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set key %s: %w", key, err)
	}
	return nil
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete key %s: %w", key, err)
	}
	return nil
}

func (r *KVRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key FROM kv_store ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if scanErr := rows.Scan(&key); scanErr != nil {
			return nil, fmt.Errorf("scan key: %w", scanErr)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

// parseUpdatedAt accepts the RFC3339Nano stamps Set writes as well as plain
// RFC3339 values edited in by hand.
func parseUpdatedAt(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
