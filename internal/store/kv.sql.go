// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
)

const getKVEntry = `SELECT value FROM kv_entries WHERE bucket = ? AND entry_key = ?`

// GetKVEntry returns the stored value, or sql.ErrNoRows.
func (q *Queries) GetKVEntry(ctx context.Context, bucket, key string) ([]byte, error) {
	row := q.db.QueryRowContext(ctx, getKVEntry, bucket, key)
	var value []byte
	err := row.Scan(&value)
	return value, err
}

const upsertKVEntrySQLite = `INSERT INTO kv_entries (bucket, entry_key, value, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(bucket, entry_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

const upsertKVEntryMySQL = `INSERT INTO kv_entries (bucket, entry_key, value, updated_at)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`

// UpsertKVEntryParams holds the arguments of UpsertKVEntry.
type UpsertKVEntryParams struct {
	Bucket    string
	Key       string
	Value     []byte
	UpdatedAt string
}

// UpsertKVEntry inserts or replaces one entry.
func (q *Queries) UpsertKVEntry(ctx context.Context, arg UpsertKVEntryParams) error {
	query := upsertKVEntrySQLite
	if q.dialect == DialectMySQL {
		query = upsertKVEntryMySQL
	}
	_, err := q.db.ExecContext(ctx, query, arg.Bucket, arg.Key, arg.Value, arg.UpdatedAt)
	return err
}

const deleteKVEntry = `DELETE FROM kv_entries WHERE bucket = ? AND entry_key = ?`

// DeleteKVEntry removes one entry.
func (q *Queries) DeleteKVEntry(ctx context.Context, bucket, key string) error {
	_, err := q.db.ExecContext(ctx, deleteKVEntry, bucket, key)
	return err
}

const countKVEntries = `SELECT COUNT(*) FROM kv_entries WHERE bucket = ?`

// CountKVEntries returns the number of entries in a bucket.
func (q *Queries) CountKVEntries(ctx context.Context, bucket string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countKVEntries, bucket)
	var count int64
	err := row.Scan(&count)
	return count, err
}
