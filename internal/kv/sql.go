// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package kv

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/olegiv/folio/internal/store"
)

// MySQL error numbers that mean the value does not fit.
const (
	mysqlErrRecordFileFull    = 1114
	mysqlErrNetPacketTooLarge = 1153
)

// SQLStore keeps entries in the kv_entries table of a SQLite or MySQL database.
type SQLStore struct {
	db        *sql.DB
	queries   *store.Queries
	partition string
	maxValue  int
	migrate   bool

	mu     sync.Mutex
	opened bool
	closed atomic.Bool
}

// SQLStoreOptions configures a SQLStore.
type SQLStoreOptions struct {
	// Dialect selects the SQL flavour (sqlite or mysql).
	Dialect store.Dialect

	// Partition names the logical partition (default: siteData).
	Partition string

	// MaxValueBytes limits the size of one value; 0 means unlimited.
	MaxValueBytes int

	// Migrate runs schema migrations on Open.
	Migrate bool
}

// NewSQLStore creates a store on db. The database handle is owned by the caller.
func NewSQLStore(db *sql.DB, opts SQLStoreOptions) *SQLStore {
	if opts.Dialect == "" {
		opts.Dialect = store.DialectSQLite
	}
	if opts.Partition == "" {
		opts.Partition = DefaultPartition
	}
	s := &SQLStore{
		db:        db,
		queries:   store.NewWithDialect(db, opts.Dialect),
		partition: opts.Partition,
		maxValue:  opts.MaxValueBytes,
		migrate:   opts.Migrate,
	}
	return s
}

// Open implements Store.
func (s *SQLStore) Open(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opened {
		return nil
	}
	if s.db == nil {
		return ErrStorageUnavailable
	}
	if err := s.db.PingContext(ctx); err != nil {
		return wrap(ErrStorageUnavailable, err)
	}
	if s.migrate {
		if err := store.MigrateDialect(s.db, s.queries.Dialect()); err != nil {
			return wrap(ErrStorageUnavailable, err)
		}
	}
	if _, err := s.queries.CountKVEntries(ctx, s.partition); err != nil {
		return wrap(ErrStorageUnavailable, err)
	}

	s.opened = true
	return nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.Open(ctx); err != nil {
		return nil, err
	}

	value, err := s.queries.GetKVEntry(ctx, s.partition, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// Put implements Store.
func (s *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.Open(ctx); err != nil {
		return err
	}
	if s.maxValue > 0 && len(value) > s.maxValue {
		return ErrQuotaExceeded
	}

	err := s.queries.UpsertKVEntry(ctx, store.UpsertKVEntryParams{
		Bucket:    s.partition,
		Key:       key,
		Value:     value,
		UpdatedAt: store.FormatTime(time.Now()),
	})
	if err != nil {
		if isQuotaError(err) {
			return wrap(ErrQuotaExceeded, err)
		}
		return err
	}
	return nil
}

// Close implements Store. The underlying *sql.DB is left open.
func (s *SQLStore) Close() error {
	s.closed.Store(true)
	return nil
}

// isQuotaError reports whether a driver error means the storage is full.
func isQuotaError(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrRecordFileFull || myErr.Number == mysqlErrNetPacketTooLarge
	}
	// modernc.org/sqlite and mattn/go-sqlite3 both report SQLITE_FULL with this text.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") || strings.Contains(msg, "string or blob too big")
}

var _ Store = (*SQLStore)(nil)
