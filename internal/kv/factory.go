// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package kv

import (
	"database/sql"
	"fmt"

	"github.com/olegiv/folio/internal/store"
)

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds configuration for store creation.
type Config struct {
	// Backend is one of sqlite, mysql, redis or memory.
	Backend string

	// DB is the open database for the sqlite and mysql backends.
	DB *sql.DB

	// RedisURL is the Redis connection URL (redis backend only).
	RedisURL string

	// Prefix is the key prefix for Redis.
	Prefix string

	// Partition names the logical partition.
	Partition string

	// MaxValueBytes limits the size of one stored value; 0 means unlimited.
	MaxValueBytes int
}

// New creates a store based on the provided configuration.
func New(cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		return NewSQLStore(cfg.DB, SQLStoreOptions{
			Dialect:       store.DialectSQLite,
			Partition:     cfg.Partition,
			MaxValueBytes: cfg.MaxValueBytes,
		}), nil
	case BackendMySQL:
		return NewSQLStore(cfg.DB, SQLStoreOptions{
			Dialect:       store.DialectMySQL,
			Partition:     cfg.Partition,
			MaxValueBytes: cfg.MaxValueBytes,
			Migrate:       true,
		}), nil
	case BackendRedis:
		opts := DefaultRedisStoreOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.Partition != "" {
			opts.Partition = cfg.Partition
		}
		opts.MaxValueBytes = cfg.MaxValueBytes
		return NewRedisStore(opts)
	case BackendMemory:
		return NewMemoryStore(cfg.MaxValueBytes), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
