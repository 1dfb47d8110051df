// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package kv

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries as plain Redis strings without expiry.
type RedisStore struct {
	client    *redis.Client
	prefix    string
	partition string
	maxValue  int
	timeout   time.Duration

	mu     sync.Mutex
	opened bool
	closed atomic.Bool
}

// RedisStoreOptions configures the Redis store.
type RedisStoreOptions struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Prefix is prepended to all keys (e.g., "folio:")
	Prefix string

	// Partition names the logical partition (default: siteData).
	Partition string

	// MaxValueBytes limits the size of one value; 0 means unlimited.
	MaxValueBytes int

	// PoolSize is the maximum number of connections (0 = use default)
	PoolSize int

	// ConnectTimeout is the timeout for establishing a connection
	ConnectTimeout time.Duration
}

// DefaultRedisStoreOptions returns sensible defaults.
func DefaultRedisStoreOptions() RedisStoreOptions {
	return RedisStoreOptions{
		Prefix:         "folio:",
		Partition:      DefaultPartition,
		PoolSize:       10,
		ConnectTimeout: 5 * time.Second,
	}
}

// NewRedisStore creates a Redis store. The connection is verified lazily by Open.
func NewRedisStore(opts RedisStoreOptions) (*RedisStore, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}
	if opts.ConnectTimeout > 0 {
		redisOpts.DialTimeout = opts.ConnectTimeout
	}
	if opts.Partition == "" {
		opts.Partition = DefaultPartition
	}

	return &RedisStore{
		client:    redis.NewClient(redisOpts),
		prefix:    opts.Prefix,
		partition: opts.Partition,
		maxValue:  opts.MaxValueBytes,
		timeout:   opts.ConnectTimeout,
	}, nil
}

// prefixKey namespaces a key by prefix and partition.
func (s *RedisStore) prefixKey(key string) string {
	return s.prefix + s.partition + ":" + key
}

// Open implements Store. Redis needs no schema; Open verifies the connection.
func (s *RedisStore) Open(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opened {
		return nil
	}

	pingCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.client.Ping(pingCtx).Err(); err != nil {
		return wrap(ErrStorageUnavailable, err)
	}

	s.opened = true
	return nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.Open(ctx); err != nil {
		return nil, err
	}

	val, err := s.client.Get(ctx, s.prefixKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.Open(ctx); err != nil {
		return err
	}
	if s.maxValue > 0 && len(value) > s.maxValue {
		return ErrQuotaExceeded
	}

	if err := s.client.Set(ctx, s.prefixKey(key), value, 0).Err(); err != nil {
		if strings.HasPrefix(err.Error(), "OOM") {
			return wrap(ErrQuotaExceeded, err)
		}
		return err
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		return s.client.Close()
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
