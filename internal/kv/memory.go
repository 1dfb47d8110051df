// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package kv

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// MemoryStore keeps values in process memory. It is used in tests and when
// FOLIO_STORE=memory; data does not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	maxValue int
	closed   atomic.Bool

	// Failure injection for tests.
	failOpen  atomic.Bool
	failPuts  atomic.Int32
	putCalls  atomic.Int64
	openCalls atomic.Int64
}

// NewMemoryStore creates an empty memory store. maxValue limits the size of a
// single value in bytes; 0 means unlimited.
func NewMemoryStore(maxValue int) *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		maxValue: maxValue,
	}
}

// FailOpen makes every following Open fail with ErrStorageUnavailable.
func (m *MemoryStore) FailOpen(fail bool) {
	m.failOpen.Store(fail)
}

// FailPuts makes the next n Put calls fail.
func (m *MemoryStore) FailPuts(n int) {
	m.failPuts.Store(int32(n))
}

// PutCalls returns how many times Put was called.
func (m *MemoryStore) PutCalls() int64 {
	return m.putCalls.Load()
}

// Open implements Store.
func (m *MemoryStore) Open(_ context.Context) error {
	m.openCalls.Add(1)
	if m.closed.Load() {
		return ErrClosed
	}
	if m.failOpen.Load() {
		return ErrStorageUnavailable
	}
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := m.Open(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put implements Store.
func (m *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	m.putCalls.Add(1)
	if err := m.Open(ctx); err != nil {
		return err
	}
	if m.failPuts.Load() > 0 {
		m.failPuts.Add(-1)
		return errors.New("memory store: injected put failure")
	}
	if m.maxValue > 0 && len(value) > m.maxValue {
		return ErrQuotaExceeded
	}

	v := make([]byte, len(value))
	copy(v, value)

	m.mu.Lock()
	m.data[key] = v
	m.mu.Unlock()
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.closed.Store(true)
	return nil
}

var _ Store = (*MemoryStore)(nil)
