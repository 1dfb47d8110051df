// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package kv provides the durable key-value store that holds the site
// document and the visit counter.
package kv

import (
	"context"
)

// DefaultPartition is the single logical partition used by the site.
const DefaultPartition = "siteData"

// Store is an asynchronous, per-key atomic key-value store.
// All implementations must be safe for concurrent use.
type Store interface {
	// Open initializes the partition, creating it if absent. It never
	// destroys existing data and may be called any number of times.
	Open(ctx context.Context) error

	// Get returns the value stored under key, or ErrNotFound.
	// Get opens the store first if needed.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	// Put opens the store first if needed.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases any resources held by the store.
	Close() error
}

// Error represents an error type for store operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrNotFound indicates no value is stored under the key.
	ErrNotFound Error = "kv: not found"

	// ErrStorageUnavailable indicates the backing storage could not be opened.
	ErrStorageUnavailable Error = "kv: storage unavailable"

	// ErrQuotaExceeded indicates the value did not fit into the storage limits.
	ErrQuotaExceeded Error = "kv: quota exceeded"

	// ErrClosed indicates the store has been closed.
	ErrClosed Error = "kv: store closed"
)

// wrapped pairs a sentinel with the driver error that caused it, so that
// both errors.Is(err, ErrX) and the original message survive.
type wrapped struct {
	kind  Error
	cause error
}

func (w *wrapped) Error() string {
	return string(w.kind) + ": " + w.cause.Error()
}

func (w *wrapped) Unwrap() []error {
	return []error{w.kind, w.cause}
}

func wrap(kind Error, cause error) error {
	if cause == nil {
		return kind
	}
	return &wrapped{kind: kind, cause: cause}
}
