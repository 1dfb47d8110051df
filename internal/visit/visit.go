// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package visit counts browser sessions.
package visit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mileusna/useragent"

	"github.com/olegiv/folio/internal/kv"
	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/site"
)

// ErrNegativeCount is returned when the counter would be set below zero.
var ErrNegativeCount = errors.New("visit: count must not be negative")

// Marker is the per-session flag recording that a session was counted.
type Marker interface {
	Marked(ctx context.Context) bool
	Mark(ctx context.Context)
}

// Counter maintains the persisted visit counter.
type Counter struct {
	store    kv.Store
	marker   Marker
	baseline int64

	mu sync.Mutex
}

// NewCounter creates a Counter. baseline is used while nothing is stored.
func NewCounter(store kv.Store, marker Marker, baseline int64) *Counter {
	return &Counter{store: store, marker: marker, baseline: baseline}
}

// RegisterVisit increments the counter once per session and returns the
// current value whether or not it was incremented.
// Requests from bots are never counted.
func (c *Counter) RegisterVisit(ctx context.Context, userAgent string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := site.ReadCounter(ctx, c.store, c.baseline)
	if err != nil {
		return n, fmt.Errorf("reading visit counter: %w", err)
	}
	if c.marker.Marked(ctx) || IsBot(userAgent) {
		return n, nil
	}

	n++
	if err := c.store.Put(ctx, model.VisitCountKey, site.EncodeCounter(n)); err != nil {
		// Not marked, so the next request of this session tries again.
		return n - 1, fmt.Errorf("storing visit counter: %w", err)
	}
	c.marker.Mark(ctx)
	return n, nil
}

// Current returns the counter without registering a visit.
func (c *Counter) Current(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return site.ReadCounter(ctx, c.store, c.baseline)
}

// Raise moves the counter up to n, as done from the admin console, and
// returns the resulting value. The counter never decreases: a lower n
// leaves it as it is.
func (c *Counter) Raise(ctx context.Context, n int64) (int64, error) {
	if n < 0 {
		return 0, ErrNegativeCount
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, err := site.ReadCounter(ctx, c.store, c.baseline)
	if err != nil {
		return cur, fmt.Errorf("reading visit counter: %w", err)
	}
	if n <= cur {
		return cur, nil
	}
	if err := c.store.Put(ctx, model.VisitCountKey, site.EncodeCounter(n)); err != nil {
		return cur, fmt.Errorf("storing visit counter: %w", err)
	}
	return n, nil
}

// IsBot reports whether userAgent belongs to a crawler or other robot.
func IsBot(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	return useragent.Parse(userAgent).Bot
}
