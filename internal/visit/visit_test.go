// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package visit

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio/internal/kv"
	"github.com/olegiv/folio/internal/model"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// memMarker simulates one session's volatile storage.
type memMarker struct {
	mu     sync.Mutex
	marked bool
}

func (m *memMarker) Marked(context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.marked
}

func (m *memMarker) Mark(context.Context) {
	m.mu.Lock()
	m.marked = true
	m.mu.Unlock()
}

func (m *memMarker) clear() {
	m.mu.Lock()
	m.marked = false
	m.mu.Unlock()
}

func TestRegisterVisitOncePerSession(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore(0)
	marker := &memMarker{}
	c := NewCounter(store, marker, 100)

	first, err := c.RegisterVisit(ctx, browserUA)
	require.NoError(t, err)
	second, err := c.RegisterVisit(ctx, browserUA)
	require.NoError(t, err)

	assert.Equal(t, int64(101), first)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), store.PutCalls())

	marker.clear()
	third, err := c.RegisterVisit(ctx, browserUA)
	require.NoError(t, err)
	assert.Equal(t, first+1, third)

	raw, err := store.Get(ctx, model.VisitCountKey)
	require.NoError(t, err)
	assert.Equal(t, "102", string(raw))
}

func TestRegisterVisitIgnoresBots(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore(0)
	marker := &memMarker{}
	c := NewCounter(store, marker, 5)

	n, err := c.RegisterVisit(ctx, "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.False(t, marker.Marked(ctx))
	assert.Equal(t, int64(0), store.PutCalls())
}

type sessionKey struct{}

// sessionMarker keys the flag by a session id carried in the context, the
// way the HTTP session does.
type sessionMarker struct {
	mu   sync.Mutex
	seen map[int]bool
}

func (m *sessionMarker) Marked(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[ctx.Value(sessionKey{}).(int)]
}

func (m *sessionMarker) Mark(ctx context.Context) {
	m.mu.Lock()
	m.seen[ctx.Value(sessionKey{}).(int)] = true
	m.mu.Unlock()
}

func TestRegisterVisitConcurrentSessions(t *testing.T) {
	store := kv.NewMemoryStore(0)
	c := NewCounter(store, &sessionMarker{seen: map[int]bool{}}, 0)

	const sessions = 25
	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		ctx := context.WithValue(context.Background(), sessionKey{}, i)
		for j := 0; j < 3; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := c.RegisterVisit(ctx, browserUA)
				assert.NoError(t, err)
			}()
		}
	}
	wg.Wait()

	n, err := c.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(sessions), n)
	assert.Equal(t, int64(sessions), store.PutCalls())
}

func TestRegisterVisitStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore(0)
	marker := &memMarker{}
	c := NewCounter(store, marker, 3)

	store.FailPuts(1)
	n, err := c.RegisterVisit(ctx, browserUA)
	require.Error(t, err)
	assert.Equal(t, int64(3), n)
	assert.False(t, marker.Marked(ctx))

	n, err = c.RegisterVisit(ctx, browserUA)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestRaiseAndCurrent(t *testing.T) {
	ctx := context.Background()
	c := NewCounter(kv.NewMemoryStore(0), &memMarker{}, 10)

	n, err := c.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	n, err = c.Raise(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), n)
	n, err = c.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), n)

	_, err = c.Raise(ctx, -1)
	assert.ErrorIs(t, err, ErrNegativeCount)
}

func TestRaiseNeverLowers(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore(0)
	c := NewCounter(store, &memMarker{}, 0)
	_, err := c.Raise(ctx, 40)
	require.NoError(t, err)
	puts := store.PutCalls()

	n, err := c.Raise(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(40), n)
	assert.Equal(t, puts, store.PutCalls())

	n, err = c.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(40), n)
}

func TestIsBot(t *testing.T) {
	assert.False(t, IsBot(""))
	assert.False(t, IsBot(browserUA))
	assert.True(t, IsBot("Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)"))
}
