// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package site

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio/internal/kv"
	"github.com/olegiv/folio/internal/legacy"
	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/testutil"
)

func TestLoaderDefaultsWhenEmpty(t *testing.T) {
	ctx := context.Background()
	l := NewLoader(kv.NewMemoryStore(0), nil, testutil.TestLoggerSilent(), 1200)

	doc := l.Load(ctx)

	assert.Equal(t, SourceDefaults, l.Source())
	assert.Equal(t, int64(1200), doc.VisitCount)
	assert.Equal(t, Defaults().Projects, doc.Projects)
}

func TestLoaderMergesDurableDocument(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore(0)
	// A document written before courses and testimonials existed.
	require.NoError(t, store.Put(ctx, model.DocumentKey, []byte(`{
		"projects": [{"id":"1","title":"Old","desc":"","tags":["Go"],"cat":"Web App"}],
		"adminPassword": "s3cret",
		"translations": {"vi": {"hero": {"badge": "Đang bận"}}}
	}`)))
	require.NoError(t, store.Put(ctx, model.VisitCountKey, []byte("57")))

	l := NewLoader(store, nil, testutil.TestLoggerSilent(), 0)
	doc := l.Load(ctx)

	assert.Equal(t, SourceDurable, l.Source())
	require.Len(t, doc.Projects, 1)
	assert.Equal(t, "Old", doc.Projects[0].Title)
	assert.Equal(t, "s3cret", doc.AdminPassword)
	assert.Equal(t, Defaults().Courses, doc.Courses)
	assert.Equal(t, Defaults().Testimonials, doc.Testimonials)
	assert.Equal(t, "Đang bận", doc.Translations[model.LangVI]["hero"]["badge"])
	assert.Equal(t, Defaults().Translations[model.LangVI]["hero"]["bio"], doc.Translations[model.LangVI]["hero"]["bio"])
	assert.Equal(t, int64(57), doc.VisitCount)
}

func TestLoaderFallsBackToLegacy(t *testing.T) {
	ctx := context.Background()
	old := legacy.NewMemoryStore()
	require.NoError(t, old.Write(model.LegacyKey, `{"theme":"emerald"}`))

	l := NewLoader(kv.NewMemoryStore(0), old, testutil.TestLoggerSilent(), 0)
	doc := l.Load(ctx)

	assert.Equal(t, SourceLegacy, l.Source())
	assert.Equal(t, model.ThemeEmerald, doc.Theme)
}

func TestLoaderIgnoresUndecodableLegacy(t *testing.T) {
	ctx := context.Background()
	old := legacy.NewMemoryStore()
	require.NoError(t, old.Write(model.LegacyKey, `{"theme": "emer`))

	l := NewLoader(kv.NewMemoryStore(0), old, testutil.TestLoggerSilent(), 0)
	doc := l.Load(ctx)

	assert.Equal(t, SourceDefaults, l.Source())
	assert.Equal(t, model.DefaultTheme, doc.Theme)
}

func TestLoaderSurvivesUnavailableStore(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore(0)
	store.FailOpen(true)

	l := NewLoader(store, nil, testutil.TestLoggerSilent(), 9)
	doc := l.Load(ctx)

	require.NotNil(t, doc)
	assert.Equal(t, SourceDefaults, l.Source())
	assert.Equal(t, int64(9), doc.VisitCount)
}

func TestLoaderPrefersLegacyOverCorruptDurable(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore(0)
	require.NoError(t, store.Put(ctx, model.DocumentKey, []byte(`[1,2,3]`)))
	old := legacy.NewMemoryStore()
	require.NoError(t, old.Write(model.LegacyKey, `{"theme":"amber"}`))

	l := NewLoader(store, old, testutil.TestLoggerSilent(), 0)
	doc := l.Load(ctx)

	assert.Equal(t, SourceLegacy, l.Source())
	assert.Equal(t, model.ThemeAmber, doc.Theme)
}

func TestOpenMigratesLegacyDocument(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore(0)
	old := legacy.NewMemoryStore()
	require.NoError(t, old.Write(model.LegacyKey, `{"theme":"emerald"}`))

	repo := NewLoader(store, old, testutil.TestLoggerSilent(), 0).Open(ctx, old)

	assert.False(t, repo.Provisional())
	assert.False(t, repo.Dirty())
	assert.Equal(t, model.ThemeEmerald, storedDocument(t, store).Theme)
}

func TestOpenLeavesCorruptDurableDocument(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore(0)
	require.NoError(t, store.Put(ctx, model.DocumentKey, []byte(`[1,2,3]`)))
	old := legacy.NewMemoryStore()
	require.NoError(t, old.Write(model.LegacyKey, `{"theme":"amber"}`))

	repo := NewLoader(store, old, testutil.TestLoggerSilent(), 0).Open(ctx, old)

	assert.Equal(t, model.ThemeAmber, repo.Current().Theme)
	raw, err := store.Get(ctx, model.DocumentKey)
	require.NoError(t, err)
	assert.Equal(t, `[1,2,3]`, string(raw))
}

func TestOpenUnavailableStoreIsProvisional(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore(0)
	store.FailOpen(true)

	l := NewLoader(store, nil, testutil.TestLoggerSilent(), 0)
	repo := l.Open(ctx, nil)

	assert.True(t, l.StoreUnavailable())
	assert.True(t, repo.Provisional())
	assert.Zero(t, store.PutCalls())
}

func TestReadCounter(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore(0)

	n, err := ReadCounter(ctx, store, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), n)

	require.NoError(t, store.Put(ctx, model.VisitCountKey, EncodeCounter(314)))
	n, err = ReadCounter(ctx, store, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(314), n)

	require.NoError(t, store.Put(ctx, model.VisitCountKey, []byte("garbage")))
	n, err = ReadCounter(ctx, store, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), n)

	store.FailOpen(true)
	_, err = ReadCounter(ctx, store, 100)
	assert.ErrorIs(t, err, kv.ErrStorageUnavailable)
}
