// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "folio-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() { _ = db.Close() }
}

func TestKVEntry_UpsertAndGet(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	_, err := q.GetKVEntry(ctx, "siteData", "portfolio_data")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("GetKVEntry on empty table: got %v, want sql.ErrNoRows", err)
	}

	for _, v := range []string{`{"v":1}`, `{"v":2}`} {
		err := q.UpsertKVEntry(ctx, UpsertKVEntryParams{
			Bucket:    "siteData",
			Key:       "portfolio_data",
			Value:     []byte(v),
			UpdatedAt: FormatTime(time.Now()),
		})
		if err != nil {
			t.Fatalf("UpsertKVEntry: %v", err)
		}
	}

	got, err := q.GetKVEntry(ctx, "siteData", "portfolio_data")
	if err != nil {
		t.Fatalf("GetKVEntry: %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Errorf("GetKVEntry = %s, want last written value", got)
	}

	count, err := q.CountKVEntries(ctx, "siteData")
	if err != nil {
		t.Fatalf("CountKVEntries: %v", err)
	}
	if count != 1 {
		t.Errorf("CountKVEntries = %d, want 1", count)
	}
}

func TestKVEntry_BucketsAreIsolated(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	if err := q.UpsertKVEntry(ctx, UpsertKVEntryParams{Bucket: "a", Key: "k", Value: []byte("1"), UpdatedAt: FormatTime(time.Now())}); err != nil {
		t.Fatalf("UpsertKVEntry: %v", err)
	}

	if _, err := q.GetKVEntry(ctx, "b", "k"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetKVEntry in other bucket: got %v, want sql.ErrNoRows", err)
	}

	if err := q.DeleteKVEntry(ctx, "a", "k"); err != nil {
		t.Fatalf("DeleteKVEntry: %v", err)
	}
	if _, err := q.GetKVEntry(ctx, "a", "k"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetKVEntry after delete: got %v, want sql.ErrNoRows", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestEvents_CreateListPrune(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()

	for _, p := range []CreateEventParams{
		{Level: "warning", Category: "storage", Message: "old", Metadata: "{}", CreatedAt: old},
		{Level: "error", Category: "storage", Message: "recent", Metadata: `{"k":"v"}`, CreatedAt: recent},
	} {
		if err := q.CreateEvent(ctx, p); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	events, err := q.ListEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("ListEvents returned %d events, want 2", len(events))
	}
	if events[0].Message != "recent" {
		t.Errorf("first event = %q, want newest first", events[0].Message)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt was not parsed")
	}

	if err := q.DeleteEventsBefore(ctx, time.Now().Add(-24*time.Hour)); err != nil {
		t.Fatalf("DeleteEventsBefore: %v", err)
	}
	events, err = q.ListEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].Message != "recent" {
		t.Errorf("after prune got %+v, want only the recent event", events)
	}
}

func TestFormatTime_FixedWidth(t *testing.T) {
	a := FormatTime(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	b := FormatTime(time.Date(2026, 1, 2, 3, 4, 5, 123456000, time.FixedZone("X", 3600)))
	if len(a) != len(b) {
		t.Errorf("FormatTime widths differ: %q vs %q", a, b)
	}
}
