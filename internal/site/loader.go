// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/olegiv/folio/internal/kv"
	"github.com/olegiv/folio/internal/legacy"
	"github.com/olegiv/folio/internal/model"
)

// Source tells where a loaded document came from.
type Source string

// Document sources.
const (
	SourceDurable  Source = "durable"
	SourceLegacy   Source = "legacy"
	SourceDefaults Source = "defaults"
)

// LegacyDecodeError reports legacy data that could not be decoded.
type LegacyDecodeError struct {
	Key string
	Err error
}

func (e *LegacyDecodeError) Error() string {
	return fmt.Sprintf("legacy: decoding %q: %v", e.Key, e.Err)
}

func (e *LegacyDecodeError) Unwrap() error {
	return e.Err
}

// Loader reconstructs the site document at startup.
type Loader struct {
	store      kv.Store
	legacy     legacy.Reader
	logger     *slog.Logger
	visitBase  int64
	lastSource Source
	// Outcome of the last durable read.
	unavailable bool
	missing     bool
}

// NewLoader creates a Loader. legacyReader may be nil.
func NewLoader(store kv.Store, legacyReader legacy.Reader, logger *slog.Logger, visitBaseline int64) *Loader {
	if legacyReader == nil {
		legacyReader = legacy.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		store:     store,
		legacy:    legacyReader,
		logger:    logger,
		visitBase: visitBaseline,
	}
}

// Load returns the merged document. It never fails: storage faults are
// logged and the defaults are used instead.
func (l *Loader) Load(ctx context.Context) *model.SiteDocument {
	doc, src := l.load(ctx)
	l.lastSource = src

	count, err := ReadCounter(ctx, l.store, l.visitBase)
	if err != nil {
		l.logger.Warn("reading visit counter failed",
			"category", model.EventCategoryStorage, "error", err)
		count = l.visitBase
	}
	doc.VisitCount = count

	l.logger.Info("site document loaded", "source", string(src), "visit_count", count)
	return doc
}

// Open loads the document and returns a repository holding it that mirrors
// to mirror. A document found only in the legacy store is written to the
// empty durable store. When the durable store could not be read the
// repository starts provisional.
func (l *Loader) Open(ctx context.Context, mirror legacy.Writer) *Repository {
	doc := l.Load(ctx)
	repo := NewRepository(l.store, mirror, l.logger, doc)

	switch {
	case l.unavailable:
		repo.MarkProvisional()
	case l.missing && l.lastSource == SourceLegacy:
		if err := repo.Save(ctx, doc); err != nil {
			l.logger.Warn("migrating legacy document failed",
				"category", model.EventCategoryStorage, "error", err)
			break
		}
		l.logger.Info("legacy document migrated to the durable store",
			"category", model.EventCategoryStorage)
	}
	return repo
}

// StoreUnavailable reports whether the last Load could not read the
// durable store.
func (l *Loader) StoreUnavailable() bool {
	return l.unavailable
}

// Source returns where the last Load found its document.
func (l *Loader) Source() Source {
	if l.lastSource == "" {
		return SourceDefaults
	}
	return l.lastSource
}

func (l *Loader) load(ctx context.Context) (*model.SiteDocument, Source) {
	raw, err := l.store.Get(ctx, model.DocumentKey)
	l.unavailable, l.missing = false, false
	switch {
	case err == nil:
		doc, mergeErr := MergeJSON(raw)
		if mergeErr == nil {
			return doc, SourceDurable
		}
		l.logger.Warn("stored document is unreadable, trying legacy store",
			"category", model.EventCategoryStorage, "error", mergeErr)
	case errors.Is(err, kv.ErrNotFound):
		l.missing = true
	default:
		l.unavailable = true
		l.logger.Warn("durable store unavailable, using defaults",
			"category", model.EventCategoryStorage, "error", err)
		// The legacy copy is still consulted so a broken primary store does
		// not hide data an older client left behind.
	}

	if doc, ok := l.loadLegacy(); ok {
		return doc, SourceLegacy
	}
	return Defaults(), SourceDefaults
}

func (l *Loader) loadLegacy() (*model.SiteDocument, bool) {
	text, ok := l.legacy.Read(model.LegacyKey)
	if !ok || strings.TrimSpace(text) == "" {
		return nil, false
	}
	doc, err := MergeJSON([]byte(text))
	if err != nil {
		l.logger.Warn("ignoring legacy document",
			"category", model.EventCategoryStorage,
			"error", &LegacyDecodeError{Key: model.LegacyKey, Err: err})
		return nil, false
	}
	return doc, true
}

// ReadCounter returns the stored visit counter, or baseline when absent.
// A value that is not a non-negative integer counts as absent.
func ReadCounter(ctx context.Context, store kv.Store, baseline int64) (int64, error) {
	raw, err := store.Get(ctx, model.VisitCountKey)
	if errors.Is(err, kv.ErrNotFound) {
		return baseline, nil
	}
	if err != nil {
		return baseline, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil || n < 0 {
		return baseline, nil
	}
	return n, nil
}

// EncodeCounter encodes a counter value for storage.
func EncodeCounter(n int64) []byte {
	return []byte(strconv.FormatInt(n, 10))
}
