// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/folio/internal/kv"
	"github.com/olegiv/folio/internal/legacy"
	"github.com/olegiv/folio/internal/model"
)

// ErrSaveFailure indicates the durable store rejected the document.
var ErrSaveFailure = errors.New("site: save failed")

// SaveTimeout bounds the durable write of one save. The write does not
// follow the caller's cancellation: once a change is live it is written.
const SaveTimeout = 15 * time.Second

// Lookup errors of the helper mutations.
var (
	ErrInquiryNotFound      = errors.New("site: inquiry not found")
	ErrRegistrationNotFound = errors.New("site: registration not found")
	ErrInvalidTheme         = errors.New("site: unknown theme")
)

// SaveError reports a save whose durable write failed. The in-memory
// document was still updated.
type SaveError struct {
	Attempts int
	Err      error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("site: save failed after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap exposes both ErrSaveFailure and the store error, so callers can
// test errors.Is(err, kv.ErrQuotaExceeded).
func (e *SaveError) Unwrap() []error {
	return []error{ErrSaveFailure, e.Err}
}

// IsQuota reports whether the failure was a storage quota overrun.
func (e *SaveError) IsQuota() bool {
	return errors.Is(e.Err, kv.ErrQuotaExceeded)
}

// Repository holds the in-memory document and is the single entry point
// for persisting it.
type Repository struct {
	store  kv.Store
	mirror legacy.Writer
	logger *slog.Logger

	// doc is replaced on every change and never modified in place.
	mu  sync.RWMutex
	doc *model.SiteDocument
	// dirty is set while the last save of doc failed.
	dirty bool
	// provisional is set while doc stands in for a store that could not be
	// read. Such a document is never written back unless a mutation has
	// been applied to it.
	provisional bool

	// saveMu orders complete saves, including read-modify-write updates.
	saveMu sync.Mutex
}

// NewRepository creates a Repository holding initial. mirror may be nil.
func NewRepository(store kv.Store, mirror legacy.Writer, logger *slog.Logger, initial *model.SiteDocument) *Repository {
	if mirror == nil {
		mirror = legacy.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if initial == nil {
		initial = Defaults()
	}
	return &Repository{
		store:  store,
		mirror: mirror,
		logger: logger,
		doc:    Clone(initial),
	}
}

// Current returns a deep copy of the in-memory document.
func (r *Repository) Current() *model.SiteDocument {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Clone(r.doc)
}

// Read calls fn with the in-memory document without copying it. fn must not
// modify doc. Values taken from doc stay valid after fn returns, since the
// document is replaced rather than changed.
func (r *Repository) Read(fn func(doc *model.SiteDocument)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.doc)
}

// Dirty reports whether the last save failed, so the stored document lags
// the in-memory one.
func (r *Repository) Dirty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dirty
}

// Provisional reports whether the in-memory document is a stand-in for a
// store that could not be read.
func (r *Repository) Provisional() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.provisional
}

// MarkProvisional flags the in-memory document as a stand-in for an
// unreadable store. Until the store is read again or a mutation is saved,
// Flush and the automatic jobs leave the store alone.
func (r *Repository) MarkProvisional() {
	r.mu.Lock()
	r.provisional = true
	r.mu.Unlock()
}

// Reconcile replaces a provisional document with the stored one once the
// store can be read. It reports whether the document is backed by the store.
func (r *Repository) Reconcile(ctx context.Context) bool {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()
	return r.reconcile(ctx)
}

func (r *Repository) reconcile(ctx context.Context) bool {
	r.mu.RLock()
	provisional, counter := r.provisional, r.doc.VisitCount
	r.mu.RUnlock()
	if !provisional {
		return true
	}

	getCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SaveTimeout)
	defer cancel()
	raw, err := r.store.Get(getCtx, model.DocumentKey)
	var stored *model.SiteDocument
	switch {
	case err == nil:
		if stored, err = MergeJSON(raw); err != nil {
			// The next save replaces the corrupt value.
			r.logger.Warn("stored document is unreadable, keeping the in-memory one",
				"category", model.EventCategoryStorage, "error", err)
		}
	case errors.Is(err, kv.ErrNotFound):
	default:
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if stored != nil {
		if r.dirty {
			r.logger.Warn("discarding changes made while the store was unreadable",
				"category", model.EventCategoryStorage)
		}
		stored.VisitCount = max(stored.VisitCount, counter)
		r.doc = stored
		r.dirty = false
		r.logger.Info("site document reloaded from the durable store", "category", model.EventCategoryStorage)
	}
	r.provisional = false
	return true
}

// Flush writes the in-memory document when its last save failed. Nothing is
// written for a provisional document whose store is still unreadable. It
// reports whether a write was attempted.
func (r *Repository) Flush(ctx context.Context) (bool, error) {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	if !r.reconcile(ctx) || !r.Dirty() {
		return false, nil
	}
	return true, r.save(ctx, r.Current())
}

// Save replaces the in-memory document and persists it. The durable write
// is retried once. A failing legacy mirror is logged and ignored.
func (r *Repository) Save(ctx context.Context, doc *model.SiteDocument) error {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()
	return r.save(ctx, doc)
}

// Update applies fn to a copy of the current document and saves the result.
// When fn fails nothing is saved. A provisional document is reconciled with
// the store first, so a mutation never lands on a stand-in needlessly.
func (r *Repository) Update(ctx context.Context, fn func(doc *model.SiteDocument) error) (*model.SiteDocument, error) {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.reconcile(ctx)
	doc := r.Current()
	if err := fn(doc); err != nil {
		return nil, err
	}
	err := r.save(ctx, doc)
	return r.Current(), err
}

// SetVisitCount refreshes the in-memory counter without saving; the counter
// is persisted under its own key.
func (r *Repository) SetVisitCount(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc.VisitCount == n {
		return
	}
	next := *r.doc
	next.VisitCount = n
	r.doc = &next
}

func (r *Repository) save(ctx context.Context, doc *model.SiteDocument) error {
	doc = Clone(doc)
	SyncSocials(doc)

	r.mu.Lock()
	r.doc = doc
	r.mu.Unlock()

	data, err := json.Marshal(doc)
	if err != nil {
		return &SaveError{Attempts: 0, Err: fmt.Errorf("encoding document: %w", err)}
	}

	putCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SaveTimeout)
	defer cancel()

	attempts := 0
	for attempts < 2 {
		attempts++
		if err = r.store.Put(putCtx, model.DocumentKey, data); err == nil {
			break
		}
		if putCtx.Err() != nil {
			break
		}
	}

	r.mu.Lock()
	r.dirty = err != nil
	if err == nil {
		r.provisional = false
	}
	r.mu.Unlock()

	if mirrorErr := r.mirror.Write(model.LegacyKey, string(data)); mirrorErr != nil {
		r.logger.Warn("mirroring document to legacy store failed",
			"category", model.EventCategoryStorage, "error", mirrorErr)
	}

	if err != nil {
		saveErr := &SaveError{Attempts: attempts, Err: err}
		r.logger.Warn("saving site document failed",
			"category", model.EventCategoryStorage,
			"attempts", attempts,
			"quota", saveErr.IsQuota(),
			"bytes", len(data),
			"error", err)
		return saveErr
	}
	return nil
}

// AddInquiry appends an inquiry.
func (r *Repository) AddInquiry(ctx context.Context, in model.Inquiry) (*model.SiteDocument, error) {
	return r.Update(ctx, func(doc *model.SiteDocument) error {
		doc.Inquiries = append(doc.Inquiries, in)
		return nil
	})
}

// DeleteInquiry removes the inquiry with id, keeping the order of the rest.
func (r *Repository) DeleteInquiry(ctx context.Context, id string) (*model.SiteDocument, error) {
	return r.Update(ctx, func(doc *model.SiteDocument) error {
		out, ok := removeByID(doc.Inquiries, id, func(i model.Inquiry) string { return i.ID })
		if !ok {
			return ErrInquiryNotFound
		}
		doc.Inquiries = out
		return nil
	})
}

// ClearInquiries removes every inquiry.
func (r *Repository) ClearInquiries(ctx context.Context) (*model.SiteDocument, error) {
	return r.Update(ctx, func(doc *model.SiteDocument) error {
		doc.Inquiries = []model.Inquiry{}
		return nil
	})
}

// AppendChatLog appends chat turns in order.
func (r *Repository) AppendChatLog(ctx context.Context, entries ...model.ChatLog) (*model.SiteDocument, error) {
	return r.Update(ctx, func(doc *model.SiteDocument) error {
		doc.ChatLogs = append(doc.ChatLogs, entries...)
		return nil
	})
}

// AddRegistration appends a course registration.
func (r *Repository) AddRegistration(ctx context.Context, reg model.Registration) (*model.SiteDocument, error) {
	return r.Update(ctx, func(doc *model.SiteDocument) error {
		doc.Registrations = append(doc.Registrations, reg)
		return nil
	})
}

// DeleteRegistration removes the registration with id.
func (r *Repository) DeleteRegistration(ctx context.Context, id string) (*model.SiteDocument, error) {
	return r.Update(ctx, func(doc *model.SiteDocument) error {
		out, ok := removeByID(doc.Registrations, id, func(g model.Registration) string { return g.ID })
		if !ok {
			return ErrRegistrationNotFound
		}
		doc.Registrations = out
		return nil
	})
}

// SetTheme changes the accent theme.
func (r *Repository) SetTheme(ctx context.Context, theme string) (*model.SiteDocument, error) {
	if !model.IsValidTheme(theme) {
		return nil, ErrInvalidTheme
	}
	return r.Update(ctx, func(doc *model.SiteDocument) error {
		doc.Theme = theme
		return nil
	})
}

// ResetToDefaults replaces all content with the defaults. Snapshots and the
// visit counter survive so a reset can itself be rolled back.
func (r *Repository) ResetToDefaults(ctx context.Context) (*model.SiteDocument, error) {
	return r.Update(ctx, func(doc *model.SiteDocument) error {
		fresh := Defaults()
		fresh.Snapshots = doc.Snapshots
		fresh.VisitCount = doc.VisitCount
		*doc = *fresh
		return nil
	})
}

func removeByID[T any](items []T, id string, idOf func(T) string) ([]T, bool) {
	out := make([]T, 0, len(items))
	found := false
	for _, it := range items {
		if !found && idOf(it) == id {
			found = true
			continue
		}
		out = append(out, it)
	}
	return out, found
}
