// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package snapshot manages the bounded list of point-in-time copies kept
// inside the site document for manual rollback.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/site"
)

// MaxSnapshots is the number of snapshots retained.
const MaxSnapshots = site.MaxSnapshots

// MaxLabelLength bounds a snapshot label in runes.
const MaxLabelLength = 120

// ErrSnapshotNotFound is returned when no snapshot has the requested id.
var ErrSnapshotNotFound = errors.New("snapshot: not found")

// Manager creates, restores and prunes snapshots. Every operation returns a
// new document for the caller to persist and leaves its input untouched.
type Manager struct {
	now   func() time.Time
	newID func() string
}

// NewManager creates a Manager using the wall clock and UUIDv7 ids.
func NewManager() *Manager {
	return &Manager{
		now:   time.Now,
		newID: newID,
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Create prepends a snapshot of doc labelled label and drops the oldest
// entries beyond MaxSnapshots. The embedded copy carries no snapshots.
func (m *Manager) Create(doc *model.SiteDocument, label string) (*model.SiteDocument, model.Snapshot) {
	out := site.Clone(doc)

	data := site.Clone(doc)
	data.Snapshots = nil

	snap := model.Snapshot{
		ID:    m.newID(),
		Date:  m.now().UTC().Format(time.RFC3339),
		Label: cleanLabel(label, m.now()),
		Data:  data,
	}

	list := make([]model.Snapshot, 0, MaxSnapshots)
	list = append(list, snap)
	list = append(list, out.Snapshots...)
	if len(list) > MaxSnapshots {
		list = list[:MaxSnapshots]
	}
	out.Snapshots = list

	snap.Data = site.Clone(data)
	return out, snap
}

// Restore replaces the content of doc with the snapshot id, merged against
// the defaults the same way a stored document is. A field the snapshot
// holds empty stays empty. The snapshot list of doc is kept as it is.
func (m *Manager) Restore(doc *model.SiteDocument, id string) (*model.SiteDocument, error) {
	snap, ok := find(doc.Snapshots, id)
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	out := site.Defaults()
	if snap.Data != nil {
		raw, err := json.Marshal(snap.Data)
		if err != nil {
			return nil, fmt.Errorf("encoding snapshot %s: %w", id, err)
		}
		if out, err = site.MergeJSON(raw); err != nil {
			return nil, fmt.Errorf("merging snapshot %s: %w", id, err)
		}
	}
	out.Snapshots = site.Clone(doc).Snapshots
	// The counter lives under its own key and moves forward only.
	out.VisitCount = doc.VisitCount
	return out, nil
}

// Delete removes the snapshot id.
func (m *Manager) Delete(doc *model.SiteDocument, id string) (*model.SiteDocument, error) {
	if _, ok := find(doc.Snapshots, id); !ok {
		return nil, ErrSnapshotNotFound
	}
	out := site.Clone(doc)
	kept := make([]model.Snapshot, 0, len(out.Snapshots))
	for _, s := range out.Snapshots {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	out.Snapshots = kept
	return out, nil
}

// Summary describes a snapshot without its data.
type Summary struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Label string `json:"label"`
}

// List returns the snapshots of doc, most recent first.
func (m *Manager) List(doc *model.SiteDocument) []Summary {
	out := make([]Summary, 0, len(doc.Snapshots))
	for _, s := range doc.Snapshots {
		out = append(out, Summary{ID: s.ID, Date: s.Date, Label: s.Label})
	}
	return out
}

// Get returns a deep copy of the snapshot id.
func (m *Manager) Get(doc *model.SiteDocument, id string) (model.Snapshot, error) {
	snap, ok := find(doc.Snapshots, id)
	if !ok {
		return model.Snapshot{}, ErrSnapshotNotFound
	}
	snap.Data = site.Clone(snap.Data)
	return snap, nil
}

func find(list []model.Snapshot, id string) (model.Snapshot, bool) {
	for _, s := range list {
		if s.ID == id {
			return s, true
		}
	}
	return model.Snapshot{}, false
}

func cleanLabel(label string, t time.Time) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "Snapshot " + t.UTC().Format("2006-01-02 15:04")
	}
	r := []rune(label)
	if len(r) > MaxLabelLength {
		label = string(r[:MaxLabelLength])
	}
	return label
}
