// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/site"
	"github.com/olegiv/folio/internal/snapshot"
	"github.com/olegiv/folio/internal/store"
)

// Job names.
const (
	JobAutoSnapshot = "auto_snapshot"
	JobPruneEvents  = "prune_events"
	JobReloadGeoIP  = "reload_geoip"
)

// errUnchanged aborts an update when there is nothing new to snapshot.
var errUnchanged = errors.New("scheduler: document unchanged since last snapshot")

// AutoSnapshot takes a labelled snapshot of the current document and saves
// it. Nothing is taken when the content equals the newest snapshot, so an
// idle site does not rotate its history away.
type AutoSnapshot struct {
	repo    *site.Repository
	manager *snapshot.Manager
	logger  *slog.Logger
	now     func() time.Time
}

// NewAutoSnapshot creates an AutoSnapshot job.
func NewAutoSnapshot(repo *site.Repository, manager *snapshot.Manager, logger *slog.Logger) *AutoSnapshot {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoSnapshot{repo: repo, manager: manager, logger: logger, now: time.Now}
}

// Run implements Job.
func (a *AutoSnapshot) Run(ctx context.Context) error {
	_, err := a.Take(ctx)
	return err
}

// Take creates the snapshot and reports its id, or "" when the document
// was unchanged or only stands in for an unreadable store.
func (a *AutoSnapshot) Take(ctx context.Context) (string, error) {
	if !a.repo.Reconcile(ctx) {
		a.logger.Warn("auto snapshot skipped, durable store unreadable", "category", model.EventCategorySnapshot)
		return "", nil
	}

	var id string
	_, err := a.repo.Update(ctx, func(doc *model.SiteDocument) error {
		if len(doc.Snapshots) > 0 && sameContent(doc, doc.Snapshots[0].Data) {
			return errUnchanged
		}
		label := "Auto " + a.now().UTC().Format("2006-01-02 15:04")
		next, snap := a.manager.Create(doc, label)
		*doc = *next
		id = snap.ID
		return nil
	})
	switch {
	case errors.Is(err, errUnchanged):
		a.logger.Debug("auto snapshot skipped", "category", model.EventCategorySnapshot)
		return "", nil
	case err != nil:
		var saveErr *site.SaveError
		if errors.As(err, &saveErr) {
			// Kept in memory; the next successful save persists it.
			return id, fmt.Errorf("auto snapshot not persisted: %w", err)
		}
		return "", err
	}
	a.logger.Info("auto snapshot created", "category", model.EventCategorySnapshot, "snapshot_id", id)
	return id, nil
}

// sameContent compares two documents ignoring their snapshot lists and
// visit counters.
func sameContent(a, b *model.SiteDocument) bool {
	if a == nil || b == nil {
		return false
	}
	return bytes.Equal(contentJSON(a), contentJSON(b))
}

func contentJSON(doc *model.SiteDocument) []byte {
	c := *doc
	c.Snapshots = nil
	c.VisitCount = 0
	data, err := json.Marshal(&c)
	if err != nil {
		return nil
	}
	return data
}

// EventPruner is the part of store.Queries the prune job needs.
type EventPruner interface {
	DeleteEventsBefore(ctx context.Context, t time.Time) error
}

var _ EventPruner = (*store.Queries)(nil)

// PruneEvents returns a job deleting event log entries older than retention.
func PruneEvents(events EventPruner, retention time.Duration, logger *slog.Logger) Job {
	return func(ctx context.Context) error {
		cutoff := time.Now().Add(-retention)
		if err := events.DeleteEventsBefore(ctx, cutoff); err != nil {
			return fmt.Errorf("pruning event log: %w", err)
		}
		if logger != nil {
			logger.Debug("event log pruned", "before", cutoff)
		}
		return nil
	}
}

// Reloader reloads an external database file, e.g. geoip.Lookup.
type Reloader interface {
	Reload() error
}

// Reload returns a job calling r.Reload.
func Reload(r Reloader) Job {
	return func(context.Context) error {
		return r.Reload()
	}
}
