// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/snapshot"
)

// CreateSnapshotRequest labels a manual snapshot.
type CreateSnapshotRequest struct {
	Label string `json:"label"`
}

// ListSnapshots handles GET /api/admin/snapshots.
func (h *Handler) ListSnapshots(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, h.Snapshots.List(h.Repo.Current()))
}

// GetSnapshot handles GET /api/admin/snapshots/{id} and returns the
// snapshot with its data.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Snapshots.Get(h.Repo.Current(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "Snapshot not found")
		return
	}
	writeSuccess(w, snap)
}

// CreateSnapshot handles POST /api/admin/snapshots.
func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req CreateSnapshotRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, maxFormBody, &req) {
		return
	}

	var created snapshot.Summary
	_, err := h.Repo.Update(r.Context(), func(doc *model.SiteDocument) error {
		next, snap := h.Snapshots.Create(doc, req.Label)
		*doc = *next
		created = snapshot.Summary{ID: snap.ID, Date: snap.Date, Label: snap.Label}
		return nil
	})
	if !h.writeSaved(w, http.StatusCreated, created, err) {
		h.internalError(w, "creating snapshot failed", err)
		return
	}
	h.Logger.Info("snapshot created", "category", model.EventCategorySnapshot, "snapshot_id", created.ID)
}

// RestoreSnapshot handles POST /api/admin/snapshots/{id}/restore.
func (h *Handler) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.Repo.Update(r.Context(), func(doc *model.SiteDocument) error {
		next, err := h.Snapshots.Restore(doc, id)
		if err != nil {
			return err
		}
		*doc = *next
		return nil
	})
	if errors.Is(err, snapshot.ErrSnapshotNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Snapshot not found")
		return
	}
	if !h.writeSaved(w, http.StatusOK, doc, err) {
		h.internalError(w, "restoring snapshot failed", err)
		return
	}
	h.Logger.Info("snapshot restored", "category", model.EventCategorySnapshot, "snapshot_id", id)
}

// DeleteSnapshot handles DELETE /api/admin/snapshots/{id}.
func (h *Handler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.Repo.Update(r.Context(), func(doc *model.SiteDocument) error {
		next, err := h.Snapshots.Delete(doc, id)
		if err != nil {
			return err
		}
		*doc = *next
		return nil
	})
	if errors.Is(err, snapshot.ErrSnapshotNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Snapshot not found")
		return
	}
	var list []snapshot.Summary
	if doc != nil {
		list = h.Snapshots.List(doc)
	}
	if !h.writeSaved(w, http.StatusOK, list, err) {
		h.internalError(w, "deleting snapshot failed", err)
	}
}
