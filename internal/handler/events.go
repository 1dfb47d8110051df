// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/scheduler"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// ListEvents handles GET /api/admin/events?limit=N. Entries are newest first.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if h.Events == nil {
		writeSuccess(w, []any{})
		return
	}

	limit := int64(defaultEventLimit)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxEventLimit)
	}

	events, err := h.Events.ListEvents(r.Context(), limit)
	if err != nil {
		h.internalError(w, "listing events failed", err)
		return
	}
	writeSuccess(w, events)
}

// ListJobs handles GET /api/admin/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	if h.Jobs == nil {
		writeSuccess(w, []scheduler.JobInfo{})
		return
	}
	writeSuccess(w, h.Jobs.Jobs())
}

// RunJob handles POST /api/admin/jobs/{name}/run.
func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.Jobs == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "Job not found")
		return
	}

	err := h.Jobs.Trigger(name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "Job not found")
		return
	case err != nil:
		h.Logger.Warn("manual job run failed", "category", model.EventCategorySystem, "job", name, "error", err)
	}

	for _, j := range h.Jobs.Jobs() {
		if j.Name == name {
			writeSuccess(w, j)
			return
		}
	}
	writeSuccess(w, nil)
}
