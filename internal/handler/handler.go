// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the JSON API serving the site document to the
// front end and the admin console.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/folio/internal/auth"
	"github.com/olegiv/folio/internal/generator"
	"github.com/olegiv/folio/internal/geoip"
	"github.com/olegiv/folio/internal/imaging"
	"github.com/olegiv/folio/internal/kv"
	"github.com/olegiv/folio/internal/middleware"
	"github.com/olegiv/folio/internal/scheduler"
	"github.com/olegiv/folio/internal/site"
	"github.com/olegiv/folio/internal/snapshot"
	"github.com/olegiv/folio/internal/store"
	"github.com/olegiv/folio/internal/version"
	"github.com/olegiv/folio/internal/visit"
)

// EventLister reads the event log.
type EventLister interface {
	ListEvents(ctx context.Context, limit int64) ([]store.Event, error)
}

// JobRunner lists and triggers scheduled jobs.
type JobRunner interface {
	Jobs() []scheduler.JobInfo
	Trigger(name string) error
}

// Deps are the collaborators of Handler. Generator, Images, GeoIP, Events
// and Jobs are optional.
type Deps struct {
	Repo      *site.Repository
	Loader    *site.Loader
	Store     kv.Store
	Snapshots *snapshot.Manager
	Visits    *visit.Counter
	Sessions  *scs.SessionManager
	Gate      *auth.Gate
	Logins    *middleware.LoginProtection
	Generator generator.Generator
	Images    *imaging.Processor
	GeoIP     *geoip.Lookup
	Events    EventLister
	Jobs      JobRunner
	Logger    *slog.Logger
	Version   version.Info

	// GeneratorTimeout bounds one chat or demo call.
	GeneratorTimeout time.Duration
}

// Handler serves the JSON API.
type Handler struct {
	Deps
	startTime time.Time
	now       func() time.Time
}

// New creates a Handler.
func New(deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Snapshots == nil {
		deps.Snapshots = snapshot.NewManager()
	}
	if deps.Generator == nil {
		deps.Generator = generator.Disabled{}
	}
	if deps.Images == nil {
		deps.Images = imaging.NewProcessor(imaging.DefaultOptions())
	}
	if deps.Logins == nil {
		deps.Logins = middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	}
	if deps.GeneratorTimeout <= 0 {
		deps.GeneratorTimeout = 60 * time.Second
	}
	return &Handler{Deps: deps, startTime: time.Now(), now: time.Now}
}

// Response is the success envelope of the API.
type Response struct {
	Data    any      `json:"data,omitempty"`
	Warning *Warning `json:"warning,omitempty"`
}

// Warning reports a non-fatal problem, such as a change that is live but
// could not be persisted.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a 200 response wrapping data.
func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Data: data})
}

// writeError writes the API error shape.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	middleware.WriteAPIError(w, statusCode, code, message, nil)
}

// writeValidationError writes a 422 response with per-field messages.
func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	middleware.WriteAPIError(w, http.StatusUnprocessableEntity, CodeValidation, "Validation failed", fields)
}

// writeSaved answers a mutation. A failed durable save is not fatal: the
// change is live in memory, so the response is still a success carrying a
// warning. Other errors are written by the caller.
func (h *Handler) writeSaved(w http.ResponseWriter, statusCode int, data any, err error) bool {
	var saveErr *site.SaveError
	if err != nil && !errors.As(err, &saveErr) {
		return false
	}
	resp := Response{Data: data}
	if saveErr != nil {
		resp.Warning = saveWarning(saveErr)
	}
	writeJSON(w, statusCode, resp)
	return true
}

func saveWarning(err *site.SaveError) *Warning {
	if err.IsQuota() {
		return &Warning{
			Code:    CodeQuotaExceeded,
			Message: "Storage is full. The change is active but was not saved; remove large images or old snapshots.",
		}
	}
	return &Warning{
		Code:    CodeSaveFailed,
		Message: "The change is active but could not be saved. It will be lost on restart unless a later save succeeds.",
	}
}

// decodeJSON decodes a bounded JSON body into v. It writes the error
// response and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, CodeMalformedJSON, "Invalid JSON body")
		return false
	}
	return true
}

// readBody reads a bounded raw body.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "Request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Could not read request body")
		return nil, false
	}
	return data, true
}

// internalError logs err and writes a 500 response.
func (h *Handler) internalError(w http.ResponseWriter, msg string, err error, args ...any) {
	h.Logger.Error(msg, append(args, "error", err)...)
	writeError(w, http.StatusInternalServerError, CodeInternal, "Internal Server Error")
}

// timestamp formats t like the stored entity timestamps.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
