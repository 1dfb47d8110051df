// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/olegiv/folio/internal/generator"
	"github.com/olegiv/folio/internal/kv"
	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/session"
)

// Health check results.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusDisabled  = "disabled"
	statusUnhealthy = "unhealthy"
)

// HealthStatusPublic is the minimal health response for visitors.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the detailed health response for a logged in admin.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Source    string           `json:"source"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains runtime information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
}

// Health handles GET /health. The store is the only check that can make
// the service degraded; optional collaborators report disabled.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	storeCheck := h.checkStore(r.Context())

	overall := statusHealthy
	code := http.StatusOK
	if storeCheck.Status != statusHealthy {
		overall = statusDegraded
		code = http.StatusServiceUnavailable
	}

	if h.Sessions == nil || !session.IsAdmin(r.Context(), h.Sessions) {
		writeJSON(w, code, HealthStatusPublic{Status: overall})
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	source := ""
	if h.Loader != nil {
		source = string(h.Loader.Source())
	}

	writeJSON(w, code, HealthStatus{
		Status:    overall,
		Timestamp: h.now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.Version.String(),
		Source:    source,
		Checks: map[string]Check{
			"store":     storeCheck,
			"generator": enabledCheck(!isDisabledGenerator(h.Generator)),
			"geoip":     enabledCheck(h.GeoIP.Enabled()),
		},
		System: &SystemInfo{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     mem.Alloc,
		},
	})
}

func (h *Handler) checkStore(ctx context.Context) Check {
	if h.Store == nil {
		return Check{Status: statusUnhealthy, Message: "no store configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	_, err := h.Store.Get(ctx, model.VisitCountKey)
	latency := time.Since(start)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency.String()}
	}
	return Check{Status: statusHealthy, Latency: latency.String()}
}

func enabledCheck(enabled bool) Check {
	if enabled {
		return Check{Status: statusHealthy}
	}
	return Check{Status: statusDisabled}
}

func isDisabledGenerator(g generator.Generator) bool {
	if g == nil {
		return true
	}
	_, off := g.(generator.Disabled)
	return off
}
