// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/folio/internal/middleware"
)

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	IsDev          bool
	CSRFKey        []byte
	TrustedOrigins []string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// compressMinSize is the smallest JSON body worth gzipping.
const compressMinSize = 1024

// NewRouter mounts the API on a chi router.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDev)))
	r.Use(middleware.CompressJSON(compressMinSize))
	r.Use(h.Sessions.LoadAndSave)
	r.Use(middleware.Language)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	timeout := func(next http.Handler) http.Handler { return next }
	if cfg.RequestTimeout > 0 {
		timeout = middleware.Timeout(cfg.RequestTimeout)
	}

	r.With(timeout).Get(RouteHealth, h.Health)

	r.Route(RouteAPI, func(r chi.Router) {
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(cfg.CSRFKey, cfg.IsDev, cfg.TrustedOrigins...)))

		// Generation calls carry their own deadline.
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware())
			r.Post(RouteChat, h.Chat)
			r.Post(RouteDemo, h.Demo)
		})

		r.Group(func(r chi.Router) {
			r.Use(timeout)

			r.Get(RouteSite, h.Site)
			r.With(limiter.Middleware()).Post(RouteInquiries, h.CreateInquiry)
			r.With(limiter.Middleware()).Post(RouteRegistrations, h.CreateRegistration)

			r.Route(RouteAdmin, func(r chi.Router) {
				r.Use(middleware.NoStore)

				r.With(h.Logins.Middleware()).Post(RouteAdminLogin, h.Login)
				r.Post(RouteAdminLogout, h.Logout)
				r.Get(RouteAdminStatus, h.Status)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin(h.Sessions))

					r.Get(RouteAdminSite, h.GetSite)
					r.Put(RouteAdminSite, h.PutSite)
					r.Put(RouteAdminTheme, h.SetTheme)
					r.Post(RouteAdminReset, h.Reset)

					r.Get(RouteAdminInquiries, h.ListInquiries)
					r.Delete(RouteAdminInquiries, h.ClearInquiries)
					r.Delete(RouteAdminInquiryID, h.DeleteInquiry)
					r.Get(RouteAdminRegistrations, h.ListRegistrations)
					r.Delete(RouteAdminRegistrationID, h.DeleteRegistration)

					r.Get(RouteAdminSnapshots, h.ListSnapshots)
					r.Post(RouteAdminSnapshots, h.CreateSnapshot)
					r.Get(RouteAdminSnapshotID, h.GetSnapshot)
					r.Delete(RouteAdminSnapshotID, h.DeleteSnapshot)
					r.Post(RouteAdminRestore, h.RestoreSnapshot)

					r.Get(RouteAdminExport, h.Export)
					r.Post(RouteAdminImport, h.Import)

					r.Put(RouteAdminImage, h.PutImage)
					r.Delete(RouteAdminImage, h.DeleteImage)
					r.Put(RouteAdminProjectImage, h.PutProjectImage)

					r.Get(RouteAdminEvents, h.ListEvents)
					r.Get(RouteAdminJobs, h.ListJobs)
					r.Post(RouteAdminJobRun, h.RunJob)
				})
			})
		})

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusNotFound, CodeNotFound, "Unknown API route")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "Method not allowed")
		})
	})

	return r
}
