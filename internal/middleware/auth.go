// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/session"
)

// RequireAdmin rejects requests whose session is not logged in as admin.
func RequireAdmin(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !session.IsAdmin(r.Context(), sm) {
				slog.Debug("admin route without admin session",
					"category", model.EventCategoryAuth,
					"path", r.URL.Path,
					"ip", ClientIP(r),
				)
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Admin login required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore marks responses as private and uncacheable. Admin responses carry
// inquiries and chat logs.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
