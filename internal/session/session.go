// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the browser session used for the visit marker
// and the admin login.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

// Session keys.
const (
	keyVisited = "visited"
	keyAdmin   = "admin"
)

// New creates a session manager. Sessions are kept in the SQLite sessions
// table when db is set and in memory otherwise.
// The cookie carries no expiry, so a session ends with the browser session.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	if db != nil {
		sm.Store = sqlite3store.New(db)
	} else {
		sm.Store = memstore.New()
	}

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 12 * time.Hour
	sm.Cookie.Persist = false
	sm.Cookie.HttpOnly = true
	sm.Cookie.Path = "/"
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// VisitMarker stores the once-per-session visit flag in the session.
type VisitMarker struct {
	sm *scs.SessionManager
}

// NewVisitMarker creates a VisitMarker on sm.
func NewVisitMarker(sm *scs.SessionManager) *VisitMarker {
	return &VisitMarker{sm: sm}
}

// Marked reports whether this session was already counted.
func (m *VisitMarker) Marked(ctx context.Context) bool {
	return m.sm.GetBool(ctx, keyVisited)
}

// Mark flags this session as counted.
func (m *VisitMarker) Mark(ctx context.Context) {
	m.sm.Put(ctx, keyVisited, true)
}

// Clear removes the visit flag.
func (m *VisitMarker) Clear(ctx context.Context) {
	m.sm.Remove(ctx, keyVisited)
}

// LoginAdmin renews the session token and flags the session as admin.
func LoginAdmin(ctx context.Context, sm *scs.SessionManager) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, keyAdmin, true)
	return nil
}

// LogoutAdmin clears the admin flag and renews the session token.
func LogoutAdmin(ctx context.Context, sm *scs.SessionManager) error {
	sm.Remove(ctx, keyAdmin)
	return sm.RenewToken(ctx)
}

// IsAdmin reports whether the session belongs to a logged in admin.
func IsAdmin(ctx context.Context, sm *scs.SessionManager) bool {
	return sm.GetBool(ctx, keyAdmin)
}
