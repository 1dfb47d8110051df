// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio/internal/middleware"
	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/session"
	"github.com/olegiv/folio/internal/site"
)

// LoginRequest is the admin login payload.
type LoginRequest struct {
	Password string `json:"password"`
}

// AdminStatus describes the admin session.
type AdminStatus struct {
	Admin      bool `json:"admin"`
	ParityMode bool `json:"parityMode"`
}

// Login handles POST /api/admin/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, maxFormBody, &req) {
		return
	}

	ip := middleware.ClientIP(r)
	if !h.Gate.Check(req.Password, h.Repo.Current().AdminPassword) {
		locked, d := h.Logins.RecordFailedAttempt(ip)
		h.Logger.Warn("admin login failed", "category", model.EventCategoryAuth, "ip", ip)
		if locked {
			w.Header().Set("Retry-After", strconv.Itoa(int(d.Seconds())+1))
			writeError(w, http.StatusTooManyRequests, CodeLockedOut, "Too many failed logins. Try again later.")
			return
		}
		writeError(w, http.StatusUnauthorized, CodeInvalidLogin, "Wrong password")
		return
	}

	if err := session.LoginAdmin(r.Context(), h.Sessions); err != nil {
		h.internalError(w, "renewing session failed", err)
		return
	}
	h.Logins.RecordSuccessfulLogin(ip)
	h.Logger.Info("admin logged in", "category", model.EventCategoryAuth, "ip", ip)
	writeSuccess(w, AdminStatus{Admin: true, ParityMode: h.Gate.ParityMode()})
}

// Logout handles POST /api/admin/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := session.LogoutAdmin(r.Context(), h.Sessions); err != nil {
		h.internalError(w, "renewing session failed", err)
		return
	}
	writeSuccess(w, AdminStatus{Admin: false, ParityMode: h.Gate.ParityMode()})
}

// Status handles GET /api/admin/status. It is not gated, so the front end
// can decide whether to show the login form.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, AdminStatus{
		Admin:      session.IsAdmin(r.Context(), h.Sessions),
		ParityMode: h.Gate.ParityMode(),
	})
}

// GetSite handles GET /api/admin/site and returns the full document.
func (h *Handler) GetSite(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, h.Repo.Current())
}

// PutSite handles PUT /api/admin/site. The body is a whole document; it is
// merged with the defaults like a loaded one. Snapshots are managed through
// their own routes and are kept as they are. The visit counter only moves
// up: an absent, null or lower visitCount keeps the current counter.
func (h *Handler) PutSite(w http.ResponseWriter, r *http.Request) {
	raw, ok := readBody(w, r, maxDocumentBody)
	if !ok {
		return
	}
	incoming, err := site.MergeJSON(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeMalformedJSON, "Body is not a JSON document")
		return
	}
	site.EnsureProjectIDs(incoming)

	// MergeJSON accepted raw, so it is an object.
	var fields map[string]json.RawMessage
	_ = json.Unmarshal(raw, &fields)
	visits, hasVisits := fields["visitCount"]
	hasVisits = hasVisits && !bytes.Equal(bytes.TrimSpace(visits), []byte("null"))

	before := h.Repo.Current().VisitCount
	doc, err := h.Repo.Update(r.Context(), func(doc *model.SiteDocument) error {
		incoming.Snapshots = doc.Snapshots
		if !hasVisits || incoming.VisitCount < doc.VisitCount {
			incoming.VisitCount = doc.VisitCount
		}
		*doc = *incoming
		return nil
	})
	if doc == nil {
		h.internalError(w, "replacing site document failed", err)
		return
	}
	if doc.VisitCount > before {
		// Visits counted since the document was read may outnumber the edit.
		if n := h.raiseVisitCount(r, doc.VisitCount); n > doc.VisitCount {
			h.Repo.SetVisitCount(n)
			doc = h.Repo.Current()
		}
	}

	if !h.writeSaved(w, http.StatusOK, doc, err) {
		h.internalError(w, "replacing site document failed", err)
	}
}

// raiseVisitCount persists a counter raised from the console and returns
// the stored value.
func (h *Handler) raiseVisitCount(r *http.Request, n int64) int64 {
	if h.Visits == nil {
		return n
	}
	stored, err := h.Visits.Raise(r.Context(), n)
	if err != nil {
		h.Logger.Warn("storing visit counter failed", "category", model.EventCategoryStorage, "error", err)
		return n
	}
	return stored
}

// ThemeRequest selects the accent theme.
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// SetTheme handles PUT /api/admin/theme.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if !decodeJSON(w, r, maxFormBody, &req) {
		return
	}
	doc, err := h.Repo.SetTheme(r.Context(), req.Theme)
	if errors.Is(err, site.ErrInvalidTheme) {
		writeValidationError(w, map[string]string{"theme": "Unknown theme"})
		return
	}
	if !h.writeSaved(w, http.StatusOK, map[string]string{"theme": themeOf(doc)}, err) {
		h.internalError(w, "setting theme failed", err)
	}
}

func themeOf(doc *model.SiteDocument) string {
	if doc == nil {
		return ""
	}
	return doc.Theme
}

// ListInquiries handles GET /api/admin/inquiries.
func (h *Handler) ListInquiries(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, h.Repo.Current().Inquiries)
}

// DeleteInquiry handles DELETE /api/admin/inquiries/{id}.
func (h *Handler) DeleteInquiry(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Repo.DeleteInquiry(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, site.ErrInquiryNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Inquiry not found")
		return
	}
	if !h.writeSaved(w, http.StatusOK, inquiriesOf(doc), err) {
		h.internalError(w, "deleting inquiry failed", err)
	}
}

// ClearInquiries handles DELETE /api/admin/inquiries.
func (h *Handler) ClearInquiries(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Repo.ClearInquiries(r.Context())
	if !h.writeSaved(w, http.StatusOK, inquiriesOf(doc), err) {
		h.internalError(w, "clearing inquiries failed", err)
	}
}

func inquiriesOf(doc *model.SiteDocument) []model.Inquiry {
	if doc == nil {
		return []model.Inquiry{}
	}
	return doc.Inquiries
}

// ListRegistrations handles GET /api/admin/registrations.
func (h *Handler) ListRegistrations(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, h.Repo.Current().Registrations)
}

// DeleteRegistration handles DELETE /api/admin/registrations/{id}.
func (h *Handler) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Repo.DeleteRegistration(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, site.ErrRegistrationNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Registration not found")
		return
	}
	var regs []model.Registration
	if doc != nil {
		regs = doc.Registrations
	}
	if !h.writeSaved(w, http.StatusOK, regs, err) {
		h.internalError(w, "deleting registration failed", err)
	}
}

// Reset handles POST /api/admin/reset. Snapshots survive the reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Repo.ResetToDefaults(r.Context())
	if doc == nil {
		h.internalError(w, "resetting site document failed", err)
		return
	}
	h.Logger.Warn("site document reset to defaults", "category", model.EventCategorySystem)
	if !h.writeSaved(w, http.StatusOK, doc, err) {
		h.internalError(w, "resetting site document failed", err)
	}
}
