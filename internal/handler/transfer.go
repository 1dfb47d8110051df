// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/site"
	"github.com/olegiv/folio/internal/transfer"
)

// Export handles GET /api/admin/export?format=json|zip.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	doc := h.Repo.Current()
	now := h.now()

	switch r.URL.Query().Get("format") {
	case "", "json":
		data, err := transfer.Export(doc)
		if err != nil {
			h.internalError(w, "exporting site document failed", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", attachment(transfer.Filename(now)))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)
	case "zip":
		var buf bytes.Buffer
		if err := transfer.WriteArchive(&buf, doc); err != nil {
			h.internalError(w, "exporting site archive failed", err)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", attachment(transfer.ArchiveFilename(now)))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		_, _ = w.Write(buf.Bytes())
	default:
		writeError(w, http.StatusBadRequest, CodeBadRequest, "format must be json or zip")
		return
	}
	h.Logger.Info("site document exported", "category", model.EventCategoryTransfer)
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}

// Import handles POST /api/admin/import. The body is a JSON or zip backup.
// The imported content replaces the current one; the current snapshot list
// is kept and gains a snapshot of the state before the import.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	raw, ok := readBody(w, r, maxImportBody)
	if !ok {
		return
	}

	imported, err := transfer.Import(raw)
	if err != nil {
		switch {
		case errors.Is(err, transfer.ErrUnsupportedVersion):
			writeError(w, http.StatusBadRequest, CodeUnsupportedBackup, "This backup was written by a newer version")
		default:
			writeError(w, http.StatusBadRequest, CodeMalformedJSON, "The file is not a valid backup")
		}
		h.Logger.Warn("import rejected", "category", model.EventCategoryTransfer, "error", err)
		return
	}
	site.EnsureProjectIDs(imported)

	label := "Before import " + h.now().UTC().Format("2006-01-02 15:04")
	doc, err := h.Repo.Update(r.Context(), func(doc *model.SiteDocument) error {
		withBackup, _ := h.Snapshots.Create(doc, label)
		imported.Snapshots = withBackup.Snapshots
		imported.VisitCount = doc.VisitCount
		*doc = *imported
		return nil
	})
	if !h.writeSaved(w, http.StatusOK, doc, err) {
		h.internalError(w, "importing site document failed", err)
		return
	}
	h.Logger.Info("site document imported", "category", model.EventCategoryTransfer, "bytes", len(raw))
}
