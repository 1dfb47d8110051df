// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"archive/zip"
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/transfer"
)

func TestExportImportRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t).admin()

	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/admin/theme", ThemeRequest{Theme: model.ThemeEmerald}).Code)

	rec := c.do(http.MethodGet, "/api/admin/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment;")
	assert.Contains(t, rec.Body.String(), transfer.FormatName)
	backup := rec.Body.Bytes()

	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/admin/theme", ThemeRequest{Theme: model.ThemeAmber}).Code)

	rec = c.do(http.MethodPost, "/api/admin/import", string(backup))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc model.SiteDocument
	decodeData(t, rec, &doc)
	assert.Equal(t, model.ThemeEmerald, doc.Theme)
	require.Len(t, doc.Snapshots, 1)
	assert.Equal(t, "Before import 2026-03-01 10:30", doc.Snapshots[0].Label)
	assert.Equal(t, model.ThemeAmber, doc.Snapshots[0].Data.Theme)
}

func TestImportGivesProjectsUsableIDs(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t).admin()

	body := `{"projects":[{"id":"Web / App","title":"Booking App"},{"id":"kept-1","title":"Kept"},{"title":"No Id"}]}`
	rec := c.do(http.MethodPost, "/api/admin/import", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc model.SiteDocument
	decodeData(t, rec, &doc)
	require.Len(t, doc.Projects, 3)
	assert.Equal(t, "booking-app", doc.Projects[0].ID)
	assert.Equal(t, "kept-1", doc.Projects[1].ID)
	assert.Equal(t, "no-id", doc.Projects[2].ID)
	assert.Equal(t, doc.Projects, env.repo.Current().Projects)
}

func TestExportZip(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t).admin()

	rec := c.do(http.MethodGet, "/api/admin/export?format=zip", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	body := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	assert.NotEmpty(t, zr.File)

	rec = c.do(http.MethodPost, "/api/admin/import", body)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestExportUnknownFormat(t *testing.T) {
	env := newTestEnv(t)
	rec := env.client(t).admin().do(http.MethodGet, "/api/admin/export?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"not json", "{oops", CodeMalformedJSON},
		{"array", "[]", CodeMalformedJSON},
		{"newer version", `{"format":"` + transfer.FormatName + `","version":99,"data":{}}`, CodeUnsupportedBackup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			c := env.client(t).admin()
			before := env.repo.Current()

			rec := c.do(http.MethodPost, "/api/admin/import", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
			assert.Equal(t, before, env.repo.Current(), "a rejected import changes nothing")
		})
	}
}
