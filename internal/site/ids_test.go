// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package site

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/folio/internal/model"
)

func TestEnsureProjectIDs(t *testing.T) {
	doc := &model.SiteDocument{Projects: []model.Project{
		{ID: "shop", Title: "Old shop"},
		{Title: "Shop"},
		{Title: "Đà Nẵng Tour"},
		{Title: "???"},
		{ID: "Web / App", Title: "Booking App"},
	}}

	EnsureProjectIDs(doc)

	assert.Equal(t, "shop", doc.Projects[0].ID)
	assert.Equal(t, "shop-2", doc.Projects[1].ID)
	assert.Equal(t, "da-nang-tour", doc.Projects[2].ID)
	assert.Equal(t, "project", doc.Projects[3].ID)
	assert.Equal(t, "booking-app", doc.Projects[4].ID)

	assert.Equal(t, 2, FindProject(doc, "da-nang-tour"))
	assert.Equal(t, -1, FindProject(doc, "missing"))
}
