// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package site

import (
	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/util"
)

// EnsureProjectIDs gives every project without a usable id a slug derived
// from its title, unique within doc. Ids are path segments of the admin API,
// so only valid slugs are kept.
func EnsureProjectIDs(doc *model.SiteDocument) {
	taken := make(map[string]bool, len(doc.Projects))
	for _, p := range doc.Projects {
		if util.IsValidSlug(p.ID) {
			taken[p.ID] = true
		}
	}
	for i := range doc.Projects {
		if util.IsValidSlug(doc.Projects[i].ID) {
			continue
		}
		id := util.UniqueSlug(doc.Projects[i].Title, "project", func(s string) bool { return taken[s] })
		taken[id] = true
		doc.Projects[i].ID = id
	}
}

// FindProject returns the index of the project with id, or -1.
func FindProject(doc *model.SiteDocument, id string) int {
	for i, p := range doc.Projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}
