// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/olegiv/folio/internal/model"
)

// richText allows the safe HTML subset markdown produces.
var richText = bluemonday.UGCPolicy()

// renderMarkdown converts admin written markdown to sanitized HTML.
// Raw HTML in the source is dropped by goldmark and the output is
// sanitized again, so links keep rel="nofollow".
func renderMarkdown(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return strings.TrimSpace(richText.Sanitize(buf.String()))
}

// PublicProject is a project with its long description rendered.
type PublicProject struct {
	model.Project
	LongDescHTML string `json:"longDescHtml,omitempty"`
}

func publicProjects(projects []model.Project) []PublicProject {
	out := make([]PublicProject, 0, len(projects))
	for _, p := range projects {
		out = append(out, PublicProject{Project: p, LongDescHTML: renderMarkdown(p.LongDesc)})
	}
	return out
}
