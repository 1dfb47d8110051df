// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio/internal/model"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		contains []string
		excludes []string
	}{
		{"empty", "   ", nil, nil},
		{"emphasis", "Built with **Go**", []string{"<strong>Go</strong>"}, nil},
		{"list", "- one\n- two", []string{"<li>one</li>", "<li>two</li>"}, nil},
		{"link", "[repo](https://example.com)", []string{`href="https://example.com"`, "nofollow"}, nil},
		{"script", "hi <script>alert(1)</script>", []string{"hi"}, []string{"<script"}},
		{"javascript link", "[x](javascript:alert(1))", nil, []string{"javascript:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderMarkdown(tt.src)
			if tt.contains == nil && tt.excludes == nil {
				assert.Empty(t, got)
			}
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestSiteRendersProjectMarkdown(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.repo.Update(context.Background(), func(doc *model.SiteDocument) error {
		doc.Projects[0].LongDesc = "A *fast* platform"
		return nil
	})
	require.NoError(t, err)

	var got PublicSite
	decodeData(t, env.client(t).do(http.MethodGet, "/api/site", nil), &got)
	require.NotEmpty(t, got.Projects)
	assert.Equal(t, "A *fast* platform", got.Projects[0].LongDesc)
	assert.Contains(t, got.Projects[0].LongDescHTML, "<em>fast</em>")
	assert.Empty(t, got.Projects[1].LongDescHTML)
}
