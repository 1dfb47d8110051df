// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"with special characters", "Hello, World!", "hello-world"},
		{"with accents", "Café résumé", "cafe-resume"},
		{"vietnamese", "Đà Nẵng Tour", "da-nang-tour"},
		{"vietnamese tones", "Học lập trình", "hoc-lap-trinh"},
		{"with multiple spaces", "Hello   World", "hello-world"},
		{"with hyphens", "Hello - World", "hello-world"},
		{"leading and trailing spaces", "  Hello World  ", "hello-world"},
		{"all special characters", "!@#$%^&*()", ""},
		{"empty string", "", ""},
		{"mixed case", "HeLLo WoRLd", "hello-world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slugify(tt.input)
			if result != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSlugifyLength(t *testing.T) {
	got := Slugify(strings.Repeat("word ", 40))
	if len(got) > MaxSlugLength {
		t.Errorf("len(Slugify) = %d, want <= %d", len(got), MaxSlugLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("Slugify left a trailing hyphen: %q", got)
	}
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"shop": true, "shop-2": true}
	isTaken := func(s string) bool { return taken[s] }

	if got := UniqueSlug("Shop", "project", isTaken); got != "shop-3" {
		t.Errorf("UniqueSlug(Shop) = %q, want shop-3", got)
	}
	if got := UniqueSlug("Blog", "project", isTaken); got != "blog" {
		t.Errorf("UniqueSlug(Blog) = %q, want blog", got)
	}
	if got := UniqueSlug("!!!", "project", isTaken); got != "project" {
		t.Errorf("UniqueSlug(!!!) = %q, want project", got)
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"hello-world", true},
		{"page-123", true},
		{"123", true},
		{"", false},
		{"Hello-World", false},
		{"hello world", false},
		{"-hello", false},
		{"hello-", false},
		{"hello--world", false},
	}

	for _, tt := range tests {
		if got := IsValidSlug(tt.input); got != tt.expected {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
