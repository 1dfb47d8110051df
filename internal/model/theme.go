// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Accent themes.
const (
	ThemeIndigo  = "indigo"
	ThemeEmerald = "emerald"
	ThemeRose    = "rose"
	ThemeAmber   = "amber"
)

// DefaultTheme is used when a document carries no or an unknown theme.
const DefaultTheme = ThemeIndigo

// Themes lists every accent theme.
var Themes = []string{ThemeIndigo, ThemeEmerald, ThemeRose, ThemeAmber}

// IsValidTheme reports whether name is a known accent theme.
func IsValidTheme(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}
