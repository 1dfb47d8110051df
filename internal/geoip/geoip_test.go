// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledLookup(t *testing.T) {
	g, err := Open("")
	require.NoError(t, err)
	defer func() { _ = g.Close() }()

	assert.False(t, g.Enabled())
	assert.Equal(t, "", g.Country("8.8.8.8"))
	assert.NoError(t, g.Reload())
}

func TestLocalAddresses(t *testing.T) {
	g, err := Open("")
	require.NoError(t, err)

	for _, ip := range []string{"127.0.0.1", "10.1.2.3", "192.168.0.10", "::1", "fd00::1"} {
		assert.Equal(t, CountryLocal, g.Country(ip), ip)
	}
	assert.Equal(t, "", g.Country("not-an-ip"))
}

func TestMissingDatabase(t *testing.T) {
	g, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"))
	require.Error(t, err)
	assert.False(t, g.Enabled())
	assert.Equal(t, "", g.Country("1.1.1.1"))
}

func TestNilLookup(t *testing.T) {
	var g *Lookup
	assert.Equal(t, "", g.Country("1.1.1.1"))
	assert.False(t, g.Enabled())
	assert.NoError(t, g.Close())
}
