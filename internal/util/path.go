// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrOutsideDir is returned for file names that resolve outside their directory.
var ErrOutsideDir = errors.New("util: path escapes directory")

// FileIn returns the path of name inside dir. Names that are absolute or
// that climb out of dir are rejected; the file itself is never touched.
func FileIn(dir, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", ErrOutsideDir
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, name)
	if !within(root, full) || full == root {
		return "", ErrOutsideDir
	}
	return filepath.Join(dir, name), nil
}

// within reports whether the clean absolute path p is root or below it.
// The separator suffix keeps /data-evil from matching /data.
func within(root, p string) bool {
	return p == root || strings.HasPrefix(p, root+string(filepath.Separator))
}
