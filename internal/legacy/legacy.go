// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package legacy reads and mirrors the flat string-keyed store used by
// older clients. It is only consulted when the durable store is empty.
package legacy

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/olegiv/folio/internal/util"
)

// Reader reads string values synchronously.
type Reader interface {
	// Read returns the value stored under key and whether it exists.
	Read(key string) (string, bool)
}

// Writer stores string values.
type Writer interface {
	Write(key, value string) error
}

// Store is a Reader and Writer.
type Store interface {
	Reader
	Writer
}

// ErrInvalidKey is returned for keys that cannot be mapped to a file name.
var ErrInvalidKey = errors.New("legacy: invalid key")

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

// DirStore keeps one file per key in a directory.
type DirStore struct {
	dir string
	mu  sync.Mutex
}

// NewDirStore creates a store rooted at dir. The directory is created on first write.
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

func (s *DirStore) path(key string) (string, error) {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return "", ErrInvalidKey
	}
	p, err := util.FileIn(s.dir, key+".json")
	if err != nil {
		return "", ErrInvalidKey
	}
	return p, nil
}

// Read implements Reader. Any I/O error counts as absence.
func (s *DirStore) Read(key string) (string, bool) {
	p, err := s.path(key)
	if err != nil {
		return "", false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Write implements Writer. The file is replaced atomically.
func (s *DirStore) Write(key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("creating legacy dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing legacy value: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("replacing legacy value: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Read implements Reader.
func (m *MemoryStore) Read(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// Write implements Writer.
func (m *MemoryStore) Write(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Nop is a Store that holds nothing, for deployments without legacy clients.
type Nop struct{}

// Read implements Reader.
func (Nop) Read(string) (string, bool) { return "", false }

// Write implements Writer.
func (Nop) Write(string, string) error { return nil }

var (
	_ Store = (*DirStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = Nop{}
)
