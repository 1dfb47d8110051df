// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer provides backup export and import of the site document.
package transfer

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/site"
)

// FormatName identifies folio backup envelopes.
const FormatName = "folio-backup"

// FormatVersion is the current version of the backup envelope.
const FormatVersion = 1

// ArchiveEntry is the name of the document inside a zip backup.
const ArchiveEntry = "portfolio.json"

// MaxArchiveEntrySize bounds the decompressed document read from a zip backup.
const MaxArchiveEntrySize = 64 << 20

// Import failure kinds.
var (
	ErrMalformedJSON      = errors.New("transfer: malformed JSON")
	ErrUnsupportedVersion = errors.New("transfer: unsupported backup version")
)

// ImportError reports a rejected backup.
type ImportError struct {
	Kind error
	Err  error
}

func (e *ImportError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ImportError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Envelope is the exported file layout.
type Envelope struct {
	Format     string              `json:"format"`
	Version    int                 `json:"version"`
	ExportedAt time.Time           `json:"exportedAt"`
	Data       *model.SiteDocument `json:"data"`
}

// Export serializes the full document, images included, as indented JSON.
func Export(doc *model.SiteDocument) ([]byte, error) {
	return exportAt(doc, time.Now())
}

func exportAt(doc *model.SiteDocument, now time.Time) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("transfer: nil document")
	}
	env := Envelope{
		Format:     FormatName,
		Version:    FormatVersion,
		ExportedAt: now.UTC(),
		Data:       doc,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding backup: %w", err)
	}
	return data, nil
}

// WriteArchive writes the backup as a zip file holding ArchiveEntry.
func WriteArchive(w io.Writer, doc *model.SiteDocument) error {
	data, err := Export(doc)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(w)
	f, err := zw.Create(ArchiveEntry)
	if err != nil {
		return fmt.Errorf("creating archive entry: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing archive entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

// Import parses a backup produced by Export or WriteArchive, or a bare
// document written by older clients. The result is merged against the
// defaults. Import never touches any stored state.
func Import(raw []byte) (*model.SiteDocument, error) {
	if isZip(raw) {
		inner, err := readArchive(raw)
		if err != nil {
			return nil, &ImportError{Kind: ErrMalformedJSON, Err: err}
		}
		raw = inner
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &ImportError{Kind: ErrMalformedJSON, Err: err}
	}
	if fields == nil {
		return nil, &ImportError{Kind: ErrMalformedJSON, Err: errors.New("backup is not a JSON object")}
	}

	if isEnvelope(fields) {
		var env struct {
			Version int             `json:"version"`
			Data    json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, &ImportError{Kind: ErrMalformedJSON, Err: err}
		}
		if env.Version < 1 || env.Version > FormatVersion {
			return nil, &ImportError{
				Kind: ErrUnsupportedVersion,
				Err:  fmt.Errorf("version %d, supported up to %d", env.Version, FormatVersion),
			}
		}
		raw = env.Data
	}

	doc, err := site.MergeJSON(raw)
	if err != nil {
		return nil, &ImportError{Kind: ErrMalformedJSON, Err: err}
	}
	return doc, nil
}

// Filename returns the download name of a backup taken at t.
func Filename(t time.Time) string {
	return "portfolio_backup_" + t.Format("2006-01-02") + ".json"
}

// ArchiveFilename returns the download name of a zip backup taken at t.
func ArchiveFilename(t time.Time) string {
	return "portfolio_backup_" + t.Format("2006-01-02") + ".zip"
}

func isEnvelope(fields map[string]json.RawMessage) bool {
	rawFormat, ok := fields["format"]
	if !ok {
		return false
	}
	var format string
	if err := json.Unmarshal(rawFormat, &format); err != nil {
		return false
	}
	_, hasData := fields["data"]
	return format == FormatName && hasData
}

func isZip(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte("PK\x03\x04"))
}

func readArchive(raw []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != ArchiveEntry {
			continue
		}
		if f.UncompressedSize64 > MaxArchiveEntrySize {
			return nil, fmt.Errorf("archive entry too large: %d bytes", f.UncompressedSize64)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", ArchiveEntry, err)
		}
		defer func() { _ = rc.Close() }()
		data, err := io.ReadAll(io.LimitReader(rc, MaxArchiveEntrySize+1))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", ArchiveEntry, err)
		}
		if len(data) > MaxArchiveEntrySize {
			return nil, errors.New("archive entry too large")
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found in archive", ArchiveEntry)
}
