// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package site

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/olegiv/folio/internal/model"
)

// MaxSnapshots is the retention bound of the snapshot list.
const MaxSnapshots = 10

// ErrInvalidDocument is returned when raw data is not a JSON object.
var ErrInvalidDocument = errors.New("site: document is not a JSON object")

// presence reports whether a top-level document field was supplied.
type presence func(field string) bool

// MergeWithDefaults reconciles a possibly outdated document against defaults.
// A nil slice or map, a nil image, an empty scalar or an all-empty contact
// block counts as absent and takes its default. Neither argument is modified
// and the result shares no memory with them.
func MergeWithDefaults(loaded, defaults *model.SiteDocument) *model.SiteDocument {
	if defaults == nil {
		defaults = defaultDocument()
	}
	if loaded == nil {
		return normalize(Clone(defaults))
	}
	l := Clone(loaded)
	return merge(l, Clone(defaults), typedPresence(l), func(ci *model.ContactInfo) {
		overlayContact(ci, l.ContactInfo)
	})
}

// MergeJSON decodes raw and merges it against a fresh default document.
// Presence is decided on the raw object, so a field sent as an empty list
// stays empty while a missing field receives its default.
func MergeJSON(raw []byte) (*model.SiteDocument, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if fields == nil {
		return nil, ErrInvalidDocument
	}

	var loaded model.SiteDocument
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	present := func(field string) bool {
		v, ok := fields[field]
		return ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null"))
	}

	var contactErr error
	doc := merge(&loaded, Defaults(), present, func(ci *model.ContactInfo) {
		// Decoding into the default block keeps every scalar the payload omits.
		if err := json.Unmarshal(fields["contactInfo"], ci); err != nil {
			contactErr = err
		}
	})
	if contactErr != nil {
		return nil, fmt.Errorf("decoding contactInfo: %w", contactErr)
	}
	if present("snapshots") {
		completeSnapshots(doc.Snapshots, fields["snapshots"])
	}
	return doc, nil
}

// completeSnapshots merges the data of each snapshot from its raw object,
// so a snapshot taken before a field existed restores that field's default.
func completeSnapshots(snaps []model.Snapshot, raw json.RawMessage) {
	var entries []struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return
	}
	for i := range snaps {
		if i >= len(entries) {
			break
		}
		data, err := MergeJSON(entries[i].Data)
		if err != nil {
			continue
		}
		data.Snapshots = nil
		snaps[i].Data = data
	}
}

// merge builds the result in defaults, which must be a private copy.
// overlay applies the loaded contact block over a default block whose
// socials have been cleared.
func merge(loaded, defaults *model.SiteDocument, present presence, overlay func(*model.ContactInfo)) *model.SiteDocument {
	out := defaults
	defaultSocials := out.ContactInfo.Socials

	if present("translations") {
		out.Translations = mergeTranslations(out.Translations, loaded.Translations)
	}
	if present("skills") {
		out.Skills = loaded.Skills
	}
	if present("projects") {
		out.Projects = loaded.Projects
	}
	if present("testimonials") {
		out.Testimonials = loaded.Testimonials
	}
	if present("courses") {
		out.Courses = loaded.Courses
	}
	if present("profileImage") {
		out.ProfileImage = loaded.ProfileImage
	}
	if present("bannerImage") {
		out.BannerImage = loaded.BannerImage
	}
	if present("inquiries") {
		out.Inquiries = loaded.Inquiries
	}
	if present("chatLogs") {
		out.ChatLogs = loaded.ChatLogs
	}
	if present("registrations") {
		out.Registrations = loaded.Registrations
	}
	if present("adminPassword") {
		out.AdminPassword = loaded.AdminPassword
	}
	if present("theme") {
		out.Theme = loaded.Theme
	}
	if present("visitCount") {
		out.VisitCount = loaded.VisitCount
	}
	if present("snapshots") {
		out.Snapshots = loaded.Snapshots
	}

	if present("contactInfo") {
		out.ContactInfo.Socials = model.Socials{}
		overlay(&out.ContactInfo)
	} else {
		out.ContactInfo.Socials = model.Socials{}
	}
	if present("socials") {
		out.ContactInfo.Socials.FillFrom(loaded.Socials)
	}
	out.ContactInfo.Socials.FillFrom(defaultSocials)

	return normalize(out)
}

// normalize enforces the invariants every merged document satisfies.
func normalize(doc *model.SiteDocument) *model.SiteDocument {
	doc.SchemaVersion = CurrentSchemaVersion
	if !model.IsValidTheme(doc.Theme) {
		doc.Theme = model.DefaultTheme
	}
	if doc.VisitCount < 0 {
		doc.VisitCount = 0
	}
	if len(doc.Snapshots) > MaxSnapshots {
		doc.Snapshots = doc.Snapshots[:MaxSnapshots]
	}
	if doc.Translations == nil {
		doc.Translations = map[string]model.Translation{}
	}
	doc.Skills = nonNil(doc.Skills)
	doc.Projects = nonNil(doc.Projects)
	doc.Testimonials = nonNil(doc.Testimonials)
	doc.Courses = nonNil(doc.Courses)
	doc.Inquiries = nonNil(doc.Inquiries)
	doc.ChatLogs = nonNil(doc.ChatLogs)
	doc.Registrations = nonNil(doc.Registrations)
	doc.Snapshots = nonNil(doc.Snapshots)
	SyncSocials(doc)
	return doc
}

// SyncSocials mirrors contactInfo.socials into the legacy top-level map.
func SyncSocials(doc *model.SiteDocument) {
	var s model.Socials
	s.FillFrom(doc.ContactInfo.Socials)
	doc.Socials = s
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// mergeTranslations overlays loaded onto base per language, section and key.
func mergeTranslations(base, loaded map[string]model.Translation) map[string]model.Translation {
	if base == nil {
		base = make(map[string]model.Translation, len(loaded))
	}
	for lang, sections := range loaded {
		dst, ok := base[lang]
		if !ok || dst == nil {
			dst = make(model.Translation, len(sections))
			base[lang] = dst
		}
		for name, keys := range sections {
			section, ok := dst[name]
			if !ok || section == nil {
				section = make(map[string]any, len(keys))
				dst[name] = section
			}
			for k, v := range keys {
				section[k] = v
			}
		}
	}
	return base
}

// typedPresence treats zero values of a decoded document as absent.
func typedPresence(doc *model.SiteDocument) presence {
	return func(field string) bool {
		switch field {
		case "translations":
			return doc.Translations != nil
		case "skills":
			return doc.Skills != nil
		case "projects":
			return doc.Projects != nil
		case "testimonials":
			return doc.Testimonials != nil
		case "courses":
			return doc.Courses != nil
		case "profileImage":
			return doc.ProfileImage != nil
		case "bannerImage":
			return doc.BannerImage != nil
		case "inquiries":
			return doc.Inquiries != nil
		case "chatLogs":
			return doc.ChatLogs != nil
		case "registrations":
			return doc.Registrations != nil
		case "adminPassword":
			return doc.AdminPassword != ""
		case "theme":
			return doc.Theme != ""
		case "visitCount":
			return doc.VisitCount != 0
		case "snapshots":
			return doc.Snapshots != nil
		case "contactInfo":
			return doc.ContactInfo != (model.ContactInfo{})
		case "socials":
			return doc.Socials != (model.Socials{})
		}
		return false
	}
}

// overlayContact copies the non-empty scalars and set socials of src.
func overlayContact(dst *model.ContactInfo, src model.ContactInfo) {
	if src.Email != "" {
		dst.Email = src.Email
	}
	if src.Phone != "" {
		dst.Phone = src.Phone
	}
	if src.Address != "" {
		dst.Address = src.Address
	}
	dst.Socials.FillFrom(src.Socials)
}

// Clone returns a deep copy of doc made through its JSON encoding.
func Clone(doc *model.SiteDocument) *model.SiteDocument {
	if doc == nil {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		// SiteDocument holds only JSON-safe values.
		panic(fmt.Sprintf("site: encoding document: %v", err))
	}
	var out model.SiteDocument
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("site: decoding document: %v", err))
	}
	return &out
}
