// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the site document and the entities it aggregates.
package model

// Storage keys shared by the durable and legacy stores.
const (
	DocumentKey   = "portfolio_data"
	VisitCountKey = "visit_count"
	LegacyKey     = "phu_portfolio_data_v3"
)

// Supported UI languages.
const (
	LangVI = "vi"
	LangEN = "en"
)

// Chat roles.
const (
	ChatRoleUser = "user"
	ChatRoleAI   = "ai"
)

// Translation holds the UI strings of one language, grouped by section.
// Values are strings, string lists (projects.filters) or nested string maps
// (about.stats, contact.labels).
type Translation map[string]map[string]any

// SiteDocument is the single document that drives the whole site.
type SiteDocument struct {
	SchemaVersion int                    `json:"schemaVersion"`
	Translations  map[string]Translation `json:"translations"`
	Skills        []SkillGroup           `json:"skills"`
	Projects      []Project              `json:"projects"`
	Testimonials  []Testimonial          `json:"testimonials"`
	Courses       []Course               `json:"courses"`
	ContactInfo   ContactInfo            `json:"contactInfo"`
	Socials       Socials                `json:"socials"`
	ProfileImage  *string                `json:"profileImage"`
	BannerImage   *string                `json:"bannerImage"`
	Inquiries     []Inquiry              `json:"inquiries"`
	ChatLogs      []ChatLog              `json:"chatLogs"`
	Registrations []Registration         `json:"registrations"`
	AdminPassword string                 `json:"adminPassword"`
	Theme         string                 `json:"theme"`
	VisitCount    int64                  `json:"visitCount"`
	Snapshots     []Snapshot             `json:"snapshots"`
}

// SkillGroup is a category of skills shown together.
type SkillGroup struct {
	ID    string   `json:"id"`
	Cat   string   `json:"cat"`
	Icon  string   `json:"icon"`
	Items []string `json:"items"`
}

// Project is a portfolio entry.
type Project struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Desc     string        `json:"desc"`
	LongDesc string        `json:"longDesc,omitempty"`
	Tags     []string      `json:"tags"`
	Cat      string        `json:"cat"`
	Image    *string       `json:"image,omitempty"`
	Links    *ProjectLinks `json:"links,omitempty"`
}

// ProjectLinks are optional external links of a project.
type ProjectLinks struct {
	Demo string `json:"demo,omitempty"`
	Repo string `json:"repo,omitempty"`
}

// Testimonial is a quote from a client or partner.
type Testimonial struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
	Role    string `json:"role"`
}

// Course is a training offer visitors can register for.
type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Level       string `json:"level"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// ContactInfo is the contact block of the site.
type ContactInfo struct {
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	Socials Socials `json:"socials"`
}

// Socials maps social platforms to profile URLs.
// A nil field was never set and takes its default on merge; an empty
// string is an explicit "hidden" and is kept.
type Socials struct {
	Facebook *string `json:"facebook,omitempty"`
	Youtube  *string `json:"youtube,omitempty"`
	Zalo     *string `json:"zalo,omitempty"`
	Linkedin *string `json:"linkedin,omitempty"`
	Github   *string `json:"github,omitempty"`
}

// fields returns pointers to every platform slot, in a fixed order.
func (s *Socials) fields() []**string {
	return []**string{&s.Facebook, &s.Youtube, &s.Zalo, &s.Linkedin, &s.Github}
}

// FillFrom sets every unset platform of s from other.
func (s *Socials) FillFrom(other Socials) {
	dst := s.fields()
	src := other.fields()
	for i := range dst {
		if *dst[i] == nil && *src[i] != nil {
			v := **src[i]
			*dst[i] = &v
		}
	}
}

// Inquiry is a contact form submission. Inquiries are never edited, only deleted.
type Inquiry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Country   string `json:"country,omitempty"`
}

// ChatLog is one turn of the chat widget.
type ChatLog struct {
	SessionID string `json:"sessionId"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Registration is a course sign-up.
type Registration struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Course    string `json:"course"`
	Timestamp string `json:"timestamp"`
}

// Snapshot is a retained copy of the document for manual rollback.
type Snapshot struct {
	ID    string        `json:"id"`
	Date  string        `json:"date"`
	Label string        `json:"label"`
	Data  *SiteDocument `json:"data"`
}

// Str returns a pointer to s.
func Str(s string) *string {
	return &s
}
