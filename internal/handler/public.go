// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"html"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/folio/internal/generator"
	"github.com/olegiv/folio/internal/middleware"
	"github.com/olegiv/folio/internal/model"
)

var plainText = bluemonday.StrictPolicy()

// cleanText strips markup, trims and truncates to max runes.
func cleanText(s string, max int) string {
	s = strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
	if r := []rune(s); len(r) > max {
		s = strings.TrimSpace(string(r[:max]))
	}
	return s
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// PublicSite is the document as visitors see it: everything the page
// renders, nothing the admin console owns.
type PublicSite struct {
	Lang         string                       `json:"lang"`
	Translations map[string]model.Translation `json:"translations"`
	Skills       []model.SkillGroup           `json:"skills"`
	Projects     []PublicProject              `json:"projects"`
	Testimonials []model.Testimonial          `json:"testimonials"`
	Courses      []model.Course               `json:"courses"`
	ContactInfo  model.ContactInfo            `json:"contactInfo"`
	ProfileImage *string                      `json:"profileImage"`
	BannerImage  *string                      `json:"bannerImage"`
	Theme        string                       `json:"theme"`
	VisitCount   int64                        `json:"visitCount"`
}

func publicView(doc *model.SiteDocument, lang string) PublicSite {
	return PublicSite{
		Lang:         lang,
		Translations: doc.Translations,
		Skills:       doc.Skills,
		Projects:     publicProjects(doc.Projects),
		Testimonials: doc.Testimonials,
		Courses:      doc.Courses,
		ContactInfo:  doc.ContactInfo,
		ProfileImage: doc.ProfileImage,
		BannerImage:  doc.BannerImage,
		Theme:        doc.Theme,
		VisitCount:   doc.VisitCount,
	}
}

// Site handles GET /api/site. The first request of a browser session
// registers a visit.
func (h *Handler) Site(w http.ResponseWriter, r *http.Request) {
	if h.Visits != nil {
		n, err := h.Visits.RegisterVisit(r.Context(), r.UserAgent())
		if err != nil {
			h.Logger.Warn("registering visit failed", "category", model.EventCategoryStorage, "error", err)
		} else {
			h.Repo.SetVisitCount(n)
		}
	}

	var view PublicSite
	h.Repo.Read(func(doc *model.SiteDocument) {
		view = publicView(doc, middleware.GetLanguage(r.Context()))
	})
	writeSuccess(w, view)
}

// InquiryRequest is the contact form payload.
type InquiryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// CreateInquiry handles POST /api/inquiries.
func (h *Handler) CreateInquiry(w http.ResponseWriter, r *http.Request) {
	var req InquiryRequest
	if !decodeJSON(w, r, maxFormBody, &req) {
		return
	}

	in := model.Inquiry{
		ID:        newID(),
		Name:      cleanText(req.Name, maxNameLength),
		Email:     cleanText(req.Email, maxEmailLength),
		Phone:     cleanText(req.Phone, maxPhoneLength),
		Message:   cleanText(req.Message, maxMessageLength),
		Timestamp: timestamp(h.now()),
	}

	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "Name is required"
	}
	if !validEmail(in.Email) {
		fields["email"] = "A valid email address is required"
	}
	if in.Message == "" {
		fields["message"] = "Message is required"
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	if country := h.GeoIP.Country(middleware.ClientIP(r)); country != "" {
		in.Country = country
	}

	_, err := h.Repo.AddInquiry(r.Context(), in)
	if !h.writeSaved(w, http.StatusCreated, in, err) {
		h.internalError(w, "adding inquiry failed", err)
		return
	}
	h.Logger.Info("inquiry received", "inquiry_id", in.ID, "country", in.Country)
}

// RegistrationRequest is the course sign-up payload.
type RegistrationRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Course string `json:"course"`
}

// CreateRegistration handles POST /api/registrations.
func (h *Handler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if !decodeJSON(w, r, maxFormBody, &req) {
		return
	}

	reg := model.Registration{
		ID:        newID(),
		Name:      cleanText(req.Name, maxNameLength),
		Email:     cleanText(req.Email, maxEmailLength),
		Course:    cleanText(req.Course, maxNameLength),
		Timestamp: timestamp(h.now()),
	}

	fields := map[string]string{}
	if reg.Name == "" {
		fields["name"] = "Name is required"
	}
	if !validEmail(reg.Email) {
		fields["email"] = "A valid email address is required"
	}
	if reg.Course == "" {
		fields["course"] = "Course is required"
	} else if !courseOffered(h.Repo.Current(), reg.Course) {
		fields["course"] = "Unknown course"
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	_, err := h.Repo.AddRegistration(r.Context(), reg)
	if !h.writeSaved(w, http.StatusCreated, reg, err) {
		h.internalError(w, "adding registration failed", err)
	}
}

// courseOffered matches course by id or name. A site without courses
// accepts any name.
func courseOffered(doc *model.SiteDocument, course string) bool {
	if len(doc.Courses) == 0 {
		return true
	}
	for _, c := range doc.Courses {
		if c.ID == course || strings.EqualFold(c.Name, course) {
			return true
		}
	}
	return false
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// ChatRequest is one visitor chat message.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Lang      string `json:"lang"`
}

// ChatResponse carries the reply and the session it belongs to.
type ChatResponse struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
}

// Chat handles POST /api/chat. Both turns are appended to the chat log.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeJSON(w, r, maxFormBody, &req) {
		return
	}

	msg, err := generator.CheckPrompt(cleanText(req.Message, generator.MaxPromptLength))
	if err != nil {
		writeValidationError(w, map[string]string{"message": "Message is required"})
		return
	}
	sessionID := cleanText(req.SessionID, 64)
	if sessionID == "" {
		sessionID = newID()
	}
	lang := req.Lang
	if lang != model.LangEN && lang != model.LangVI {
		lang = middleware.GetLanguage(r.Context())
	}

	var history []model.ChatLog
	for _, c := range h.Repo.Current().ChatLogs {
		if c.SessionID == sessionID {
			history = append(history, c)
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.GeneratorTimeout)
	defer cancel()
	asked := timestamp(h.now())
	reply, err := h.Generator.Chat(ctx, generator.ChatRequest{Lang: lang, Message: msg, History: history})
	if err != nil {
		h.generatorError(w, "chat", err)
		return
	}

	_, err = h.Repo.AppendChatLog(r.Context(),
		model.ChatLog{SessionID: sessionID, Role: model.ChatRoleUser, Text: msg, Timestamp: asked},
		model.ChatLog{SessionID: sessionID, Role: model.ChatRoleAI, Text: reply, Timestamp: timestamp(h.now())},
	)
	if !h.writeSaved(w, http.StatusOK, ChatResponse{SessionID: sessionID, Reply: reply}, err) {
		h.internalError(w, "appending chat log failed", err)
	}
}

// DemoRequest asks for a generated landing page demo.
type DemoRequest struct {
	Prompt string `json:"prompt"`
}

// Demo handles POST /api/demo. The result is returned, never stored.
func (h *Handler) Demo(w http.ResponseWriter, r *http.Request) {
	var req DemoRequest
	if !decodeJSON(w, r, maxFormBody, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.GeneratorTimeout)
	defer cancel()
	spec, err := h.Generator.Demo(ctx, cleanText(req.Prompt, generator.MaxPromptLength))
	if err != nil {
		h.generatorError(w, "demo", err)
		return
	}
	writeSuccess(w, spec)
}

func (h *Handler) generatorError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, generator.ErrEmptyPrompt):
		writeValidationError(w, map[string]string{"prompt": "Prompt is required"})
	case errors.Is(err, generator.ErrGeneratorDisabled):
		writeError(w, http.StatusServiceUnavailable, CodeGeneratorOff, "Content generation is not configured")
	default:
		h.Logger.Warn("content generation failed",
			"category", model.EventCategoryGenerator, "op", op, "error", err)
		writeError(w, http.StatusBadGateway, CodeGeneratorFailed, "Content generation failed, please try again")
	}
}
