// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package generator wraps the text generation service behind the chat
// widget and the demo builder. Its output is validated before any of it
// reaches the site document.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/folio/internal/model"
)

// Errors returned by generators.
var (
	ErrGeneratorDisabled = errors.New("generator: disabled")
	ErrMalformedOutput   = errors.New("generator: malformed output")
	ErrEmptyPrompt       = errors.New("generator: empty prompt")
)

// MaxPromptLength bounds user input in runes.
const MaxPromptLength = 2000

// Demo vibes.
var vibes = map[string]bool{
	"minimalist": true,
	"futuristic": true,
	"corporate":  true,
	"playful":    true,
}

// Feature icons the front end can render.
var featureIcons = map[string]bool{
	"zap":    true,
	"shield": true,
	"cpu":    true,
	"globe":  true,
}

// Generator produces chat replies and demo specifications.
type Generator interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	Demo(ctx context.Context, prompt string) (*DemoSpec, error)
}

// ChatRequest is one visitor message with the earlier turns of its session.
type ChatRequest struct {
	Lang    string
	Message string
	History []model.ChatLog
}

// DemoSpec is the structure of a generated landing page demo.
type DemoSpec struct {
	Title         string         `json:"title"`
	Vibe          string         `json:"vibe"`
	Hero          DemoHero       `json:"hero"`
	Features      []DemoFeature  `json:"features"`
	ContentBlocks []ContentBlock `json:"contentBlocks,omitempty"`
	Footer        *DemoFooter    `json:"footer,omitempty"`
}

// DemoHero is the hero section of a demo.
type DemoHero struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	CTA      string `json:"cta"`
}

// DemoFeature is one feature card.
type DemoFeature struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// ContentBlock is a free text block.
type ContentBlock struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// DemoFooter is the demo footer.
type DemoFooter struct {
	Copyright string `json:"copyright"`
}

var textPolicy = bluemonday.StrictPolicy()

// Sanitize strips all markup from generated or user supplied text. The
// result is plain text, not HTML: entities are decoded again.
func Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// ParseDemo validates raw generator output. Code fences around the JSON are
// tolerated, every string is stripped of markup, unknown vibes and icons are
// replaced by neutral values. Anything else wrong yields ErrMalformedOutput.
func ParseDemo(raw string) (*DemoSpec, error) {
	text := stripFences(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}

	var spec DemoSpec
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	spec.Title = Sanitize(spec.Title)
	spec.Vibe = strings.ToLower(Sanitize(spec.Vibe))
	spec.Hero.Title = Sanitize(spec.Hero.Title)
	spec.Hero.Subtitle = Sanitize(spec.Hero.Subtitle)
	spec.Hero.CTA = Sanitize(spec.Hero.CTA)

	switch {
	case spec.Title == "":
		return nil, fmt.Errorf("%w: missing title", ErrMalformedOutput)
	case spec.Vibe == "":
		return nil, fmt.Errorf("%w: missing vibe", ErrMalformedOutput)
	case spec.Hero.Title == "" || spec.Hero.Subtitle == "" || spec.Hero.CTA == "":
		return nil, fmt.Errorf("%w: incomplete hero", ErrMalformedOutput)
	case len(spec.Features) == 0:
		return nil, fmt.Errorf("%w: missing features", ErrMalformedOutput)
	}
	if !vibes[spec.Vibe] {
		spec.Vibe = "minimalist"
	}

	for i := range spec.Features {
		f := &spec.Features[i]
		f.Icon = strings.ToLower(Sanitize(f.Icon))
		f.Title = Sanitize(f.Title)
		f.Desc = Sanitize(f.Desc)
		if f.Title == "" {
			return nil, fmt.Errorf("%w: feature %d has no title", ErrMalformedOutput, i)
		}
		if !featureIcons[f.Icon] {
			f.Icon = "zap"
		}
	}
	for i := range spec.ContentBlocks {
		b := &spec.ContentBlocks[i]
		b.Type = Sanitize(b.Type)
		b.Title = Sanitize(b.Title)
		b.Body = Sanitize(b.Body)
	}
	if spec.Footer != nil {
		spec.Footer.Copyright = Sanitize(spec.Footer.Copyright)
	}
	return &spec, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the info string, e.g. ```json.
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// CheckPrompt trims a prompt and rejects empty or oversized input.
func CheckPrompt(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	if r := []rune(prompt); len(r) > MaxPromptLength {
		prompt = string(r[:MaxPromptLength])
	}
	return prompt, nil
}

// Disabled is used when no generation service is configured.
type Disabled struct{}

// Chat implements Generator.
func (Disabled) Chat(context.Context, ChatRequest) (string, error) {
	return "", ErrGeneratorDisabled
}

// Demo implements Generator.
func (Disabled) Demo(context.Context, string) (*DemoSpec, error) {
	return nil, ErrGeneratorDisabled
}

var _ Generator = Disabled{}
