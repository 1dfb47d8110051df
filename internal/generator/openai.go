// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/olegiv/folio/internal/model"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// maxHistory is the number of earlier chat turns sent with a message.
const maxHistory = 12

// Config holds the OpenAI-compatible endpoint settings.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// OpenAI generates content through an OpenAI-compatible chat completions API.
type OpenAI struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// New returns an OpenAI generator, or Disabled when no API key is set.
func New(cfg Config, logger *slog.Logger) Generator {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Disabled{}
	}
	return NewOpenAI(cfg, logger)
}

// NewOpenAI creates an OpenAI generator.
func NewOpenAI(cfg Config, logger *slog.Logger) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Chat implements Generator.
func (g *OpenAI) Chat(ctx context.Context, req ChatRequest) (string, error) {
	msg, err := CheckPrompt(req.Message)
	if err != nil {
		return "", err
	}

	history := req.History
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(chatSystemPrompt(req.Lang)))
	for _, turn := range history {
		if turn.Role == model.ChatRoleAI {
			messages = append(messages, openai.AssistantMessage(turn.Text))
		} else {
			messages = append(messages, openai.UserMessage(turn.Text))
		}
	}
	messages = append(messages, openai.UserMessage(msg))

	reply, err := g.complete(ctx, messages, 1024)
	if err != nil {
		return "", err
	}
	reply = Sanitize(reply)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", ErrMalformedOutput)
	}
	return reply, nil
}

// Demo implements Generator.
func (g *OpenAI) Demo(ctx context.Context, prompt string) (*DemoSpec, error) {
	prompt, err := CheckPrompt(prompt)
	if err != nil {
		return nil, err
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(demoSystemPrompt),
		openai.UserMessage(fmt.Sprintf("Generate a web application or landing page demo based on this prompt: %q", prompt)),
	}
	raw, err := g.complete(ctx, messages, 8192)
	if err != nil {
		return nil, err
	}

	spec, err := ParseDemo(raw)
	if err != nil {
		g.logger.Warn("discarding generated demo",
			"category", model.EventCategoryGenerator, "error", err, "bytes", len(raw))
		return nil, err
	}
	return spec, nil
}

func (g *OpenAI) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, maxTokens int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(g.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(maxTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("generator: api status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("generator: request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrMalformedOutput)
	}
	return resp.Choices[0].Message.Content, nil
}

func chatSystemPrompt(lang string) string {
	language := "Vietnamese"
	if lang == model.LangEN {
		language = "English"
	}
	return "You are Phú's digital representative on this portfolio site." +
		"Be professional, witty and technically precise. Answer in " + language + ". " +
		"Keep answers short and never invent contact details."
}

const demoSystemPrompt = `You design landing page demos.
Keep descriptions and content blocks concise (max 200 words per block).
Return ONLY a JSON object with this exact structure:
{
  "title": "Project Name",
  "vibe": "minimalist | futuristic | corporate | playful",
  "hero": { "title": "...", "subtitle": "...", "cta": "..." },
  "features": [ { "icon": "zap|shield|cpu|globe", "title": "...", "desc": "..." } ],
  "contentBlocks": [ { "type": "text-image", "title": "...", "body": "..." } ],
  "footer": { "copyright": "..." }
}`

var _ Generator = (*OpenAI)(nil)
