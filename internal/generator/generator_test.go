// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package generator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio/internal/model"
	"github.com/olegiv/folio/internal/testutil"
)

const validDemo = `{
  "title": "GreenLeaf",
  "vibe": "Minimalist",
  "hero": {"title": "Grow <b>greener</b>", "subtitle": "Sustainable tech", "cta": "Start"},
  "features": [{"icon": "shield", "title": "Secure", "desc": "Safe by default"}, {"icon": "rocket", "title": "Fast", "desc": "Quick"}],
  "contentBlocks": [{"type": "text-image", "title": "About", "body": "<script>alert(1)</script>Body"}],
  "footer": {"copyright": "2025 GreenLeaf"}
}`

func TestParseDemo(t *testing.T) {
	spec, err := ParseDemo(validDemo)
	require.NoError(t, err)

	assert.Equal(t, "GreenLeaf", spec.Title)
	assert.Equal(t, "minimalist", spec.Vibe)
	assert.Equal(t, "Grow greener", spec.Hero.Title)
	require.Len(t, spec.Features, 2)
	assert.Equal(t, "shield", spec.Features[0].Icon)
	assert.Equal(t, "zap", spec.Features[1].Icon)
	assert.Equal(t, "Body", spec.ContentBlocks[0].Body)
	require.NotNil(t, spec.Footer)
	assert.Equal(t, "2025 GreenLeaf", spec.Footer.Copyright)
}

func TestParseDemoCodeFence(t *testing.T) {
	spec, err := ParseDemo("```json\n" + validDemo + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "GreenLeaf", spec.Title)
}

func TestParseDemoUnknownVibe(t *testing.T) {
	spec, err := ParseDemo(strings.Replace(validDemo, "Minimalist", "grunge", 1))
	require.NoError(t, err)
	assert.Equal(t, "minimalist", spec.Vibe)
}

func TestParseDemoRejects(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"truncated":      `{"title": "Cut off", "vibe": "playful", "hero": {"title": "x"`,
		"not json":       "Sorry, I cannot help with that.",
		"missing title":  `{"vibe":"playful","hero":{"title":"a","subtitle":"b","cta":"c"},"features":[{"icon":"zap","title":"t","desc":"d"}]}`,
		"missing vibe":   `{"title":"T","hero":{"title":"a","subtitle":"b","cta":"c"},"features":[{"icon":"zap","title":"t","desc":"d"}]}`,
		"hero partial":   `{"title":"T","vibe":"playful","hero":{"title":"a"},"features":[{"icon":"zap","title":"t","desc":"d"}]}`,
		"no features":    `{"title":"T","vibe":"playful","hero":{"title":"a","subtitle":"b","cta":"c"},"features":[]}`,
		"markup title":   `{"title":"<img src=x>","vibe":"playful","hero":{"title":"a","subtitle":"b","cta":"c"},"features":[{"icon":"zap","title":"t","desc":"d"}]}`,
		"untitled feat":  `{"title":"T","vibe":"playful","hero":{"title":"a","subtitle":"b","cta":"c"},"features":[{"icon":"zap","title":"","desc":"d"}]}`,
		"hero string":    `{"title":"T","vibe":"playful","hero":"big","features":[{"icon":"zap","title":"t","desc":"d"}]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			spec, err := ParseDemo(raw)
			assert.Nil(t, spec)
			assert.ErrorIs(t, err, ErrMalformedOutput)
		})
	}
}

func TestCheckPrompt(t *testing.T) {
	_, err := CheckPrompt("   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	p, err := CheckPrompt("  hello ")
	require.NoError(t, err)
	assert.Equal(t, "hello", p)

	p, err = CheckPrompt(strings.Repeat("ế", MaxPromptLength+10))
	require.NoError(t, err)
	assert.Len(t, []rune(p), MaxPromptLength)
}

func TestDisabled(t *testing.T) {
	g := New(Config{}, testutil.TestLoggerSilent())
	_, isDisabled := g.(Disabled)
	require.True(t, isDisabled)

	_, err := g.Chat(context.Background(), ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrGeneratorDisabled)
	_, err = g.Demo(context.Background(), "a page")
	assert.ErrorIs(t, err, ErrGeneratorDisabled)
}

// fakeCompletions serves a chat completions endpoint returning content and
// records the last request body.
func fakeCompletions(t *testing.T, content string, lastBody *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if lastBody != nil {
			_ = json.Unmarshal(body, lastBody)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIChat(t *testing.T) {
	var body map[string]any
	srv := fakeCompletions(t, "Xin chào! Tôi có thể giúp gì?", &body)
	g := NewOpenAI(Config{APIKey: "test", Model: "test-model", BaseURL: srv.URL + "/"}, testutil.TestLoggerSilent())

	reply, err := g.Chat(context.Background(), ChatRequest{
		Lang:    model.LangVI,
		Message: "Chào bạn",
		History: []model.ChatLog{
			{Role: model.ChatRoleUser, Text: "Trước đó"},
			{Role: model.ChatRoleAI, Text: "Vâng"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Xin chào! Tôi có thể giúp gì?", reply)

	assert.Equal(t, "test-model", body["model"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "assistant", msgs[2].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[3].(map[string]any)["role"])
}

func TestOpenAIDemo(t *testing.T) {
	srv := fakeCompletions(t, "```json\n"+validDemo+"\n```", nil)
	g := NewOpenAI(Config{APIKey: "test", BaseURL: srv.URL + "/"}, testutil.TestLoggerSilent())

	spec, err := g.Demo(context.Background(), "eco startup")
	require.NoError(t, err)
	assert.Equal(t, "GreenLeaf", spec.Title)
}

func TestOpenAIDemoMalformed(t *testing.T) {
	srv := fakeCompletions(t, `{"title": "half`, nil)
	g := NewOpenAI(Config{APIKey: "test", BaseURL: srv.URL + "/"}, testutil.TestLoggerSilent())

	spec, err := g.Demo(context.Background(), "eco startup")
	assert.Nil(t, spec)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestOpenAIServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	t.Cleanup(srv.Close)

	g := NewOpenAI(Config{APIKey: "bad", BaseURL: srv.URL + "/"}, testutil.TestLoggerSilent())
	_, err := g.Chat(context.Background(), ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
