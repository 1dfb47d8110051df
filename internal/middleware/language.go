// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/olegiv/folio/internal/model"
)

// ContextKeyLanguage is the context key for the negotiated language code.
const ContextKeyLanguage ContextKey = "language"

// LanguageCookieName is the cookie name for language preference.
const LanguageCookieName = "folio_lang"

// The first tag is the fallback.
var languageMatcher = language.NewMatcher([]language.Tag{
	language.Vietnamese,
	language.English,
})

// NegotiateLanguage picks vi or en for r. Priority order:
// 1. Query parameter ?lang=XX
// 2. Cookie preference
// 3. Accept-Language header
// 4. Vietnamese
func NegotiateLanguage(r *http.Request) string {
	var cookieLang string
	if c, err := r.Cookie(LanguageCookieName); err == nil {
		cookieLang = c.Value
	}
	tag, _ := language.MatchStrings(languageMatcher,
		r.URL.Query().Get("lang"),
		cookieLang,
		r.Header.Get("Accept-Language"),
	)
	base, _ := tag.Base()
	if base.String() == model.LangEN {
		return model.LangEN
	}
	return model.LangVI
}

// Language stores the negotiated language in the request context. An
// explicit ?lang= is remembered in a cookie.
func Language(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := NegotiateLanguage(r)
		if r.URL.Query().Get("lang") != "" {
			SetLanguageCookie(w, lang)
		}
		ctx := context.WithValue(r.Context(), ContextKeyLanguage, lang)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetLanguage returns the language stored by Language, or Vietnamese.
func GetLanguage(ctx context.Context) string {
	if lang, ok := ctx.Value(ContextKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return model.LangVI
}

// SetLanguageCookie sets the language preference cookie.
func SetLanguageCookie(w http.ResponseWriter, langCode string) {
	http.SetCookie(w, &http.Cookie{
		Name:     LanguageCookieName,
		Value:    langCode,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
