// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio/internal/session"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func decodeAPIError(t *testing.T, body io.Reader) APIError {
	t.Helper()
	var e APIError
	require.NoError(t, json.NewDecoder(body).Decode(&e))
	return e
}

func TestWriteAPIError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteAPIError(rr, http.StatusBadRequest, "malformed_json", "bad input", map[string]string{"field": "x"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	e := decodeAPIError(t, rr.Body)
	assert.Equal(t, "malformed_json", e.Error.Code)
	assert.Equal(t, "bad input", e.Error.Message)
	assert.Equal(t, "x", e.Error.Details["field"])
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "203.0.113.9:5555", "203.0.113.9"},
		{"remote without port", nil, "203.0.113.9", "203.0.113.9"},
		{"x-real-ip", map[string]string{"X-Real-IP": "198.51.100.1"}, "10.0.0.1:1", "198.51.100.1"},
		{"x-forwarded-for chain", map[string]string{"X-Forwarded-For": "198.51.100.2, 10.0.0.1"}, "10.0.0.1:1", "198.51.100.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Middleware()(okHandler)

	send := func(remote string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/inquiries", nil)
		r.RemoteAddr = remote
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1:1000"))
	assert.Equal(t, http.StatusOK, send("203.0.113.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1:1002"))
	// Another client has its own bucket
	assert.Equal(t, http.StatusOK, send("203.0.113.2:1000"))
}

func TestLimiterCacheClear(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	lc.get("a")
	lc.get("b")
	assert.False(t, lc.clearIfExceeds(2))
	lc.get("c")
	assert.True(t, lc.clearIfExceeds(2))
	assert.Equal(t, 0, lc.size())
}

func TestLoginProtectionLockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       100,
		IPBurst:           100,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Hour,
	})
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	lp.now = func() time.Time { return now }

	locked, _ := lp.RecordFailedAttempt("1.2.3.4")
	assert.False(t, locked)
	locked, _ = lp.RecordFailedAttempt("1.2.3.4")
	assert.False(t, locked)
	locked, d := lp.RecordFailedAttempt("1.2.3.4")
	assert.True(t, locked)
	assert.Equal(t, time.Minute, d)

	isLocked, remaining := lp.IsLocked("1.2.3.4")
	assert.True(t, isLocked)
	assert.Equal(t, time.Minute, remaining)

	// Second lockout doubles
	now = now.Add(2 * time.Minute)
	isLocked, _ = lp.IsLocked("1.2.3.4")
	assert.False(t, isLocked)
	for i := 0; i < 2; i++ {
		lp.RecordFailedAttempt("1.2.3.4")
	}
	locked, d = lp.RecordFailedAttempt("1.2.3.4")
	assert.True(t, locked)
	assert.Equal(t, 2*time.Minute, d)

	lp.RecordSuccessfulLogin("1.2.3.4")
	isLocked, _ = lp.IsLocked("1.2.3.4")
	assert.False(t, isLocked)
}

func TestLoginProtectionWindowReset(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{MaxFailedAttempts: 2, AttemptWindow: time.Minute})
	now := time.Now()
	lp.now = func() time.Time { return now }

	lp.RecordFailedAttempt("ip")
	now = now.Add(2 * time.Minute)
	locked, _ := lp.RecordFailedAttempt("ip")
	assert.False(t, locked, "attempt outside the window starts a new count")

	now = now.Add(time.Hour)
	lp.Cleanup()
	lp.attemptsMu.RLock()
	_, tracked := lp.failedAttempts["ip"]
	lp.attemptsMu.RUnlock()
	assert.False(t, tracked)
}

func TestLoginProtectionMiddleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 100, IPBurst: 100, MaxFailedAttempts: 1})
	h := lp.Middleware()(okHandler)

	r := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
	r.RemoteAddr = "198.51.100.7:1"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)

	lp.RecordFailedAttempt("198.51.100.7")

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, "locked_out", decodeAPIError(t, rr.Body).Error.Code)

	// GET passes through
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/login", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireAdmin(t *testing.T) {
	sm := session.New(nil, true)
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, session.LoginAdmin(r.Context(), sm))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("/admin", RequireAdmin(sm)(okHandler))
	h := sm.LoadAndSave(mux)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "unauthorized", decodeAPIError(t, rr.Body).Error.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNoStore(t *testing.T) {
	rr := httptest.NewRecorder()
	NoStore(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

func TestDefaultCSRFConfig(t *testing.T) {
	key := []byte("12345678901234567890123456789012")

	dev := DefaultCSRFConfig(key, true)
	assert.Contains(t, dev.TrustedOrigins, "localhost:8080")
	for _, origin := range dev.TrustedOrigins {
		assert.False(t, strings.HasPrefix(origin, "http"), "origins are host:port, not URLs")
	}

	prod := DefaultCSRFConfig(key, false, "portfolio.example.com")
	assert.Equal(t, []string{"portfolio.example.com"}, prod.TrustedOrigins)
}

func TestCSRFRejectsCrossSite(t *testing.T) {
	h := CSRF(DefaultCSRFConfig([]byte("12345678901234567890123456789012"), false))(okHandler)

	r := httptest.NewRequest(http.MethodPost, "https://portfolio.example.com/api/admin/reset", nil)
	r.Header.Set("Sec-Fetch-Site", "cross-site")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "csrf_failed", decodeAPIError(t, rr.Body).Error.Code)

	r = httptest.NewRequest(http.MethodPost, "https://portfolio.example.com/api/admin/reset", nil)
	r.Header.Set("Sec-Fetch-Site", "same-origin")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)

	r = httptest.NewRequest(http.MethodGet, "https://portfolio.example.com/api/admin/site", nil)
	r.Header.Set("Sec-Fetch-Site", "cross-site")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code, "safe methods are not checked")
}

func TestNegotiateLanguage(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		cookie string
		accept string
		want   string
	}{
		{"default", "", "", "", "vi"},
		{"query", "?lang=en", "", "vi", "en"},
		{"query beats cookie", "?lang=vi", "en", "", "vi"},
		{"cookie", "", "en", "vi", "en"},
		{"accept region", "", "", "en-US,en;q=0.9", "en"},
		{"accept weighted", "", "", "fr;q=1, vi;q=0.8, en;q=0.5", "vi"},
		{"unknown query falls through", "?lang=fr", "", "en", "en"},
		{"unsupported everywhere", "", "", "de-DE", "vi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/site"+tt.query, nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: LanguageCookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			assert.Equal(t, tt.want, NegotiateLanguage(r))
		})
	}
}

func TestLanguageMiddleware(t *testing.T) {
	var got string
	h := Language(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetLanguage(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/site?lang=en", nil))
	assert.Equal(t, "en", got)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, LanguageCookieName, cookies[0].Name)
	assert.Equal(t, "en", cookies[0].Value)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/site", nil))
	assert.Equal(t, "vi", got)
	assert.Empty(t, rr.Result().Cookies())
}

func TestSecurityHeaders(t *testing.T) {
	for _, isDev := range []bool{false, true} {
		rr := httptest.NewRecorder()
		SecurityHeaders(DefaultSecurityHeadersConfig(isDev))(okHandler).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		h := rr.Header()
		assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
		assert.Contains(t, h.Get("Content-Security-Policy"), "default-src 'none'")
		assert.NotEmpty(t, h.Get("Permissions-Policy"))
		if isDev {
			assert.Empty(t, h.Get("Strict-Transport-Security"))
		} else {
			assert.Equal(t, "max-age=31536000; includeSubDomains", h.Get("Strict-Transport-Security"))
		}
	}
}

func TestTimeout(t *testing.T) {
	rr := httptest.NewRecorder()
	Timeout(time.Second)(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		_, _ = w.Write([]byte("late"))
	})
	rr = httptest.NewRecorder()
	Timeout(20*time.Millisecond)(slow).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "timeout", decodeAPIError(t, rr.Body).Error.Code)
}

func TestTimeoutLateHandlerLeavesResponse(t *testing.T) {
	finished := make(chan error, 1)
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		w.Header().Set("X-Late", "1")
		w.WriteHeader(http.StatusCreated)
		_, err := w.Write([]byte("late"))
		finished <- err
	})

	rr := httptest.NewRecorder()
	Timeout(20*time.Millisecond)(slow).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, <-finished, http.ErrHandlerTimeout)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Empty(t, rr.Header().Get("X-Late"))
	assert.NotContains(t, rr.Body.String(), "late")
}

func TestTimeoutCopiesHandlerHeaders(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Add("Vary", "Cookie")
		_, _ = w.Write([]byte(`{}`))
	})

	rr := httptest.NewRecorder()
	Timeout(time.Second)(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "Cookie", rr.Header().Get("Vary"))
}

func TestCompressJSON(t *testing.T) {
	big := `{"data":"` + strings.Repeat("a", 4096) + `"}`
	h := CompressJSON(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", r.URL.Query().Get("ct"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(big))
	}))

	r := httptest.NewRequest(http.MethodGet, "/?ct=application/json", nil)
	r.Header.Set("Accept-Encoding", "gzip, deflate")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, big, string(plain))

	r = httptest.NewRequest(http.MethodGet, "/?ct=application/zip", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	assert.Empty(t, rr.Header().Get("Content-Encoding"))
	assert.Equal(t, big, rr.Body.String())
}
