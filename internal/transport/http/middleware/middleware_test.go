package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/pokehire/internal/logging"
)

type stubVerifier struct {
	token  string
	userID uuid.UUID
}

func (v stubVerifier) Verify(token string) (uuid.UUID, error) {
	if token != v.token {
		return uuid.Nil, errors.New("invalid token")
	}
	return v.userID, nil
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetUserID(r.Context()).String()))
	})
}

func TestAuth(t *testing.T) {
	verifier := stubVerifier{token: "good", userID: uuid.New()}
	handler := Auth(verifier)(echoUser())

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer bad", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, verifier.userID.String(), rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"UNAUTHORIZED"`)
			}
		})
	}
}

func TestGate(t *testing.T) {
	verifier := stubVerifier{token: "good", userID: uuid.New()}
	gate := Gate(GateConfig{
		CookieName:        "auth_token",
		ProtectedPrefixes: []string{"/dashboard", "/teams", "/contracts"},
		LoginPath:         "/auth/login",
	}, verifier)
	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name     string
		path     string
		cookie   string
		status   int
		location string
	}{
		{"public page", "/", "", http.StatusOK, ""},
		{"login page", "/auth/login", "", http.StatusOK, ""},
		{"similar prefix", "/teamspeak", "", http.StatusOK, ""},
		{"protected without cookie", "/dashboard", "", http.StatusFound, "/auth/login"},
		{"nested protected", "/contracts/42", "", http.StatusFound, "/auth/login"},
		{"protected with bad cookie", "/teams", "bad", http.StatusFound, "/auth/login"},
		{"protected with good cookie", "/teams/builder", "good", http.StatusOK, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "auth_token", Value: tc.cookie})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.location, rec.Header().Get("Location"))
		})
	}
}

type countingLimiter struct {
	hits map[string]int
	err  error
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, int, error) {
	if l.err != nil {
		return false, 0, l.err
	}
	l.hits[key]++
	return l.hits[key] <= limit, l.hits[key], nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{hits: map[string]int{}}
	handler := RateLimit(limiter, "login", 2, time.Minute, nil, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:5678").Code)

	rec := do("10.0.0.1:9999")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234").Code)
	assert.Equal(t, 3, limiter.hits["ratelimit:login:10.0.0.1"])
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &countingLimiter{err: errors.New("redis down")}
	handler := RateLimit(limiter, "login", 1, time.Minute, nil, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	limiter := &countingLimiter{hits: map[string]int{}}
	handler := RateLimit(limiter, "login", 2, time.Minute, nil, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	blocked := 0
	for i := range 50 {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "198.51.100.20:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			blocked++
		}
	}

	assert.Equal(t, 48, blocked)
	assert.Equal(t, 50, limiter.hits["ratelimit:login:198.51.100.20"])
}

func TestRateLimit_HonorsForwardedForFromTrustedProxy(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	limiter := &countingLimiter{hits: map[string]int{}}
	handler := RateLimit(limiter, "login", 1, time.Minute, trusted, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.5:8080"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("203.0.113.1"))
	assert.Equal(t, http.StatusOK, do("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.1"))
}

func TestClientIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.1", "172.16.0.0/12"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		remote    string
		forwarded string
		trusted   []netip.Prefix
		want      string
	}{
		{"no header", "192.0.2.7:4000", "", trusted, "192.0.2.7"},
		{"untrusted peer ignores header", "192.0.2.7:4000", "203.0.113.9", trusted, "192.0.2.7"},
		{"no trusted proxies configured", "10.0.0.1:4000", "203.0.113.9", nil, "10.0.0.1"},
		{"trusted peer uses header", "10.0.0.1:4000", "203.0.113.9", trusted, "203.0.113.9"},
		{"spoofed left entry skipped", "10.0.0.1:4000", "6.6.6.6, 203.0.113.9", trusted, "203.0.113.9"},
		{"trusted hops skipped", "10.0.0.1:4000", "203.0.113.9, 172.16.4.4", trusted, "203.0.113.9"},
		{"garbage hop falls back to peer", "10.0.0.1:4000", "not-an-ip", trusted, "10.0.0.1"},
		{"all hops trusted", "10.0.0.1:4000", "172.16.0.9", trusted, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trusted))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{"10.0.0.1", " 192.168.1.0/24 ", "", "::1"})
	require.NoError(t, err)
	require.Len(t, prefixes, 3)
	assert.Equal(t, "10.0.0.1/32", prefixes[0].String())
	assert.Equal(t, "192.168.1.0/24", prefixes[1].String())
	assert.Equal(t, "::1/128", prefixes[2].String())

	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)

	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	preflight := httptest.NewRequest(http.MethodOptions, "/api/contracts/create", nil)
	preflight.Header.Set("Origin", "http://localhost:3000")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	foreign := httptest.NewRequest(http.MethodGet, "/api/users/contractors", nil)
	foreign.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, foreign)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, "json", "info")
	handler := Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	out := buf.String()
	assert.Contains(t, out, `"path":"/api/auth/signup"`)
	assert.Contains(t, out, `"status":201`)
	assert.Contains(t, out, `"request_id":"req-1"`)
}
