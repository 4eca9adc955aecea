package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func sessionEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := LookupSessionID(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(id.String()))
	})
}

func decodeErrorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Error.Code
}

func TestJWTAuth_Middleware(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	other := NewJWTAuth("other-secret")
	sessionID := uuid.New()

	valid, err := auth.GenerateSessionToken(sessionID, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}
	expired, _ := auth.GenerateSessionToken(sessionID, -time.Minute)
	forged, _ := other.GenerateSessionToken(sessionID, time.Hour)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Token " + valid, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"wrong secret", "Bearer " + forged, http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()

			auth.Middleware(sessionEcho()).ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if tc.wantCode != "" {
				if code := decodeErrorCode(t, rr); code != tc.wantCode {
					t.Fatalf("expected code %s, got %s", tc.wantCode, code)
				}
				return
			}
			if rr.Body.String() != sessionID.String() {
				t.Fatalf("expected session id in context, got %q", rr.Body.String())
			}
		})
	}
}

func TestJWTAuth_Optional(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	sessionID := uuid.New()
	token, _ := auth.GenerateSessionToken(sessionID, time.Hour)

	anon := httptest.NewRecorder()
	auth.Optional(sessionEcho()).ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/", nil))
	if anon.Code != http.StatusNoContent {
		t.Fatalf("anonymous request should pass without a session, got %d", anon.Code)
	}

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set("Authorization", "Bearer not-a-jwt")
	badRR := httptest.NewRecorder()
	auth.Optional(sessionEcho()).ServeHTTP(badRR, bad)
	if badRR.Code != http.StatusNoContent {
		t.Fatalf("invalid token should be ignored, got %d", badRR.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	auth.Optional(sessionEcho()).ServeHTTP(rr, req)
	if rr.Body.String() != sessionID.String() {
		t.Fatalf("expected session id, got %q", rr.Body.String())
	}
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, ByIP)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		statuses = append(statuses, rr.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK || statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected statuses: %v", statuses)
	}

	other := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, other)
	if rr.Code != http.StatusOK {
		t.Fatalf("another client must have its own bucket, got %d", rr.Code)
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, ByIP)
	defer rl.Stop()

	now := time.Now()
	if !rl.allow("k", now) {
		t.Fatal("first request should pass")
	}
	if rl.allow("k", now.Add(time.Second)) {
		t.Fatal("second request inside the window should be limited")
	}
	if !rl.allow("k", now.Add(3*time.Minute)) {
		t.Fatal("request after the window should pass")
	}

	rl.cleanup(now.Add(10 * time.Minute))
	if len(rl.visitors) != 0 {
		t.Fatalf("expected stale visitors to be dropped, got %d", len(rl.visitors))
	}
}

func TestBySession_PrefersSessionID(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:99"

	if got := BySession(req); got != "10.0.0.9:99" {
		t.Fatalf("expected address fallback, got %q", got)
	}
	req = req.WithContext(WithSessionID(req.Context(), id))
	if got := BySession(req); got != "session:"+id.String() {
		t.Fatalf("expected session key, got %q", got)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rr.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("expected generated id to be echoed, got %q / %q", seen, rr.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if seen != "abc-123" {
		t.Fatalf("expected incoming id to be kept, got %q", seen)
	}
}

func TestCORS(t *testing.T) {
	handler := CORS("http://localhost:5173")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	preflight := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	preflight.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, preflight)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("expected allowed origin header")
	}

	foreign := httptest.NewRequest(http.MethodGet, "/health", nil)
	foreign.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, foreign)
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unexpected CORS header for foreign origin")
	}
}
