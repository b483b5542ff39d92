// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blogd/internal/handlers"
	"blogd/internal/middleware"
	"blogd/internal/storage"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

// testRouter wires the full route table with inert handler groups. The
// requests below are all stopped by middleware, so no handler ever
// touches a store.
func testRouter(t *testing.T) http.Handler {
	t.Helper()

	local, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("storage.NewLocal: %v", err)
	}

	limiter := middleware.NewRateLimiter(1000, time.Minute)
	t.Cleanup(limiter.Stop)

	secret := []byte("router-test-secret")
	return New(Deps{
		Auth:        handlers.NewAuth(nil, nil, secret, time.Hour),
		Posts:       handlers.NewPosts(nil, nil, nil, nil),
		Categories:  handlers.NewCategories(nil, nil),
		Files:       local,
		RequireAuth: middleware.RequireAuth(secret, nil),
		AuthLimiter: limiter,
	})
}

func TestMutationsRequireToken(t *testing.T) {
	r := testRouter(t)

	cases := []struct {
		method string
		path   string
	}{
		{"POST", "/api/posts"},
		{"PUT", "/api/posts/some-post"},
		{"DELETE", "/api/posts/some-post"},
		{"POST", "/api/posts/some-post/comments"},
		{"POST", "/api/categories"},
		{"PUT", "/api/categories/1b4e28ba-2fa1-11d2-883f-0016d3cca427"},
		{"DELETE", "/api/categories/1b4e28ba-2fa1-11d2-883f-0016d3cca427"},
		{"GET", "/api/auth/me"},
		{"POST", "/api/auth/logout"},
		{"PUT", "/api/auth/profile"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("got %d, want 401", rr.Code)
			}
		})
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options: got %q", got)
	}
}

func TestUploadsMountRejectsMissingFile(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest("GET", "/uploads/nope.jpg", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest("GET", "/api/unknown", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rr.Code)
	}
}
