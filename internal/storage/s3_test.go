// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewS3NotConfigured(t *testing.T) {
	backend, err := NewS3("", "us-east-1", "AK", "SK", "media", "")
	if err != nil {
		t.Fatalf("NewS3 without endpoint: %v", err)
	}
	if backend != nil {
		t.Error("no endpoint should mean no backend")
	}
}

func TestNewS3IncompleteConfig(t *testing.T) {
	cases := []struct {
		name      string
		accessKey string
		secretKey string
		bucket    string
	}{
		{name: "missing secret key", accessKey: "AK", bucket: "media"},
		{name: "missing access key", secretKey: "SK", bucket: "media"},
		{name: "missing bucket", accessKey: "AK", secretKey: "SK"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend, err := NewS3("http://s3.local", "us-east-1", tc.accessKey, tc.secretKey, tc.bucket, "")
			if err == nil {
				t.Fatal("partial configuration should be an error, not a silent fallback")
			}
			if backend != nil {
				t.Error("backend should be nil on configuration error")
			}
		})
	}
}

func newTestS3(t *testing.T, publicURL string) *S3 {
	t.Helper()

	backend, err := NewS3("http://s3.local/", "us-east-1", "AK", "SK", "media", publicURL)
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if backend == nil {
		t.Fatal("complete configuration should produce a backend")
	}
	return backend
}

func TestS3FileURL(t *testing.T) {
	c := newTestS3(t, "")
	if got := c.FileURL("a.jpg"); got != "http://s3.local/media/a.jpg" {
		t.Errorf("path-style URL: got %q", got)
	}

	c = newTestS3(t, "https://cdn.example.com/")
	if got := c.FileURL("a.jpg"); got != "https://cdn.example.com/a.jpg" {
		t.Errorf("public URL: got %q", got)
	}
}

func TestS3FileHandler(t *testing.T) {
	h := newTestS3(t, "").FileHandler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/a.jpg", nil))
	if rr.Code != http.StatusFound {
		t.Fatalf("got %d, want 302", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "http://s3.local/media/a.jpg" {
		t.Errorf("redirect location: got %q", loc)
	}

	// Traversal keys never reach the bucket.
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/..", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("traversal key: got %d, want 404", rr.Code)
	}
}
