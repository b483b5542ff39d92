// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage persists uploaded media files. The default backend
// writes to a local directory served under /uploads; an S3-compatible
// backend can be configured instead for object storage deployments.
// Posts persist only the filename, never the backend location.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Backend abstracts where uploaded files live. Keys are bare filenames.
type Backend interface {
	// Save stores a file under the given key.
	Save(ctx context.Context, key, contentType string, data []byte) error
	// Delete removes a file. Missing files are not an error.
	Delete(ctx context.Context, key string) error
	// FileHandler serves stored files for GET /uploads/{key} requests.
	FileHandler() http.Handler
}

// Local stores files on the local filesystem.
type Local struct {
	dir string
}

// NewLocal creates a local backend rooted at dir, creating it if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Save writes the file into the upload directory. Keys containing path
// separators are rejected so a crafted filename cannot escape the root.
func (l *Local) Save(_ context.Context, key, _ string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	path := filepath.Join(l.dir, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	return nil
}

// Delete removes the file if present.
func (l *Local) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(l.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}

// FileHandler serves the upload directory. Directory listings are not
// exposed; only direct file paths resolve.
func (l *Local) FileHandler() http.Handler {
	fs := http.FileServer(http.Dir(l.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// checkKey rejects keys that could traverse outside the upload root.
func checkKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, "/\\") || key != filepath.Base(key) {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
