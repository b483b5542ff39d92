package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"blogd/internal/slug"
)

// Seed populates the database with initial development data: a default
// admin user, the starter categories, and a few sample posts. It is a
// no-op when users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var adminID uuid.UUID
	err = db.QueryRow(`
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, "Admin User", "admin@example.com", string(hash), "admin").Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	categories := []struct {
		name, description, color string
	}{
		{"Technology", "Latest tech trends and innovations", "#3B82F6"},
		{"Programming", "Coding tutorials and development tips", "#10B981"},
		{"Web Development", "Frontend and backend development", "#F59E0B"},
		{"Databases", "Database and data management", "#8B5CF6"},
		{"Go", "Go tutorials and best practices", "#06B6D4"},
	}

	var categoryIDs []uuid.UUID
	for _, c := range categories {
		var id uuid.UUID
		err := db.QueryRow(`
			INSERT INTO categories (name, slug, description, color)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, c.name, slug.Make(c.name), c.description, c.color).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.name, err)
		}
		categoryIDs = append(categoryIDs, id)
	}

	posts := []struct {
		title, content string
		tags           []string
	}{
		{
			title: "Getting Started with This Blog",
			content: "Welcome! This platform serves Markdown posts over a JSON API.\n\n" +
				"## What you can do\n\n" +
				"- Browse and search published posts\n" +
				"- Comment on posts once registered\n" +
				"- Organize writing with color-coded categories\n",
			tags: []string{"announcement", "meta"},
		},
		{
			title: "Structured Logging in Go Services",
			content: "The `log/slog` package landed in Go 1.21 and replaces most " +
				"third-party loggers for typical services.\n\n" +
				"```go\nslog.Info(\"http request\", \"method\", r.Method, \"path\", r.URL.Path)\n```\n\n" +
				"Key/value pairs keep log pipelines queryable without regex parsing.\n",
			tags: []string{"go", "logging", "backend"},
		},
		{
			title: "Embedding Documents vs Joining Tables",
			content: "When a child record only ever lives inside its parent, embedding " +
				"wins: reads are one fetch and appends are atomic.\n\n" +
				"Comments on this blog are embedded in their post row as a JSON " +
				"array for exactly that reason.\n",
			tags: []string{"databases", "modeling"},
		},
	}

	for i, p := range posts {
		tags, err := json.Marshal(p.tags)
		if err != nil {
			return fmt.Errorf("seed marshal tags: %w", err)
		}
		_, err = db.Exec(`
			INSERT INTO posts (title, slug, content, category_id, author_id, tags)
			VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		`, p.title, slug.Make(p.title), p.content, categoryIDs[i%len(categoryIDs)], adminID, string(tags))
		if err != nil {
			return fmt.Errorf("seed insert post %q: %w", p.title, err)
		}
	}

	slog.Info("database seeded with default admin user and sample content",
		"email", "admin@example.com",
		"password", "password123",
	)

	return nil
}
