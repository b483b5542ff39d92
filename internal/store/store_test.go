// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"blogd/internal/database"
	"blogd/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogd")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogd")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanCategories removes test categories by slug. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", slug)
	}
}

// cleanPosts removes test posts by slug. Call in t.Cleanup().
func cleanPosts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM posts WHERE slug = $1", slug)
	}
}

// testAuthor creates a throwaway user for post fixtures and registers
// its cleanup.
func testAuthor(t *testing.T, db *sql.DB, email string) *models.User {
	t.Helper()
	s := NewUserStore(db)
	t.Cleanup(func() { cleanUsers(t, db, email) })
	user, err := s.Create("Fixture Author", email, "fixturepass", models.RoleUser)
	if err != nil {
		t.Fatalf("create fixture author: %v", err)
	}
	return user
}

// testCategory creates a throwaway active category for post fixtures and
// registers its cleanup.
func testCategory(t *testing.T, db *sql.DB, name, slug string) *models.Category {
	t.Helper()
	s := NewCategoryStore(db)
	t.Cleanup(func() { cleanCategories(t, db, slug) })
	cat, err := s.Create(&models.Category{Name: name, Slug: slug, IsActive: true})
	if err != nil {
		t.Fatalf("create fixture category: %v", err)
	}
	return cat
}

// testPost creates a throwaway published post and registers its cleanup.
func testPost(t *testing.T, db *sql.DB, title, slug string, authorID, categoryID uuid.UUID) *models.Post {
	t.Helper()
	s := NewPostStore(db)
	t.Cleanup(func() { cleanPosts(t, db, slug) })
	post, err := s.Create(&models.Post{
		Title:       title,
		Slug:        slug,
		Content:     "Fixture content for " + title,
		Excerpt:     "Fixture excerpt",
		CategoryID:  categoryID,
		AuthorID:    authorID,
		IsPublished: true,
		Tags:        []string{"fixture"},
	})
	if err != nil {
		t.Fatalf("create fixture post: %v", err)
	}
	return post
}
