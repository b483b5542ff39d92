// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"blogd/internal/auth"
	"blogd/internal/database"
	"blogd/internal/middleware"
	"blogd/internal/models"
	"blogd/internal/storage"
	"blogd/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "blogd")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "blogd")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "revoked:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testSecret signs tokens in handler tests.
var testSecret = []byte("handler-test-secret")

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Valkey     *redis.Client
	Users      *store.UserStore
	Categories *store.CategoryStore
	Posts      *store.PostStore
	Denylist   *auth.Denylist
	Auth       *Auth
	PostsH     *Posts
	CategoriesH *Categories
}

// newTestEnv creates a complete test environment with all handler
// dependencies. Uploads land in a per-test temp dir.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	users := store.NewUserStore(db)
	categories := store.NewCategoryStore(db)
	posts := store.NewPostStore(db)
	denylist := auth.NewDenylist(vk)

	local, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("storage.NewLocal: %v", err)
	}
	uploads := NewUploads(local)

	authH := NewAuth(users, denylist, testSecret, time.Hour)
	postsH := NewPosts(posts, categories, users, uploads)
	categoriesH := NewCategories(categories, posts)

	return &testEnv{
		DB:          db,
		Valkey:      vk,
		Users:       users,
		Categories:  categories,
		Posts:       posts,
		Denylist:    denylist,
		Auth:        authH,
		PostsH:      postsH,
		CategoriesH: categoriesH,
	}
}

// testIdentity builds the request-scoped identity a verified token would
// produce.
func testIdentity(user *models.User) *middleware.Identity {
	return &middleware.Identity{
		UserID:      user.ID,
		Role:        user.Role,
		TokenID:     uuid.NewString(),
		TokenExpiry: time.Now().Add(time.Hour),
	}
}

// withIdentity attaches an authenticated identity to a request.
func withIdentity(r *http.Request, ident *middleware.Identity) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), ident))
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeEnvelope unmarshals a response body into the shared envelope,
// leaving data as raw JSON for the caller to decode.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Errors     []FieldError    `json:"errors"`
	Pagination *Pagination     `json:"pagination"`
}

func decodeEnvelope(t *testing.T, body io.Reader) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

// createTestUser inserts a user and registers its cleanup.
func createTestUser(t *testing.T, env *testEnv, name, email string, role models.Role) *models.User {
	t.Helper()
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE email = $1", email) })
	user, err := env.Users.Create(name, email, "testpass123", role)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

// createTestCategory inserts an active category and registers its cleanup.
func createTestCategory(t *testing.T, env *testEnv, name, slug string) *models.Category {
	t.Helper()
	t.Cleanup(func() { env.DB.Exec("DELETE FROM categories WHERE slug = $1", slug) })
	cat, err := env.Categories.Create(&models.Category{Name: name, Slug: slug, IsActive: true})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	return cat
}

// createTestPost inserts a published post and registers its cleanup.
func createTestPost(t *testing.T, env *testEnv, title, slug string, authorID, categoryID uuid.UUID) *models.Post {
	t.Helper()
	t.Cleanup(func() { env.DB.Exec("DELETE FROM posts WHERE slug = $1", slug) })
	post, err := env.Posts.Create(&models.Post{
		Title:       title,
		Slug:        slug,
		Content:     "Test content for " + title,
		Excerpt:     "Test excerpt",
		CategoryID:  categoryID,
		AuthorID:    authorID,
		IsPublished: true,
		Tags:        []string{"test"},
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return post
}
