// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// blog API. Routes are organized into public reads and token-protected
// mutation groups.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"blogd/internal/handlers"
	"blogd/internal/middleware"
	"blogd/internal/storage"
)

// Deps carries everything the router wires together.
type Deps struct {
	Auth       *handlers.Auth
	Posts      *handlers.Posts
	Categories *handlers.Categories
	Files      storage.Backend

	RequireAuth func(http.Handler) http.Handler
	AuthLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	// Auth routes. Credential endpoints sit behind the rate limiter so
	// password guessing burns the attacker's budget, not the database's.
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(d.AuthLimiter.Middleware)
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(d.RequireAuth)
			r.Get("/me", d.Auth.Me)
			r.Put("/profile", d.Auth.UpdateProfile)
			r.Post("/logout", d.Auth.Logout)
			r.Post("/2fa/setup", d.Auth.TwoFASetup)
			r.Post("/2fa/verify", d.Auth.TwoFAVerify)
		})
	})

	// Posts. Reads are public; every mutation needs a valid token.
	r.Route("/api/posts", func(r chi.Router) {
		r.Get("/", d.Posts.List)
		r.Get("/{idOrSlug}", d.Posts.Get)

		r.Group(func(r chi.Router) {
			r.Use(d.RequireAuth)
			r.Post("/", d.Posts.Create)
			r.Put("/{idOrSlug}", d.Posts.Update)
			r.Delete("/{idOrSlug}", d.Posts.Delete)
			r.Post("/{idOrSlug}/comments", d.Posts.AddComment)
		})
	})

	// Categories. Reads are public; mutations are admin only.
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", d.Categories.List)
		r.Get("/{idOrSlug}", d.Categories.Get)

		r.Group(func(r chi.Router) {
			r.Use(d.RequireAuth)
			r.Use(middleware.RequireAdmin)
			r.Post("/", d.Categories.Create)
			r.Put("/{id}", d.Categories.Update)
			r.Delete("/{id}", d.Categories.Delete)
		})
	})

	// Uploaded images, served straight from the storage backend.
	r.Mount("/uploads", http.StripPrefix("/uploads", d.Files.FileHandler()))

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
