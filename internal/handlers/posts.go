// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogd/internal/markdown"
	"blogd/internal/middleware"
	"blogd/internal/models"
	"blogd/internal/slug"
	"blogd/internal/store"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Posts groups the post resource handlers.
type Posts struct {
	posts      *store.PostStore
	categories *store.CategoryStore
	users      *store.UserStore
	uploads    *Uploads
}

// NewPosts creates a new Posts handler group.
func NewPosts(posts *store.PostStore, categories *store.CategoryStore, users *store.UserStore, uploads *Uploads) *Posts {
	return &Posts{posts: posts, categories: categories, users: users, uploads: uploads}
}

// List returns one page of published posts, optionally filtered by
// category and search term. No matches yields an empty page, not an error.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := store.PostFilter{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(q.Get("search")),
	}

	if raw := q.Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			// An unknown category reference matches nothing.
			respondPage(w, []models.Post{}, Pagination{Page: page, Limit: limit, Total: 0, Pages: 0})
			return
		}
		filter.CategoryID = &id
	}

	posts, total, err := h.posts.List(filter)
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondPage(w, posts, Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	})
}

// Get returns one post by id or slug, fully populated, and bumps its
// view counter.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	ident := store.ParseIdent(chi.URLParam(r, "idOrSlug"))
	post, err := h.posts.FindByIdent(ident)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}

	// A lost increment costs one view, never the response.
	if err := h.posts.IncrementViews(post.ID); err != nil {
		slog.Warn("view count increment failed", "post", post.ID, "error", err)
	} else {
		post.ViewCount++
	}

	renderContent(post)
	respondData(w, http.StatusOK, post)
}

// postInput carries the fields of a create or update request. Pointers
// distinguish omitted fields from empty ones so updates stay partial.
type postInput struct {
	title       *string
	content     *string
	category    *string
	excerpt     *string
	tags        *[]string
	isPublished *bool
	image       *multipart.FileHeader
}

func (in *postInput) get(field string) string {
	switch field {
	case "title":
		if in.title != nil {
			return *in.title
		}
	case "content":
		if in.content != nil {
			return *in.content
		}
	case "category":
		if in.category != nil {
			return *in.category
		}
	}
	return ""
}

// parsePostInput reads a post mutation request. The client sends
// multipart form data when an image rides along and plain JSON otherwise.
func parsePostInput(r *http.Request) (*postInput, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return parsePostForm(r)
	}

	var req struct {
		Title       *string   `json:"title"`
		Content     *string   `json:"content"`
		Category    *string   `json:"category"`
		Excerpt     *string   `json:"excerpt"`
		Tags        *[]string `json:"tags"`
		IsPublished *bool     `json:"isPublished"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	return &postInput{
		title:       req.Title,
		content:     req.Content,
		category:    req.Category,
		excerpt:     req.Excerpt,
		tags:        req.Tags,
		isPublished: req.IsPublished,
	}, nil
}

func parsePostForm(r *http.Request) (*postInput, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, err
	}

	in := &postInput{}
	form := r.MultipartForm

	field := func(name string) *string {
		if vals, ok := form.Value[name]; ok && len(vals) > 0 {
			return &vals[0]
		}
		return nil
	}

	in.title = field("title")
	in.content = field("content")
	in.category = field("category")
	in.excerpt = field("excerpt")

	if raw := field("tags"); raw != nil {
		tags := splitTags(*raw)
		in.tags = &tags
	}
	if raw := field("isPublished"); raw != nil {
		published := *raw == "true"
		in.isPublished = &published
	}
	if files, ok := form.File["image"]; ok && len(files) > 0 {
		in.image = files[0]
	}
	return in, nil
}

// splitTags turns a comma-separated form value into an ordered tag list.
func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if tags == nil {
		tags = []string{}
	}
	return tags
}

// Create adds a new published post authored by the caller.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())

	in, err := parsePostInput(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	errs := checkRules(postRules, map[string]string{
		"title":    in.get("title"),
		"content":  in.get("content"),
		"category": in.get("category"),
	})
	var categoryID uuid.UUID
	if raw := strings.TrimSpace(in.get("category")); raw != "" {
		if id, parseErr := uuid.Parse(raw); parseErr == nil {
			categoryID = id
		} else {
			errs = append(errs, FieldError{Field: "category", Message: "Valid category ID is required"})
		}
	}
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	category, err := h.categories.FindByID(categoryID)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if category == nil {
		respondError(w, http.StatusBadRequest, "Category not found")
		return
	}

	title := strings.TrimSpace(*in.title)
	post := &models.Post{
		Title:       title,
		Slug:        slug.Make(title),
		Content:     *in.content,
		CategoryID:  category.ID,
		AuthorID:    ident.UserID,
		IsPublished: true,
		Tags:        []string{},
	}
	if in.excerpt != nil {
		post.Excerpt = strings.TrimSpace(*in.excerpt)
	}
	post.Excerpt = post.DeriveExcerpt()
	if in.tags != nil {
		post.Tags = *in.tags
	}

	if in.image != nil {
		filename, err := h.uploads.SaveImage(r.Context(), in.image)
		if err != nil {
			respondUploadError(w, err)
			return
		}
		post.FeaturedImage = &filename
	}

	created, err := h.posts.Create(post)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			respondError(w, http.StatusBadRequest, "A post with this title already exists")
			return
		}
		respondServerError(w, err)
		return
	}

	renderContent(created)
	respondData(w, http.StatusCreated, created)
}

// Update modifies a post the caller owns (admins may edit any post).
// Omitted fields keep their previous values; a new image replaces the
// old one.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	post, ok := h.resolveOwned(w, r, "Not authorized to update this post")
	if !ok {
		return
	}

	in, err := parsePostInput(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var errs []FieldError
	if in.title != nil {
		errs = append(errs, checkRules(postRules[:1], map[string]string{"title": *in.title})...)
	}
	if in.content != nil && strings.TrimSpace(*in.content) == "" {
		errs = append(errs, FieldError{Field: "content", Message: "Content is required"})
	}
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	if in.category != nil {
		categoryID, parseErr := uuid.Parse(strings.TrimSpace(*in.category))
		if parseErr != nil {
			respondFieldErrors(w, []FieldError{{Field: "category", Message: "Valid category ID is required"}})
			return
		}
		category, err := h.categories.FindByID(categoryID)
		if err != nil {
			respondServerError(w, err)
			return
		}
		if category == nil {
			respondError(w, http.StatusBadRequest, "Category not found")
			return
		}
		post.CategoryID = category.ID
	}

	if in.title != nil {
		post.Title = strings.TrimSpace(*in.title)
	}
	if in.content != nil {
		post.Content = *in.content
	}
	if in.excerpt != nil {
		post.Excerpt = strings.TrimSpace(*in.excerpt)
	}
	if in.tags != nil {
		post.Tags = *in.tags
	}
	if in.isPublished != nil {
		post.IsPublished = *in.isPublished
	}

	var previousImage string
	if in.image != nil {
		filename, err := h.uploads.SaveImage(r.Context(), in.image)
		if err != nil {
			respondUploadError(w, err)
			return
		}
		if post.FeaturedImage != nil {
			previousImage = *post.FeaturedImage
		}
		post.FeaturedImage = &filename
	}

	updated, err := h.posts.Update(post)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			respondError(w, http.StatusBadRequest, "A post with this title already exists")
			return
		}
		respondServerError(w, err)
		return
	}

	if previousImage != "" {
		h.uploads.Remove(r.Context(), previousImage)
	}

	renderContent(updated)
	respondData(w, http.StatusOK, updated)
}

// Delete removes a post the caller owns (admins may delete any post).
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	post, ok := h.resolveOwned(w, r, "Not authorized to delete this post")
	if !ok {
		return
	}

	if err := h.posts.Delete(post.ID); err != nil {
		respondServerError(w, err)
		return
	}

	if post.FeaturedImage != nil {
		h.uploads.Remove(r.Context(), *post.FeaturedImage)
	}

	respondData(w, http.StatusOK, map[string]any{})
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment appends a comment to the post and returns only the new
// comment, author populated.
func (h *Posts) AddComment(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())

	post, err := h.posts.FindByIdent(store.ParseIdent(chi.URLParam(r, "idOrSlug")))
	if err != nil {
		respondServerError(w, err)
		return
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(w, http.StatusBadRequest, "Comment content is required")
		return
	}

	comment, err := h.posts.AppendComment(post.ID, ident.UserID, content)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if comment == nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}

	author, err := h.users.FindByID(ident.UserID)
	if err == nil && author != nil {
		comment.Author = author.Ref()
	}

	respondData(w, http.StatusCreated, comment)
}

// resolveOwned loads the post addressed by the request and enforces the
// ownership rule: only the author or an admin may mutate it.
func (h *Posts) resolveOwned(w http.ResponseWriter, r *http.Request, denied string) (*models.Post, bool) {
	ident := middleware.IdentityFromCtx(r.Context())

	post, err := h.posts.FindByIdent(store.ParseIdent(chi.URLParam(r, "idOrSlug")))
	if err != nil {
		respondServerError(w, err)
		return nil, false
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return nil, false
	}

	if post.AuthorID != ident.UserID && ident.Role != models.RoleAdmin {
		respondError(w, http.StatusUnauthorized, denied)
		return nil, false
	}
	return post, true
}

// renderContent attaches the Markdown-rendered HTML to a single-post
// response. Render failures fall back to the raw source.
func renderContent(post *models.Post) {
	html, err := markdown.ToHTML(post.Content)
	if err != nil {
		slog.Warn("markdown render failed", "post", post.ID, "error", err)
		return
	}
	post.ContentHTML = html
}

// respondUploadError maps upload failures to client or server errors.
func respondUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errImageTooLarge):
		respondError(w, http.StatusBadRequest, "Image exceeds the upload size limit")
	case errors.Is(err, errUnsupportedImage):
		respondError(w, http.StatusBadRequest, "Unsupported image type")
	default:
		respondServerError(w, err)
	}
}
