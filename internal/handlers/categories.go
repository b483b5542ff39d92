// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogd/internal/models"
	"blogd/internal/slug"
	"blogd/internal/store"
)

// Categories groups the category resource handlers. Mutations are
// admin-gated in the router.
type Categories struct {
	categories *store.CategoryStore
	posts      *store.PostStore
}

// NewCategories creates a new Categories handler group.
func NewCategories(categories *store.CategoryStore, posts *store.PostStore) *Categories {
	return &Categories{categories: categories, posts: posts}
}

// List returns all active categories sorted by name, each with its
// computed post count.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.categories.ListActive()
	if err != nil {
		respondServerError(w, err)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	respondData(w, http.StatusOK, items)
}

// Get returns one active category by id or slug.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	ident := store.ParseIdent(chi.URLParam(r, "idOrSlug"))
	category, err := h.categories.FindActiveByIdent(ident)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if category == nil {
		respondError(w, http.StatusNotFound, "Category not found")
		return
	}
	respondData(w, http.StatusOK, category)
}

type categoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	IsActive    *bool   `json:"isActive"`
}

func (req *categoryRequest) fieldValues() map[string]string {
	values := map[string]string{"name": req.Name}
	if req.Description != nil {
		values["description"] = *req.Description
	}
	return values
}

// Create adds a new category. Admin only.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := checkRules(categoryRules, req.fieldValues()); len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	name := strings.TrimSpace(req.Name)
	category := &models.Category{
		Name:     name,
		Slug:     slug.Make(name),
		IsActive: true,
	}
	if req.Description != nil {
		category.Description = strings.TrimSpace(*req.Description)
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	created, err := h.categories.Create(category)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			respondError(w, http.StatusBadRequest, "A category with this name already exists")
			return
		}
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusCreated, created)
}

// Update modifies an existing category. Omitted fields keep their
// previous values. Admin only.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Category not found")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := checkRules(categoryRules, req.fieldValues()); len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	category, err := h.categories.FindByID(id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if category == nil {
		respondError(w, http.StatusNotFound, "Category not found")
		return
	}

	category.Name = strings.TrimSpace(req.Name)
	if req.Description != nil {
		category.Description = strings.TrimSpace(*req.Description)
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	updated, err := h.categories.Update(category)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			respondError(w, http.StatusBadRequest, "A category with this name already exists")
			return
		}
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, updated)
}

// Delete removes a category that no posts reference. Admin only.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Category not found")
		return
	}

	category, err := h.categories.FindByID(id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if category == nil {
		respondError(w, http.StatusNotFound, "Category not found")
		return
	}

	count, err := h.posts.CountByCategory(category.ID)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if count > 0 {
		respondError(w, http.StatusBadRequest, "Cannot delete category with existing posts")
		return
	}

	if err := h.categories.Delete(category.ID); err != nil {
		respondServerError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{})
}
