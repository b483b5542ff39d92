// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blogd/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// categorySelect joins posts so every read carries the derived post count.
// The count is computed on read, never stored.
const categorySelect = `
	SELECT c.id, c.name, c.slug, c.description, c.color, c.is_active,
	       c.created_at, c.updated_at,
	       COUNT(p.id) AS post_count
	FROM categories c
	LEFT JOIN posts p ON p.category_id = c.id`

// scanCategory scans a joined row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.Color, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt, &c.PostCount,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListActive returns all active categories sorted by name, each annotated
// with its computed post count.
func (s *CategoryStore) ListActive() ([]models.Category, error) {
	rows, err := s.db.Query(categorySelect + `
		WHERE c.is_active = TRUE
		GROUP BY c.id
		ORDER BY c.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindActiveByIdent retrieves an active category by UUID-or-slug.
// Returns nil if no active category matches.
func (s *CategoryStore) FindActiveByIdent(ident Ident) (*models.Category, error) {
	var row *sql.Row
	if ident.IsID() {
		row = s.db.QueryRow(categorySelect+`
			WHERE (c.id = $1 OR c.slug = $2) AND c.is_active = TRUE
			GROUP BY c.id`, ident.ID, ident.Slug)
	} else {
		row = s.db.QueryRow(categorySelect+`
			WHERE c.slug = $1 AND c.is_active = TRUE
			GROUP BY c.id`, ident.Slug)
	}

	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by ident: %w", err)
	}
	return c, nil
}

// FindByID retrieves a category by ID regardless of active state.
// Used to validate the category reference at post write time.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(categorySelect+`
		WHERE c.id = $1
		GROUP BY c.id`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. A duplicate name or slug
// surfaces as ErrConflict.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	if c.Color == "" {
		c.Color = models.DefaultCategoryColor
	}

	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO categories (name, slug, description, color, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, c.Name, c.Slug, c.Description, c.Color, c.IsActive).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return s.FindByID(id)
}

// Update modifies an existing category. The slug stays fixed after
// creation so published URLs keep working. A duplicate name surfaces as
// ErrConflict.
func (s *CategoryStore) Update(c *models.Category) (*models.Category, error) {
	_, err := s.db.Exec(`
		UPDATE categories SET
			name = $1, description = $2, color = $3, is_active = $4,
			updated_at = NOW()
		WHERE id = $5
	`, c.Name, c.Description, c.Color, c.IsActive, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return s.FindByID(c.ID)
}

// Delete removes a category by ID. Callers must first verify no posts
// reference it; the foreign key constraint backstops a concurrent insert.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
