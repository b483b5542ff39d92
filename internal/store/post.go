// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogd/internal/models"
)

// PostStore handles all post-related database operations, including the
// embedded comment sequence.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postSelect joins the author and category so every post read comes back
// with its references populated in one query.
const postSelect = `
	SELECT p.id, p.title, p.slug, p.content, p.excerpt,
	       p.category_id, p.author_id, p.tags, p.featured_image,
	       p.is_published, p.view_count, p.comments,
	       p.created_at, p.updated_at,
	       u.id, u.name, u.avatar,
	       c.id, c.name, c.color
	FROM posts p
	JOIN users u ON u.id = p.author_id
	JOIN categories c ON c.id = p.category_id`

// commentDoc is the JSONB shape of an embedded comment. The author is
// stored as a bare reference and populated on read.
type commentDoc struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (d commentDoc) toModel() models.Comment {
	return models.Comment{
		ID:        d.ID,
		AuthorID:  d.AuthorID,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
}

// decodeComments unmarshals the embedded JSONB comment array, preserving
// append order.
func decodeComments(raw []byte) ([]models.Comment, error) {
	var docs []commentDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	comments := make([]models.Comment, 0, len(docs))
	for _, d := range docs {
		comments = append(comments, d.toModel())
	}
	return comments, nil
}

// scanPost scans a joined row into a Post with author and category
// references attached.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	var (
		tags          []byte
		comments      []byte
		featuredImage sql.NullString
		author        models.UserRef
		category      models.CategoryRef
	)
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt,
		&p.CategoryID, &p.AuthorID, &tags, &featuredImage,
		&p.IsPublished, &p.ViewCount, &comments,
		&p.CreatedAt, &p.UpdatedAt,
		&author.ID, &author.Name, &author.Avatar,
		&category.ID, &category.Name, &category.Color,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tags, &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Comments, err = decodeComments(comments); err != nil {
		return nil, err
	}
	if featuredImage.Valid {
		p.FeaturedImage = &featuredImage.String
	}
	p.Author = &author
	p.Category = &category
	return p, nil
}

// PostFilter narrows a post listing. Search matches title, content, or
// any tag case-insensitively. Page and Limit are 1-based.
type PostFilter struct {
	Page       int
	Limit      int
	CategoryID *uuid.UUID
	Search     string
}

// List returns one page of published posts matching the filter, newest
// first, along with the total match count for pagination.
func (s *PostStore) List(f PostFilter) ([]models.Post, int, error) {
	where := []string{"p.is_published = TRUE"}
	var args []any

	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			`(p.title ILIKE $%d OR p.content ILIKE $%d OR EXISTS (
				SELECT 1 FROM jsonb_array_elements_text(p.tags) AS tag WHERE tag ILIKE $%d))`,
			n, n, n))
	}
	cond := strings.Join(where, " AND ")

	var total int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts p WHERE `+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	query := fmt.Sprintf(
		`%s WHERE %s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`,
		postSelect, cond, len(args)-1, len(args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, total, rows.Err()
}

// FindByIdent retrieves a post by UUID-or-slug with author, category,
// and comment authors populated. Returns nil if not found.
func (s *PostStore) FindByIdent(ident Ident) (*models.Post, error) {
	var row *sql.Row
	if ident.IsID() {
		row = s.db.QueryRow(postSelect+` WHERE p.id = $1 OR p.slug = $2`, ident.ID, ident.Slug)
	} else {
		row = s.db.QueryRow(postSelect+` WHERE p.slug = $1`, ident.Slug)
	}

	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by ident: %w", err)
	}
	if err := s.populateCommentAuthors(p); err != nil {
		return nil, err
	}
	return p, nil
}

// FindByID retrieves a fully populated post by UUID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(postSelect+` WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	if err := s.populateCommentAuthors(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new post and returns it populated. A duplicate title
// or slug surfaces as ErrConflict.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = s.db.QueryRow(`
		INSERT INTO posts (title, slug, content, excerpt, category_id,
		                   author_id, tags, featured_image, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9)
		RETURNING id
	`, p.Title, p.Slug, p.Content, p.Excerpt, p.CategoryID,
		p.AuthorID, tags, p.FeaturedImage, p.IsPublished,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.FindByID(id)
}

// Update writes the mutable fields of an existing post and returns it
// populated. The slug and author stay fixed after creation.
func (s *PostStore) Update(p *models.Post) (*models.Post, error) {
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(`
		UPDATE posts SET
			title = $1, content = $2, excerpt = $3, category_id = $4,
			tags = $5::jsonb, featured_image = $6, is_published = $7,
			updated_at = NOW()
		WHERE id = $8
	`, p.Title, p.Content, p.Excerpt, p.CategoryID,
		tags, p.FeaturedImage, p.IsPublished, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return s.FindByID(p.ID)
}

// Delete removes a post by ID.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// AppendComment atomically appends a comment to the end of the post's
// embedded sequence. Returns nil if the post does not exist.
func (s *PostStore) AppendComment(postID, authorID uuid.UUID, content string) (*models.Comment, error) {
	doc := commentDoc{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode comment: %w", err)
	}

	res, err := s.db.Exec(`
		UPDATE posts SET comments = comments || $1::jsonb WHERE id = $2
	`, string(payload), postID)
	if err != nil {
		return nil, fmt.Errorf("append comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}

	c := doc.toModel()
	return &c, nil
}

// IncrementViews bumps the post's view counter by one. A single-row
// UPDATE keeps the counter monotonic under concurrent reads.
func (s *PostStore) IncrementViews(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// CountByCategory returns how many posts reference the given category.
func (s *PostStore) CountByCategory(categoryID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts by category: %w", err)
	}
	return count, nil
}

// populateCommentAuthors resolves the author reference of each embedded
// comment into a partial user shape, in one query.
func (s *PostStore) populateCommentAuthors(p *models.Post) error {
	if len(p.Comments) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, c := range p.Comments {
		if !seen[c.AuthorID] {
			seen[c.AuthorID] = true
			ids = append(ids, c.AuthorID)
		}
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := s.db.Query(
		`SELECT id, name, avatar FROM users WHERE id IN (`+strings.Join(placeholders, ", ")+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("comment authors: %w", err)
	}
	defer rows.Close()

	refs := make(map[uuid.UUID]models.UserRef)
	for rows.Next() {
		var ref models.UserRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Avatar); err != nil {
			return fmt.Errorf("scan comment author: %w", err)
		}
		refs[ref.ID] = ref
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range p.Comments {
		if ref, ok := refs[p.Comments[i].AuthorID]; ok {
			r := ref
			p.Comments[i].Author = &r
		}
	}
	return nil
}

// encodeTags marshals the ordered tag list for the JSONB column.
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(raw), nil
}
