// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// excerptLen is the number of characters taken from the content when no
// explicit excerpt is provided.
const excerptLen = 150

// Post is a published article. Comments live embedded on the post so a
// comment append is a single-row write.
type Post struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content"`
	ContentHTML   string    `json:"contentHtml,omitempty"`
	Excerpt       string    `json:"excerpt,omitempty"`
	CategoryID    uuid.UUID `json:"-"`
	AuthorID      uuid.UUID `json:"-"`
	Tags          []string  `json:"tags"`
	FeaturedImage *string   `json:"featuredImage"`
	IsPublished   bool      `json:"isPublished"`
	ViewCount     int       `json:"viewCount"`
	Comments      []Comment `json:"comments"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Populated references. The raw foreign keys are hidden from JSON in
	// favour of these partial shapes.
	Author   *UserRef     `json:"author,omitempty"`
	Category *CategoryRef `json:"category,omitempty"`
}

// Comment is embedded in its post's comment sequence. Append-only: there
// is no edit or delete.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"-"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	Author *UserRef `json:"author,omitempty"`
}

// DeriveExcerpt returns the post's excerpt, falling back to a truncated
// prefix of the content when none was provided.
func (p *Post) DeriveExcerpt() string {
	if strings.TrimSpace(p.Excerpt) != "" {
		return p.Excerpt
	}
	content := strings.TrimSpace(p.Content)
	if utf8.RuneCountInString(content) <= excerptLen {
		return content
	}
	runes := []rune(content)
	return strings.TrimSpace(string(runes[:excerptLen])) + "..."
}
