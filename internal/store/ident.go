// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import "github.com/google/uuid"

// Ident locates a post or category by either its opaque UUID or its
// human-readable slug. The raw path segment is parsed once at the HTTP
// boundary; lookups then dispatch on whether a UUID was recognized.
type Ident struct {
	ID   uuid.UUID
	Slug string
	byID bool
}

// ParseIdent interprets a raw path segment. A value that parses as a UUID
// is looked up by id OR slug in one query; anything else is treated as a
// slug only.
func ParseIdent(raw string) Ident {
	if id, err := uuid.Parse(raw); err == nil {
		return Ident{ID: id, Slug: raw, byID: true}
	}
	return Ident{Slug: raw}
}

// IsID reports whether the raw value parsed as a UUID.
func (i Ident) IsID() bool {
	return i.byID
}
