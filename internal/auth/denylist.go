// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces revoked-token keys in Valkey to avoid collisions.
const keyPrefix = "revoked:"

// Denylist records revoked token ids in Valkey. Entries expire together
// with the token itself, so the set stays bounded without sweeping.
type Denylist struct {
	client *redis.Client
}

// NewDenylist creates a denylist backed by the given Valkey client.
func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

// Revoke marks a token id as revoked until the token's own expiry.
// Tokens already past expiry need no entry.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, keyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("denylist revoke: %w", err)
	}
	return nil
}

// Revoked reports whether the token id has been revoked.
func (d *Denylist) Revoked(ctx context.Context, tokenID string) (bool, error) {
	err := d.client.Get(ctx, keyPrefix+tokenID).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("denylist check: %w", err)
	}
	return true, nil
}
