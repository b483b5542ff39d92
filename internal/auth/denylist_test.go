// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func testDenylist(t *testing.T) *Denylist {
	t.Helper()

	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return NewDenylist(client)
}

func TestDenylistRevoke(t *testing.T) {
	dl := testDenylist(t)
	ctx := context.Background()

	tokenID := uuid.NewString()

	revoked, err := dl.Revoked(ctx, tokenID)
	if err != nil {
		t.Fatalf("Revoked before revoke: %v", err)
	}
	if revoked {
		t.Error("fresh token id reported as revoked")
	}

	if err := dl.Revoke(ctx, tokenID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	revoked, err = dl.Revoked(ctx, tokenID)
	if err != nil {
		t.Fatalf("Revoked after revoke: %v", err)
	}
	if !revoked {
		t.Error("revoked token id not reported as revoked")
	}
}

func TestDenylistExpiredTokenIsNoop(t *testing.T) {
	dl := testDenylist(t)
	ctx := context.Background()

	tokenID := uuid.NewString()

	// A token past its own expiry needs no entry; it can never verify
	// again anyway.
	if err := dl.Revoke(ctx, tokenID, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke expired: %v", err)
	}

	revoked, err := dl.Revoked(ctx, tokenID)
	if err != nil {
		t.Fatalf("Revoked: %v", err)
	}
	if revoked {
		t.Error("expired token should not create a denylist entry")
	}
}
