// Package redisstore keeps revoked tokens in Redis so every instance sees a logout at once.
package redisstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "blacklist:"

type Blacklist struct {
	client *redis.Client
}

func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

// key hashes the token so raw credentials never appear in the keyspace.
func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Add stores the token until expiresAt. Tokens that are already expired are skipped.
func (b *Blacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, key(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis blacklist add: %w", err)
	}
	return nil
}

func (b *Blacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis blacklist lookup: %w", err)
	}
	return n > 0, nil
}
