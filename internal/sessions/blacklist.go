package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records revoked access tokens in Redis until they would have expired anyway.
// A Blacklist with a nil client is disabled: Add is a no-op and Contains reports false.
type Blacklist struct {
	client redis.UniversalClient
	prefix string
}

func NewBlacklist(client redis.UniversalClient) *Blacklist {
	return &Blacklist{client: client, prefix: "blacklist:access:"}
}

// Keys hold a digest so raw bearer tokens never land in Redis.
func (b *Blacklist) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return b.prefix + hex.EncodeToString(sum[:])
}

// Add revokes token for ttl. Non-positive ttls are ignored.
func (b *Blacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if b == nil || b.client == nil || ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, b.key(token), "1", ttl).Err()
}

func (b *Blacklist) Contains(ctx context.Context, token string) (bool, error) {
	if b == nil || b.client == nil {
		return false, nil
	}
	n, err := b.client.Exists(ctx, b.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
