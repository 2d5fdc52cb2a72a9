package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationRepo records logged-out session token IDs in Redis. Each entry
// expires together with the token it revokes, so the list never outgrows
// the set of still-valid tokens.
type RevocationRepo struct {
	rdb    *redis.Client
	prefix string
}

func NewRevocationRepo(rdb *redis.Client, prefix string) *RevocationRepo {
	if prefix == "" {
		prefix = "revoked"
	}
	return &RevocationRepo{rdb: rdb, prefix: prefix}
}

func (r *RevocationRepo) key(tokenID string) string { return r.prefix + ":" + tokenID }

// Revoke marks tokenID as revoked for ttl. A non-positive ttl means the
// token has already expired and nothing is stored.
func (r *RevocationRepo) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, r.key(tokenID), 1, ttl).Err()
}

// IsRevoked reports whether tokenID has an active revocation entry.
func (r *RevocationRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
