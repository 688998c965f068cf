package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked token ids in redis until their natural expiry.
// It is optional: a nil *Denylist is a no-op and preserves the fully
// stateless verification path.
type Denylist struct {
	client *redis.Client
}

// NewDenylist constructs a Denylist over the given redis client. A nil
// client yields a nil Denylist, keeping the no-op path.
func NewDenylist(client *redis.Client) *Denylist {
	if client == nil {
		return nil
	}
	return &Denylist{client: client}
}

func denyKey(tokenID string) string {
	return "denylist:" + tokenID
}

// Revoke denies the token id for its remaining lifetime. Entries expire
// with the token itself, so the set stays bounded.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if d == nil || d.client == nil || tokenID == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denyKey(tokenID), "1", ttl).Err()
}

// IsRevoked reports whether the token id has been denied. Redis errors
// are surfaced so callers can fail closed.
func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if d == nil || d.client == nil || tokenID == "" {
		return false, nil
	}
	_, err := d.client.Get(ctx, denyKey(tokenID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
