package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Used tokens stay marked for longer than any magic link lives upstream.
const replayTTL = 24 * time.Hour

// ReplayGuard records consumed magic-link tokens in Redis.
// Key format: magic:used:<sha256(token)> — the raw token is never stored.
type ReplayGuard struct {
	client *redis.Client
}

func NewReplayGuard(client *redis.Client) *ReplayGuard {
	return &ReplayGuard{client: client}
}

// Seen reports whether this token has already been exchanged for a session.
func (g *ReplayGuard) Seen(ctx context.Context, token string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("replay check: %w", err)
	}
	return n > 0, nil
}

// Mark records the token as consumed. The mark expires after replayTTL.
func (g *ReplayGuard) Mark(ctx context.Context, token string) error {
	return g.client.Set(ctx, g.key(token), "1", replayTTL).Err()
}

func (g *ReplayGuard) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "magic:used:" + hex.EncodeToString(sum[:])
}
