package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 5 * time.Second

// SubmissionGuard rejects rapid re-submissions of the same mutation backed
// by Redis. Key format: dedup:<session_id>:<action>:<payload_hash>
type SubmissionGuard struct {
	client *redis.Client
}

// NewSubmissionGuard creates a SubmissionGuard wrapping the given Redis client.
func NewSubmissionGuard(client *redis.Client) *SubmissionGuard {
	return &SubmissionGuard{client: client}
}

// Acquire atomically claims the slot for this exact submission. It returns
// false when an identical submission is already in flight or just completed.
func (g *SubmissionGuard) Acquire(ctx context.Context, sid, action string, payload []byte) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(sid, action, payload), "1", dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dedup acquire: %w", err)
	}
	return ok, nil
}

// Release frees the slot early so a deliberate retry after a failure is not
// blocked for the full TTL.
func (g *SubmissionGuard) Release(ctx context.Context, sid, action string, payload []byte) error {
	return g.client.Del(ctx, g.key(sid, action, payload)).Err()
}

func (g *SubmissionGuard) key(sid, action string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("dedup:%s:%s:%s", sid, action, hex.EncodeToString(sum[:8]))
}
