package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/invoiceflow/console/internal/core/domain"
)

// SessionKV stores viewer sessions as JSON blobs in Redis.
// Key format: session:<session_id>
type SessionKV struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionKV wraps the given Redis client. ttl bounds how long an idle
// session survives; each Put refreshes it.
func NewSessionKV(client *redis.Client, ttl time.Duration) *SessionKV {
	return &SessionKV{client: client, ttl: ttl}
}

// Get loads a session, returning domain.ErrSessionNotFound when the key
// is missing or expired.
func (s *SessionKV) Get(ctx context.Context, sid string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &sess, nil
}

// Put stores the session and refreshes its TTL.
func (s *SessionKV) Put(ctx context.Context, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

// Delete removes the session entirely.
func (s *SessionKV) Delete(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, s.key(sid)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *SessionKV) key(sid string) string {
	return "session:" + sid
}
