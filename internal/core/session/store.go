// Package session implements the persistent per-viewer session store and
// the event hub that tells open views when authentication or language
// changed. The backing KV is the single source of truth; the store keeps
// nothing in memory between calls.
package session

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/invoiceflow/console/internal/core/domain"
	"github.com/invoiceflow/console/internal/core/ports"
)

// Store wraps a SessionKV and broadcasts on every mutation.
type Store struct {
	kv  ports.SessionKV
	hub ports.Broadcaster
	log zerolog.Logger
}

// NewStore builds a Store over the given KV and broadcaster.
func NewStore(kv ports.SessionKV, hub ports.Broadcaster, log zerolog.Logger) *Store {
	return &Store{kv: kv, hub: hub, log: log}
}

// load returns the stored session or a fresh empty one for the ID.
func (s *Store) load(ctx context.Context, sid string) (*domain.Session, error) {
	sess, err := s.kv.Get(ctx, sid)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return &domain.Session{ID: sid}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}
	return sess, nil
}

// Token resolves a token per the role-first policy. A missing session or
// missing token is an empty result, not an error.
func (s *Store) Token(ctx context.Context, sid, role string) (string, error) {
	sess, err := s.load(ctx, sid)
	if err != nil {
		return "", err
	}
	return sess.TokenForRole(role), nil
}

// SetToken writes the global token plus the role-scoped token and
// broadcasts the auth change. Empty tokens are ignored.
func (s *Store) SetToken(ctx context.Context, sid, token, role string) error {
	if token == "" {
		return nil
	}
	sess, err := s.load(ctx, sid)
	if err != nil {
		return err
	}
	sess.Token = token
	if role != "" {
		if sess.RoleTokens == nil {
			sess.RoleTokens = make(map[string]string, 3)
		}
		sess.RoleTokens[role] = token
	}
	if err := s.kv.Put(ctx, sess); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	s.hub.Publish(domain.Event{Kind: domain.EventAuthChanged, SessionID: sid})
	return nil
}

// User returns the cached profile.
func (s *Store) User(ctx context.Context, sid string) (*domain.User, error) {
	sess, err := s.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if sess.User == nil {
		return nil, domain.ErrUserNotCached
	}
	return sess.User, nil
}

// SetUser caches the profile. A structurally identical write is a no-op so
// redundant verification refreshes never re-broadcast.
func (s *Store) SetUser(ctx context.Context, sid string, user *domain.User, notify bool) error {
	if user == nil {
		return nil
	}
	sess, err := s.load(ctx, sid)
	if err != nil {
		return err
	}
	if sess.User != nil && reflect.DeepEqual(*sess.User, *user) {
		return nil
	}
	u := *user
	sess.User = &u
	if err := s.kv.Put(ctx, sess); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	if notify {
		s.hub.Publish(domain.Event{Kind: domain.EventAuthChanged, SessionID: sid})
	}
	return nil
}

// Clear removes every token and the cached user, keeping language and the
// simulated wallet balance, then broadcasts. Clearing twice leaves the same
// fully-cleared state as clearing once.
func (s *Store) Clear(ctx context.Context, sid string) error {
	sess, err := s.load(ctx, sid)
	if err != nil {
		return err
	}
	sess.Token = ""
	sess.RoleTokens = nil
	sess.User = nil
	if err := s.kv.Put(ctx, sess); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	s.hub.Publish(domain.Event{Kind: domain.EventAuthChanged, SessionID: sid})
	return nil
}

// Language returns the viewer's stored language ("" when never set).
func (s *Store) Language(ctx context.Context, sid string) (string, error) {
	sess, err := s.load(ctx, sid)
	if err != nil {
		return "", err
	}
	return sess.Language, nil
}

// SetLanguage stores the language and broadcasts the change.
func (s *Store) SetLanguage(ctx context.Context, sid, lang string) error {
	sess, err := s.load(ctx, sid)
	if err != nil {
		return err
	}
	if sess.Language == lang {
		return nil
	}
	sess.Language = lang
	if err := s.kv.Put(ctx, sess); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	s.hub.Publish(domain.Event{Kind: domain.EventLanguageChanged, SessionID: sid})
	return nil
}

// WalletBalance returns the simulated investor balance.
func (s *Store) WalletBalance(ctx context.Context, sid string) (float64, error) {
	sess, err := s.load(ctx, sid)
	if err != nil {
		return 0, err
	}
	return sess.WalletBalance, nil
}

// SetWalletBalance stores the simulated balance. No broadcast: the balance
// is a demo artifact with no backend counterpart and no cross-view signal.
func (s *Store) SetWalletBalance(ctx context.Context, sid string, balance float64) error {
	sess, err := s.load(ctx, sid)
	if err != nil {
		return err
	}
	sess.WalletBalance = balance
	if err := s.kv.Put(ctx, sess); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}
