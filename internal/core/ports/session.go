package ports

import (
	"context"

	"github.com/invoiceflow/console/internal/core/domain"
)

// SessionKV is the persistence abstraction under the session store. Redis
// in production, a map in tests. Get returns domain.ErrSessionNotFound for
// unknown IDs.
type SessionKV interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Put(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}

// SessionStore is the injectable session context handed to every view
// controller. Storage is the single source of truth: no caller may cache a
// token in memory past an auth-change broadcast.
type SessionStore interface {
	// Token resolves the token for a role: role-scoped first, then the
	// last-used global token, then empty. Absence is a valid result.
	Token(ctx context.Context, sid, role string) (string, error)
	// SetToken writes the global token and, when role is non-empty, the
	// role-scoped token. Broadcasts an auth-changed event.
	SetToken(ctx context.Context, sid, token, role string) error
	// User returns the cached profile, or domain.ErrUserNotCached.
	User(ctx context.Context, sid string) (*domain.User, error)
	// SetUser caches the profile. Writing a structurally identical value is
	// a no-op; notify=false suppresses the broadcast (used by silent
	// verification refreshes to avoid signal loops).
	SetUser(ctx context.Context, sid string, user *domain.User, notify bool) error
	// Clear removes every token and the cached user, then broadcasts.
	// Idempotent: clearing an absent session is not an error.
	Clear(ctx context.Context, sid string) error

	Language(ctx context.Context, sid string) (string, error)
	SetLanguage(ctx context.Context, sid, lang string) error

	// WalletBalance is the locally simulated investor balance. It has no
	// backend counterpart.
	WalletBalance(ctx context.Context, sid string) (float64, error)
	SetWalletBalance(ctx context.Context, sid string, balance float64) error
}

// Broadcaster fans session events out to subscribed views. Subscribe
// returns the event channel and a cancel func that must be called on view
// teardown.
type Broadcaster interface {
	Publish(event domain.Event)
	Subscribe(kind domain.EventKind) (<-chan domain.Event, func())
}
