package ports

import (
	"context"

	"github.com/invoiceflow/console/internal/core/domain"
)

// Credentials is what the UI shell gathered for a credential challenge.
// All fields optional; an empty value means "not provided".
type Credentials struct {
	PastedToken string
	Email       string
	Password    string
	Name        string
	// Register authorizes falling back to /auth/register when login fails.
	Register bool
}

// Empty reports whether no credential material was provided at all.
func (c Credentials) Empty() bool {
	return c.PastedToken == "" && c.Email == "" && c.Password == ""
}

// VerificationState tags the outcome of a session hydration check.
type VerificationState int

const (
	// Anonymous: no token present, no network call made.
	Anonymous VerificationState = iota
	// Verified: /auth/me confirmed the token; User is authoritative.
	Verified
	// Unauthorized: 401/403 from verification; the session was cleared.
	Unauthorized
	// TransientFailure: network/5xx; the previous state stands and User
	// carries the stale-but-present cached profile when there is one.
	TransientFailure
)

// Verification is the tagged result of a hydration check. Only
// Unauthorized clears the session.
type Verification struct {
	State VerificationState
	User  *domain.User
}

// AuthService gates every role-scoped action and drives route guarding.
type AuthService interface {
	// ResolveToken returns a usable token for the role, walking the chain
	// stored → pasted → login → register+retry. With no stored token and
	// empty creds it fails with *domain.CredentialRequiredError so the UI
	// shell can run its modal flow; admin fails with
	// domain.ErrAdminSelfRegister instead of offering login.
	ResolveToken(ctx context.Context, sid, role string, creds Credentials) (string, error)
	// Verify reconciles the cached user against /auth/me.
	Verify(ctx context.Context, sid string) Verification
	// Logout tears the whole session down. Idempotent.
	Logout(ctx context.Context, sid string) error
}
