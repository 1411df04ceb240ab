package domain

// Session is the per-viewer client state the gateway persists: bearer
// tokens (one global "last used" plus one per role), the cached user
// profile, the selected UI language, and the simulated wallet balance.
//
// Tokens are opaque strings; the gateway applies no TTL of its own;
// staleness is only ever discovered by a failed authenticated call.
type Session struct {
	ID            string            `json:"id"`
	Token         string            `json:"token,omitempty"`
	RoleTokens    map[string]string `json:"role_tokens,omitempty"`
	User          *User             `json:"user,omitempty"`
	Language      string            `json:"language,omitempty"`
	WalletBalance float64           `json:"wallet_balance,omitempty"`
}

// TokenForRole resolves the token to attach for a role: the role-scoped
// token when present, else the last-used global token, else empty. Absence
// is a valid result, not an error.
func (s *Session) TokenForRole(role string) string {
	if s == nil {
		return ""
	}
	if role != "" {
		if t, ok := s.RoleTokens[role]; ok && t != "" {
			return t
		}
	}
	return s.Token
}

// EventKind tags a broadcast from the session layer.
type EventKind string

const (
	EventAuthChanged     EventKind = "auth-changed"
	EventLanguageChanged EventKind = "language-changed"
)

// Event is delivered to broadcaster subscribers whenever a session mutates.
type Event struct {
	Kind      EventKind
	SessionID string
}
