package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleInvestor = "investor"
	RoleSME      = "sme"
)

// KnownRole reports whether role is one of the three marketplace roles.
func KnownRole(role string) bool {
	return role == RoleAdmin || role == RoleInvestor || role == RoleSME
}

// DefaultRoute returns the landing route for a role. Unknown roles land on
// the public page.
func DefaultRoute(role string) string {
	switch role {
	case RoleAdmin:
		return "/admin"
	case RoleInvestor:
		return "/investor/market"
	case RoleSME:
		return "/sme/marketplace"
	default:
		return "/"
	}
}

// User is the backend-owned profile cached per viewer session. The gateway
// never mutates it locally; it is refreshed from /auth/me or replaced by a
// login/register response.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
