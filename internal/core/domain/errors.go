package domain

import "errors"

var ErrSessionNotFound = errors.New("session not found")
var ErrUserNotCached = errors.New("no cached user")
var ErrAdminSelfRegister = errors.New("admin accounts cannot self-register")
var ErrRoleMismatch = errors.New("token role does not match requested role")
var ErrDuplicateSubmission = errors.New("duplicate submission")
var ErrInvoiceNotPayable = errors.New("invoice is not funded yet")
var ErrInvoiceNotDraft = errors.New("invoice is already submitted or approved")

// CredentialRequiredError is returned when an action needs a token for a
// role and the session holds none. The UI shell turns it into its credential
// modal; the core never prompts.
type CredentialRequiredError struct {
	Role string
	// LoginAllowed is false for admin, whose tokens are provisioned out of
	// band and may only be pasted.
	LoginAllowed bool
}

func (e *CredentialRequiredError) Error() string {
	return "credential required for role " + e.Role
}

// IsCredentialRequired reports whether err is a credential challenge and
// returns it when so.
func IsCredentialRequired(err error) (*CredentialRequiredError, bool) {
	var cr *CredentialRequiredError
	if errors.As(err, &cr) {
		return cr, true
	}
	return nil, false
}

// ValidationError carries a user-facing message from a client-side
// pre-submission check. Rendered inline next to the triggering control.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid builds a ValidationError.
func Invalid(message string) error { return &ValidationError{Message: message} }
