package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// CodeUnknown is synthesized when the backend's error body was not valid
// JSON (or was missing entirely).
const CodeUnknown = "UNKNOWN"

// APIError is a non-2xx response from the remote API: the HTTP status plus
// the parsed error payload. Callers branch on the status: 401/403 mean the
// credential is bad, anything else is a validation or business failure whose
// message is shown to the user verbatim.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d %s: %s", e.Status, e.Code, e.Message)
}

// AsAPIError unwraps err into an APIError when it is one.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsAuthError reports whether err is a 401/403 from the API. Transport
// failures are not auth errors: a dead network must never log a viewer out.
func IsAuthError(err error) bool {
	ae, ok := AsAPIError(err)
	return ok && (ae.Status == http.StatusUnauthorized || ae.Status == http.StatusForbidden)
}

// Message extracts the user-facing message from any backend failure.
func Message(err error, fallback string) string {
	if ae, ok := AsAPIError(err); ok && ae.Message != "" {
		return ae.Message
	}
	return fallback
}
