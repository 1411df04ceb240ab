// Package api wires the echo router, its middleware, and the central error
// mapping for the console gateway.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/invoiceflow/console/internal/backend"
	"github.com/invoiceflow/console/internal/core/domain"
)

// errorBody mirrors the remote API's error envelope so gateway clients
// handle both the same way.
type errorBody struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Role         string `json:"role,omitempty"`
	LoginAllowed bool   `json:"login_allowed,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors and credential challenges to deterministic codes.
//   - Passes remote API errors through with their original status.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		_ = c.JSON(status, errorResponse{Error: body})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorBody) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorBody{Code: "HTTP_ERROR", Message: fmt.Sprintf("%v", he.Message)}
	}

	// A credential challenge tells the client which modal flow to run.
	if cr, ok := domain.IsCredentialRequired(err); ok {
		return http.StatusUnauthorized, errorBody{
			Code:         "CREDENTIAL_REQUIRED",
			Message:      cr.Error(),
			Role:         cr.Role,
			LoginAllowed: cr.LoginAllowed,
		}
	}

	// Client-side form checks render inline; the message is the payload.
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorBody{Code: "VALIDATION", Message: ve.Message}
	}

	// Remote API failures keep their status, code, and message verbatim.
	if ae, ok := backend.AsAPIError(err); ok {
		return ae.Status, errorBody{Code: ae.Code, Message: ae.Message}
	}

	switch {
	case errors.Is(err, domain.ErrDuplicateSubmission):
		return http.StatusConflict, errorBody{Code: "DUPLICATE_SUBMISSION", Message: err.Error()}
	case errors.Is(err, domain.ErrAdminSelfRegister):
		return http.StatusForbidden, errorBody{Code: "ADMIN_SELF_REGISTER", Message: err.Error()}
	case errors.Is(err, domain.ErrRoleMismatch):
		return http.StatusForbidden, errorBody{Code: "ROLE_MISMATCH", Message: err.Error()}
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, errorBody{Code: "SESSION_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrUserNotCached):
		return http.StatusNotFound, errorBody{Code: "USER_NOT_CACHED", Message: err.Error()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorBody{Code: "INTERNAL", Message: "internal server error"}
}
