// Package handler contains the echo handlers for the console gateway.
// Responses use the same {data}/{error} envelope as the remote API.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/invoiceflow/console/internal/api/middleware"
	"github.com/invoiceflow/console/internal/core/domain"
	"github.com/invoiceflow/console/internal/core/i18n"
	"github.com/invoiceflow/console/internal/core/ports"
)

// dataResponse is the success envelope.
type dataResponse struct {
	Data any `json:"data"`
}

type SessionHandler struct {
	auth     ports.AuthService
	sessions ports.SessionStore
}

func NewSessionHandler(auth ports.AuthService, sessions ports.SessionStore) *SessionHandler {
	return &SessionHandler{auth: auth, sessions: sessions}
}

type tokenRequest struct {
	Role  string `json:"role"  validate:"required,oneof=admin investor sme"`
	Token string `json:"token" validate:"required"`
}

type loginRequest struct {
	Role     string `json:"role"     validate:"required,oneof=investor sme"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`
	Register bool   `json:"register"`
}

type languageRequest struct {
	Language string `json:"language" validate:"required,oneof=en vi"`
}

type sessionState struct {
	State         string       `json:"state"`
	User          *domain.User `json:"user,omitempty"`
	Language      string       `json:"language"`
	WalletBalance float64      `json:"wallet_balance"`
	Route         string       `json:"route"`
}

// Token stores a manually pasted role token.
//
// @Summary      Paste a role token
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRequest  true  "Role and bearer token"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /session/token [post]
func (h *SessionHandler) Token(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sid := middleware.SessionID(c)
	creds := ports.Credentials{PastedToken: req.Token}
	if _, err := h.auth.ResolveToken(c.Request().Context(), sid, req.Role, creds); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dataResponse{Data: map[string]string{
		"role":  req.Role,
		"route": domain.DefaultRoute(req.Role),
	}})
}

// Login authenticates (or registers) against the remote API and stores the
// resulting token in the viewer's session.
//
// @Summary      Login for a role
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  dataResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	sid := middleware.SessionID(c)
	creds := ports.Credentials{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Register: req.Register,
	}
	if _, err := h.auth.ResolveToken(ctx, sid, req.Role, creds); err != nil {
		return err
	}

	user, err := h.sessions.User(ctx, sid)
	if err != nil {
		user = nil
	}
	return c.JSON(http.StatusOK, dataResponse{Data: map[string]any{
		"user":  user,
		"route": domain.DefaultRoute(req.Role),
	}})
}

// Logout tears the session down.
//
// @Summary      Logout
// @Tags         session
// @Success      204
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), middleware.SessionID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// State reports the viewer's verified session state.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  dataResponse
// @Router       /session [get]
func (h *SessionHandler) State(c echo.Context) error {
	ctx := c.Request().Context()
	sid := middleware.SessionID(c)

	v := h.auth.Verify(ctx, sid)
	lang, err := h.sessions.Language(ctx, sid)
	if err != nil {
		lang = ""
	}
	balance, err := h.sessions.WalletBalance(ctx, sid)
	if err != nil {
		balance = 0
	}

	route := "/"
	if v.User != nil {
		route = domain.DefaultRoute(v.User.Role)
	}
	return c.JSON(http.StatusOK, dataResponse{Data: sessionState{
		State:         stateLabel(v.State),
		User:          v.User,
		Language:      i18n.Normalize(lang),
		WalletBalance: balance,
		Route:         route,
	}})
}

// Language stores the viewer's UI language.
//
// @Summary      Switch language
// @Tags         session
// @Accept       json
// @Success      204
// @Failure      400  {object}  map[string]any
// @Router       /session/language [post]
func (h *SessionHandler) Language(c echo.Context) error {
	var req languageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.sessions.SetLanguage(c.Request().Context(), middleware.SessionID(c), req.Language); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func stateLabel(state ports.VerificationState) string {
	switch state {
	case ports.Verified:
		return "verified"
	case ports.Unauthorized:
		return "unauthorized"
	case ports.TransientFailure:
		return "transient_failure"
	default:
		return "anonymous"
	}
}
