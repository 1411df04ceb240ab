// Package service holds the gateway's application logic: credential
// resolution, dashboard view assembly, and the mutating invoice flows.
package service

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/invoiceflow/console/internal/api/metrics"
	"github.com/invoiceflow/console/internal/backend"
	"github.com/invoiceflow/console/internal/core/domain"
	"github.com/invoiceflow/console/internal/core/ports"
)

// AuthService resolves role tokens and reconciles cached identity against
// the backend. It owns the only code path that may clear a session for
// auth reasons.
type AuthService struct {
	sessions ports.SessionStore
	api      ports.Backend
	log      zerolog.Logger
}

// NewAuthService builds an AuthService.
func NewAuthService(sessions ports.SessionStore, api ports.Backend, log zerolog.Logger) *AuthService {
	return &AuthService{sessions: sessions, api: api, log: log}
}

// ResolveToken walks the credential chain for a role:
//
//  1. a stored token (role-scoped, then global) is used as-is;
//  2. a pasted token is checked for an embedded role claim and stored;
//  3. email/password runs /auth/login;
//  4. when login is rejected and registration was authorized, /auth/register
//     then a login retry.
//
// Admin never reaches steps 3-4: admin tokens are provisioned out of band.
// No credentials at all yields a *domain.CredentialRequiredError challenge.
func (s *AuthService) ResolveToken(ctx context.Context, sid, role string, creds ports.Credentials) (string, error) {
	stored, err := s.sessions.Token(ctx, sid, role)
	if err != nil {
		return "", err
	}
	if stored != "" {
		metrics.CredentialResolutionsTotal.WithLabelValues("stored").Inc()
		return stored, nil
	}

	if creds.PastedToken != "" {
		if claim := roleClaim(creds.PastedToken); claim != "" && claim != role {
			metrics.CredentialResolutionsTotal.WithLabelValues("denied").Inc()
			return "", domain.ErrRoleMismatch
		}
		if err := s.sessions.SetToken(ctx, sid, creds.PastedToken, role); err != nil {
			return "", err
		}
		metrics.CredentialResolutionsTotal.WithLabelValues("pasted").Inc()
		return creds.PastedToken, nil
	}

	if role == domain.RoleAdmin {
		if creds.Empty() {
			metrics.CredentialResolutionsTotal.WithLabelValues("challenge").Inc()
			return "", &domain.CredentialRequiredError{Role: role, LoginAllowed: false}
		}
		metrics.CredentialResolutionsTotal.WithLabelValues("denied").Inc()
		return "", domain.ErrAdminSelfRegister
	}

	if creds.Empty() {
		metrics.CredentialResolutionsTotal.WithLabelValues("challenge").Inc()
		return "", &domain.CredentialRequiredError{Role: role, LoginAllowed: true}
	}

	result, err := s.api.Login(ctx, ports.LoginInput{Email: creds.Email, Password: creds.Password})
	if err != nil && backend.IsAuthError(err) && creds.Register {
		reg := ports.RegisterInput{Name: creds.Name, Email: creds.Email, Password: creds.Password, Role: role}
		if regErr := s.api.Register(ctx, reg); regErr != nil {
			metrics.CredentialResolutionsTotal.WithLabelValues("denied").Inc()
			return "", regErr
		}
		result, err = s.api.Login(ctx, ports.LoginInput{Email: creds.Email, Password: creds.Password})
		if err == nil {
			metrics.CredentialResolutionsTotal.WithLabelValues("registered").Inc()
			return s.adopt(ctx, sid, role, result)
		}
	}
	if err != nil {
		metrics.CredentialResolutionsTotal.WithLabelValues("denied").Inc()
		return "", err
	}

	metrics.CredentialResolutionsTotal.WithLabelValues("login").Inc()
	return s.adopt(ctx, sid, role, result)
}

// adopt persists a fresh login result into the session.
func (s *AuthService) adopt(ctx context.Context, sid, role string, result *ports.LoginResult) (string, error) {
	if result.User != nil && result.User.Role != role {
		s.log.Warn().
			Str("requested", role).
			Str("actual", result.User.Role).
			Msg("account role differs from requested role")
		return "", domain.ErrRoleMismatch
	}
	if err := s.sessions.SetToken(ctx, sid, result.AccessToken, role); err != nil {
		return "", err
	}
	if err := s.sessions.SetUser(ctx, sid, result.User, true); err != nil {
		return "", err
	}
	return result.AccessToken, nil
}

// Verify reconciles the cached user against /auth/me. Only a definitive
// 401/403 clears the session; transport failures keep the viewer signed in
// on the cached profile.
func (s *AuthService) Verify(ctx context.Context, sid string) ports.Verification {
	token, err := s.sessions.Token(ctx, sid, "")
	if err != nil || token == "" {
		return ports.Verification{State: ports.Anonymous}
	}

	user, err := s.api.Me(ctx, token)
	if err == nil {
		// Silent refresh: an unchanged profile must not ripple through
		// subscribed views.
		if err := s.sessions.SetUser(ctx, sid, user, false); err != nil {
			s.log.Error().Err(err).Str("sid", sid).Msg("caching verified user failed")
		}
		return ports.Verification{State: ports.Verified, User: user}
	}

	if backend.IsAuthError(err) {
		if clearErr := s.sessions.Clear(ctx, sid); clearErr != nil {
			s.log.Error().Err(clearErr).Str("sid", sid).Msg("clearing unauthorized session failed")
		}
		metrics.SessionsClearedTotal.WithLabelValues("unauthorized").Inc()
		return ports.Verification{State: ports.Unauthorized}
	}

	cached, cacheErr := s.sessions.User(ctx, sid)
	if errors.Is(cacheErr, domain.ErrUserNotCached) {
		cached = nil
	}
	return ports.Verification{State: ports.TransientFailure, User: cached}
}

// Logout tears the session down. Idempotent.
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if err := s.sessions.Clear(ctx, sid); err != nil {
		return err
	}
	metrics.SessionsClearedTotal.WithLabelValues("logout").Inc()
	return nil
}

// roleClaim extracts the "role" claim from a pasted token without verifying
// the signature. Verification is the backend's job; the claim is only a
// local hint to catch a token pasted into the wrong modal.
func roleClaim(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}
