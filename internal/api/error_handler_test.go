package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/invoiceflow/console/internal/backend"
	"github.com/invoiceflow/console/internal/core/domain"
)

func handle(t *testing.T, err error) (int, errorBody) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, body.Error
}

func TestErrorHandler_CredentialChallenge(t *testing.T) {
	code, body := handle(t, &domain.CredentialRequiredError{Role: domain.RoleInvestor, LoginAllowed: true})

	if code != http.StatusUnauthorized || body.Code != "CREDENTIAL_REQUIRED" {
		t.Fatalf("code=%d body=%+v", code, body)
	}
	if body.Role != domain.RoleInvestor || !body.LoginAllowed {
		t.Fatalf("body = %+v", body)
	}
}

func TestErrorHandler_AdminChallengeWithoutLogin(t *testing.T) {
	_, body := handle(t, &domain.CredentialRequiredError{Role: domain.RoleAdmin})
	if body.LoginAllowed {
		t.Fatalf("admin challenge must not offer login: %+v", body)
	}
}

func TestErrorHandler_ValidationIs400(t *testing.T) {
	code, body := handle(t, domain.Invalid("funding target must be at least invoice amount"))

	if code != http.StatusBadRequest || body.Code != "VALIDATION" {
		t.Fatalf("code=%d body=%+v", code, body)
	}
	if body.Message != "funding target must be at least invoice amount" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestErrorHandler_RemoteErrorPassesThrough(t *testing.T) {
	code, body := handle(t, &backend.APIError{
		Status: http.StatusUnprocessableEntity, Code: "INVALID_STATUS", Message: "not a draft",
	})

	if code != http.StatusUnprocessableEntity || body.Code != "INVALID_STATUS" || body.Message != "not a draft" {
		t.Fatalf("code=%d body=%+v", code, body)
	}
}

func TestErrorHandler_DuplicateSubmissionIs409(t *testing.T) {
	code, body := handle(t, domain.ErrDuplicateSubmission)
	if code != http.StatusConflict || body.Code != "DUPLICATE_SUBMISSION" {
		t.Fatalf("code=%d body=%+v", code, body)
	}
}

func TestErrorHandler_AdminSelfRegisterIs403(t *testing.T) {
	code, body := handle(t, domain.ErrAdminSelfRegister)
	if code != http.StatusForbidden || body.Code != "ADMIN_SELF_REGISTER" {
		t.Fatalf("code=%d body=%+v", code, body)
	}
}

func TestErrorHandler_UnknownErrorIsOpaque500(t *testing.T) {
	code, body := handle(t, errors.New("pq: connection reset"))
	if code != http.StatusInternalServerError || body.Message != "internal server error" {
		t.Fatalf("internal details must not leak: code=%d body=%+v", code, body)
	}
}
