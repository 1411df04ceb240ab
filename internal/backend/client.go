// Package backend is the HTTP client for the remote InvoiceFlow API. It
// serializes JSON bodies, attaches the right bearer token per role, unwraps
// the {data}/{error} envelope, and records call metrics.
//
// Every call is single-shot by design: no retry, no backoff, no timeout
// escalation beyond the configured per-call timeout. The dashboards are
// best-effort renderers; the caller's error handling decides what a failure
// means.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoiceflow/console/internal/api/metrics"
	"github.com/invoiceflow/console/internal/core/domain"
	"github.com/invoiceflow/console/internal/core/ports"
)

// TokenSource resolves the stored token for a viewer and role. Implemented
// by the session store; an explicit token on a call bypasses it.
type TokenSource interface {
	Token(ctx context.Context, sid, role string) (string, error)
}

// Client talks to the remote API.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	log    zerolog.Logger
}

// NewClient builds a Client for the given base URL. timeout bounds each
// individual call.
func NewClient(base string, timeout time.Duration, tokens TokenSource, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
		log:    log,
	}
}

// envelope is the backend's uniform response shape.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

// call issues one request and decodes the envelope's data field into out
// (skipped when out is nil). The explicit token wins over the role lookup.
func (c *Client) call(ctx context.Context, op, method, path string, body any, sid, role, token string, out any) error {
	start := time.Now()
	err := c.doCall(ctx, method, path, body, sid, role, token, out)
	metrics.BackendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		if _, isAPI := AsAPIError(err); isAPI {
			outcome = "api_error"
		} else {
			outcome = "transport_error"
		}
	}
	metrics.BackendRequestsTotal.WithLabelValues(op, outcome).Inc()
	return err
}

func (c *Client) doCall(ctx context.Context, method, path string, body any, sid, role, token string, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token == "" && c.tokens != nil {
		token, err = c.tokens.Token(ctx, sid, role)
		if err != nil {
			return fmt.Errorf("resolve token: %w", err)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	var env envelope
	if jsonErr := json.Unmarshal(raw, &env); jsonErr != nil {
		env = envelope{Error: &APIError{Code: CodeUnknown, Message: "invalid JSON"}}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := env.Error
		if apiErr == nil {
			apiErr = &APIError{Code: CodeUnknown, Message: http.StatusText(resp.StatusCode)}
		}
		apiErr.Status = resp.StatusCode
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("code", apiErr.Code).
			Msg("backend call failed")
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}

// ── Auth endpoints ────────────────────────────────────────────────────────────

func (c *Client) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	var result ports.LoginResult
	if err := c.call(ctx, "auth.login", http.MethodPost, "/auth/login", in, "", "", "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Register(ctx context.Context, in ports.RegisterInput) error {
	return c.call(ctx, "auth.register", http.MethodPost, "/auth/register", in, "", "", "", nil)
}

// Me verifies a token against the identity endpoint.
func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	if err := c.call(ctx, "auth.me", http.MethodGet, "/auth/me", nil, "", "", token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ── Invoice endpoints ─────────────────────────────────────────────────────────

func (c *Client) ListInvoices(ctx context.Context, sid, role string, q ports.InvoiceQuery) ([]domain.Invoice, error) {
	params := url.Values{}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}
	path := "/invoices"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var invoices []domain.Invoice
	if err := c.call(ctx, "invoices.list", http.MethodGet, path, nil, sid, role, "", &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (c *Client) CreateInvoice(ctx context.Context, sid, token string, draft ports.InvoiceDraft) (*domain.Invoice, error) {
	var created domain.Invoice
	if err := c.call(ctx, "invoices.create", http.MethodPost, "/invoices", draft, sid, domain.RoleSME, token, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) SubmitInvoice(ctx context.Context, sid, token, invoiceID string) error {
	path := "/invoices/" + url.PathEscape(invoiceID) + "/submit"
	return c.call(ctx, "invoices.submit", http.MethodPost, path, nil, sid, domain.RoleSME, token, nil)
}

func (c *Client) FundInvoice(ctx context.Context, sid, token, invoiceID string, in ports.FundInput) error {
	path := "/invoices/" + url.PathEscape(invoiceID) + "/fund"
	return c.call(ctx, "invoices.fund", http.MethodPost, path, in, sid, domain.RoleInvestor, token, nil)
}

// ── Funding endpoints ─────────────────────────────────────────────────────────

func (c *Client) ListMyFundings(ctx context.Context, sid, role string, q ports.PageQuery) ([]domain.Funding, error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}
	path := "/me/fundings"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var fundings []domain.Funding
	if err := c.call(ctx, "fundings.list", http.MethodGet, path, nil, sid, role, "", &fundings); err != nil {
		return nil, err
	}
	return fundings, nil
}

// ── Admin endpoints ───────────────────────────────────────────────────────────

func (c *Client) AdminDashboardMetrics(ctx context.Context, sid string) (*ports.AdminMetrics, error) {
	var m ports.AdminMetrics
	if err := c.call(ctx, "admin.metrics", http.MethodGet, "/admin/dashboard/metrics", nil, sid, domain.RoleAdmin, "", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) ApproveInvoice(ctx context.Context, sid, token, invoiceID string, in ports.ApproveInput) (*domain.Invoice, error) {
	path := "/admin/invoices/" + url.PathEscape(invoiceID) + "/approve"
	var approved domain.Invoice
	if err := c.call(ctx, "admin.approve", http.MethodPost, path, in, sid, domain.RoleAdmin, token, &approved); err != nil {
		return nil, err
	}
	return &approved, nil
}

func (c *Client) MarkInvoicePaid(ctx context.Context, sid, token, invoiceID string, amount float64) (*domain.Invoice, error) {
	path := "/admin/invoices/" + url.PathEscape(invoiceID) + "/mark-paid"
	body := map[string]float64{"amount": amount}
	var updated domain.Invoice
	if err := c.call(ctx, "admin.mark_paid", http.MethodPost, path, body, sid, domain.RoleAdmin, token, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
