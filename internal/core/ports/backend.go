package ports

import (
	"context"

	"github.com/invoiceflow/console/internal/core/domain"
)

// InvoiceQuery narrows a GET /invoices read. Zero values are omitted from
// the query string.
type InvoiceQuery struct {
	Status   string
	Page     int
	PageSize int
}

// PageQuery narrows a paginated read without a status filter.
type PageQuery struct {
	Page     int
	PageSize int
}

// LoginInput carries credentials through to POST /auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput carries a new account through to POST /auth/register.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResult is the /auth/login response payload.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

// InvoiceDraft is the invoice-creation body. The backend owns everything
// else on the record.
type InvoiceDraft struct {
	Title         string   `json:"title"`
	InvoiceNumber string   `json:"invoice_number"`
	Amount        float64  `json:"amount"`
	Currency      string   `json:"currency"`
	TermMonths    int      `json:"term_months"`
	APRPercent    float64  `json:"apr_percent"`
	DueDate       string   `json:"due_date"`
	FundingTarget float64  `json:"funding_target"`
	EmergencyLane bool     `json:"emergency_lane"`
	Tags          []string `json:"tags"`
}

// FundInput is the investor's funding commitment body.
type FundInput struct {
	Amount     float64 `json:"amount"`
	APRPercent float64 `json:"apr_percent"`
	TermMonths int     `json:"term_months"`
}

// ApproveInput is the admin approval body.
type ApproveInput struct {
	RiskTier   string  `json:"risk_tier"`
	APRPercent float64 `json:"apr_percent"`
}

// StatMetric, RiskDistribution and FundingVolume mirror the backend's
// /admin/dashboard/metrics payload.
type StatMetric struct {
	Label string `json:"label"`
	Value any    `json:"value"`
	Delta string `json:"delta"`
	Icon  string `json:"icon"`
	Tone  string `json:"tone"`
}

type RiskDistribution struct {
	Tier  string  `json:"tier"`
	Ratio float64 `json:"ratio"`
}

type FundingVolume struct {
	TotalAmount float64 `json:"total_amount"`
	ChangePct   float64 `json:"change_pct"`
}

type AdminMetrics struct {
	Stats            []StatMetric       `json:"stats"`
	FundingVolume    FundingVolume      `json:"funding_volume"`
	RiskDistribution []RiskDistribution `json:"risk_distribution"`
}

// Backend is the gateway's view of the remote InvoiceFlow API. Every call
// is single-shot: no retry, no backoff; callers decide what a failure
// means. Role selects which session token rides along; sid identifies the
// viewer whose session holds the tokens.
type Backend interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Register(ctx context.Context, in RegisterInput) error
	// Me verifies the given token against /auth/me.
	Me(ctx context.Context, token string) (*domain.User, error)

	ListInvoices(ctx context.Context, sid, role string, q InvoiceQuery) ([]domain.Invoice, error)
	CreateInvoice(ctx context.Context, sid, token string, draft InvoiceDraft) (*domain.Invoice, error)
	SubmitInvoice(ctx context.Context, sid, token, invoiceID string) error
	FundInvoice(ctx context.Context, sid, token, invoiceID string, in FundInput) error

	ListMyFundings(ctx context.Context, sid, role string, q PageQuery) ([]domain.Funding, error)

	AdminDashboardMetrics(ctx context.Context, sid string) (*AdminMetrics, error)
	ApproveInvoice(ctx context.Context, sid, token, invoiceID string, in ApproveInput) (*domain.Invoice, error)
	MarkInvoicePaid(ctx context.Context, sid, token, invoiceID string, amount float64) (*domain.Invoice, error)
}
