package ports

import "context"

// View models are render-ready: amounts, percentages, and dates arrive
// pre-formatted in the viewer's language. They are recomputed from scratch
// on every request and never treated as authoritative: a failed batch
// yields the explicit empty view, not stale numbers.

// StatCard is one tile of a dashboard's top row.
type StatCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta"`
	Icon  string `json:"icon"`
	Tone  string `json:"tone"`
}

// PipelineDeal is one row of the funding pipeline list.
type PipelineDeal struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Status string `json:"status"`
	Tone   string `json:"tone"`
}

// SnapshotItem is one market-snapshot figure on the landing page.
type SnapshotItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Note  string `json:"note"`
}

// HomeView is the public landing page's data.
type HomeView struct {
	Stats    []StatCard     `json:"stats"`
	Pipeline []PipelineDeal `json:"pipeline"`
	Snapshot []SnapshotItem `json:"snapshot"`
}

// ApprovalItem is one SME request awaiting admin review.
type ApprovalItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Amount    string  `json:"amount"`
	Term      string  `json:"term"`
	Risk      string  `json:"risk"`
	APR       float64 `json:"apr,omitempty"`
	Submitted string  `json:"submitted"`
}

// RequestItem is one row of the admin's live pipeline.
type RequestItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Region      string  `json:"region"`
	Amount      string  `json:"amount"`
	AmountValue float64 `json:"amount_value"`
	Status      string  `json:"status"`
	StatusLabel string  `json:"status_label"`
	Owner       string  `json:"owner"`
}

// RiskBar is one tier of the risk-distribution chart.
type RiskBar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// AdminView is the admin command center's data.
type AdminView struct {
	Stats            []StatCard    `json:"stats"`
	RiskDistribution []RiskBar     `json:"risk_distribution"`
	FundingVolume    FundingVolume `json:"funding_volume"`
	Approvals        []ApprovalItem `json:"approvals"`
	Requests         []RequestItem  `json:"requests"`
}

// Listing is one open invoice opportunity on the investor market.
type Listing struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Industry      string   `json:"industry"`
	Location      string   `json:"location"`
	Amount        string   `json:"amount"`
	AmountValue   float64  `json:"amount_value"`
	Term          string   `json:"term"`
	TermMonths    int      `json:"term_months"`
	ReturnRate    string   `json:"return_rate"`
	APRPercent    float64  `json:"apr_percent"`
	Risk          string   `json:"risk"`
	Progress      float64  `json:"progress"`
	FundingTarget float64  `json:"funding_target"`
	FundedAmount  float64  `json:"funded_amount"`
	Remaining     float64  `json:"remaining"`
	Tags          []string `json:"tags"`
}

// Position is one funding in a portfolio list.
type Position struct {
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	ReturnRate string `json:"return_rate"`
	Status     string `json:"status"`
	NextPayout string `json:"next_payout"`
}

// Signal is one sector-demand row.
type Signal struct {
	Sector string `json:"sector"`
	Level  string `json:"level"`
}

// InvestorMarketView is the investor marketplace's data.
type InvestorMarketView struct {
	Stats            []StatCard `json:"stats"`
	Listings         []Listing  `json:"listings"`
	Portfolio        []Position `json:"portfolio"`
	MarketSignals    []Signal   `json:"market_signals"`
	EmergencyCapital string     `json:"emergency_capital"`
}

// AllocationRow is one sector of the portfolio allocation table.
type AllocationRow struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Amount string  `json:"amount"`
}

// PortfolioProgress summarizes invested versus returned capital.
type PortfolioProgress struct {
	Invested         float64 `json:"invested"`
	Returned         float64 `json:"returned"`
	Ratio            float64 `json:"ratio"`
	NextPayoutAmount float64 `json:"next_payout_amount"`
	NextPayoutDate   string  `json:"next_payout_date"`
	RiskReserve      float64 `json:"risk_reserve"`
}

// InvestorPortfolioView is the investor portfolio page's data.
type InvestorPortfolioView struct {
	Stats      []StatCard        `json:"stats"`
	Allocation []AllocationRow   `json:"allocation"`
	Positions  []Position        `json:"positions"`
	Payouts    []Position        `json:"payouts"`
	Progress   PortfolioProgress `json:"progress"`
}

// CurrentInvoice is the SME workspace's highlighted raise.
type CurrentInvoice struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	Target     string  `json:"target"`
	Committed  string  `json:"committed"`
	TermMonths int     `json:"term_months"`
	Risk       string  `json:"risk"`
	Progress   float64 `json:"progress"`
}

// InvoiceRow is one invoice in an SME list.
type InvoiceRow struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Amount string `json:"amount"`
	Status string `json:"status"`
	Due    string `json:"due"`
}

// SmeWorkspaceView is the SME marketplace page's data.
type SmeWorkspaceView struct {
	Stats     []StatCard      `json:"stats"`
	Current   *CurrentInvoice `json:"current"`
	Portfolio []InvoiceRow    `json:"portfolio"`
}

// SmeSummary aggregates an SME's whole book.
type SmeSummary struct {
	TotalTarget    string `json:"total_target"`
	TotalCommitted string `json:"total_committed"`
	AvgAPR         string `json:"avg_apr"`
	Invoices       int    `json:"invoices"`
}

// SmePortfolioView is the SME portfolio page's data.
type SmePortfolioView struct {
	Summary SmeSummary   `json:"summary"`
	Rows    []InvoiceRow `json:"rows"`
}

// DashboardService computes the read-side view models. Each call issues its
// backend reads as one fire-together batch and waits for all of them; ctx
// cancellation (viewer navigated away) discards the cycle.
type DashboardService interface {
	Home(ctx context.Context, sid, lang string) (*HomeView, error)
	Admin(ctx context.Context, sid, lang string) (*AdminView, error)
	InvestorMarket(ctx context.Context, sid, lang string) (*InvestorMarketView, error)
	InvestorPortfolio(ctx context.Context, sid, lang string) (*InvestorPortfolioView, error)
	SmeWorkspace(ctx context.Context, sid, lang string) (*SmeWorkspaceView, error)
	SmePortfolio(ctx context.Context, sid, lang string) (*SmePortfolioView, error)
}

// ActionService performs the mutating flows. Every method resolves a role
// token first (possibly failing with a credential challenge) and runs
// client-side pre-submission checks before any network call.
type ActionService interface {
	ApproveInvoice(ctx context.Context, sid, invoiceID string, in ApproveInput, creds Credentials) error
	MarkInvoicePaid(ctx context.Context, sid, invoiceID string, amount float64, creds Credentials) error
	FundInvoice(ctx context.Context, sid, invoiceID string, in FundInput, creds Credentials) error
	CreateInvoice(ctx context.Context, sid string, draft InvoiceDraft, submitAfter bool, creds Credentials) (string, error)
	SubmitInvoice(ctx context.Context, sid, invoiceID string, creds Credentials) error
	Deposit(ctx context.Context, sid string, amount float64) (float64, error)
}
