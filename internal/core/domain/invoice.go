package domain

import "time"

// Invoice lifecycle statuses as reported by the backend. The gateway reads
// them verbatim; transitions are driven server-side by SME, admin, and
// investor actions.
const (
	InvoiceStatusDraft         = "DRAFT"
	InvoiceStatusSubmitted     = "SUBMITTED"
	InvoiceStatusApproved      = "APPROVED"
	InvoiceStatusTokenized     = "TOKENIZED"
	InvoiceStatusFunded        = "FUNDED"
	InvoiceStatusPartiallyPaid = "PARTIALLY_PAID"
	InvoiceStatusPaid          = "PAID"
	InvoiceStatusDefaulted     = "DEFAULTED"
	InvoiceStatusCanceled      = "CANCELED"
)

// FundedOrLater reports whether the invoice has reached the funded stage.
// Used by the average-funding-time aggregation.
func FundedOrLater(status string) bool {
	switch status {
	case InvoiceStatusFunded, InvoiceStatusPartiallyPaid, InvoiceStatusPaid:
		return true
	}
	return false
}

// Payable reports whether an admin may record a repayment against the
// invoice. Checked client-side before the mark-paid call goes out.
func Payable(status string) bool {
	return status == InvoiceStatusFunded || status == InvoiceStatusPartiallyPaid
}

// Invoice is a backend-owned record. Risk tier and APR are pointers because
// both are unset until admin approval.
type Invoice struct {
	ID            string    `json:"id"`
	IssuerID      string    `json:"issuer_id"`
	Title         string    `json:"title"`
	InvoiceNumber string    `json:"invoice_number"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	TermMonths    int       `json:"term_months"`
	DueDate       time.Time `json:"due_date"`
	RiskTier      *string   `json:"risk_tier"`
	APRPercent    *float64  `json:"apr_percent"`
	FundingTarget float64   `json:"funding_target"`
	FundedAmount  float64   `json:"funded_amount"`
	Status        string    `json:"status"`
	EmergencyLane bool      `json:"emergency_lane"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// APR returns the approved APR or 0 when the invoice has none yet.
func (i Invoice) APR() float64 {
	if i.APRPercent == nil {
		return 0
	}
	return *i.APRPercent
}

// Risk returns the risk tier or "-" when the invoice has none yet.
func (i Invoice) Risk() string {
	if i.RiskTier == nil || *i.RiskTier == "" {
		return "-"
	}
	return *i.RiskTier
}
