package domain

import "time"

const (
	FundingStatusPending   = "PENDING"
	FundingStatusConfirmed = "CONFIRMED"
	FundingStatusCanceled  = "CANCELED"
	FundingStatusRefunded  = "REFUNDED"
	FundingStatusSettled   = "SETTLED"
)

// Funding is an investor's commitment toward an invoice. Created through the
// fund action and never mutated locally except by re-fetch.
type Funding struct {
	ID          string     `json:"id"`
	InvoiceID   string     `json:"invoice_id"`
	InvestorID  string     `json:"investor_id"`
	Amount      float64    `json:"amount"`
	APRPercent  float64    `json:"apr_percent"`
	TermMonths  int        `json:"term_months"`
	Status      string     `json:"status"`
	TxHash      *string    `json:"tx_hash"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	SettledAt   *time.Time `json:"settled_at"`
}
