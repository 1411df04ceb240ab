package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/invoiceflow/console/internal/api/metrics"
	"github.com/invoiceflow/console/internal/core/aggregate"
	"github.com/invoiceflow/console/internal/core/domain"
	"github.com/invoiceflow/console/internal/core/i18n"
	"github.com/invoiceflow/console/internal/core/ports"
)

// SubmissionGuard rejects rapid duplicate mutations. Acquire claims a slot
// for (sid, action, payload) and returns false when an identical submission
// is already in flight; Release frees the slot after a failure so a
// deliberate retry is not blocked.
type SubmissionGuard interface {
	Acquire(ctx context.Context, sid, action string, payload []byte) (bool, error)
	Release(ctx context.Context, sid, action string, payload []byte) error
}

// ActionService runs the mutating flows. Each action resolves a role token
// (possibly surfacing a credential challenge), runs client-side form checks
// before any network call, and guards against double submission.
type ActionService struct {
	auth     ports.AuthService
	sessions ports.SessionStore
	api      ports.Backend
	guard    SubmissionGuard
	log      zerolog.Logger
}

// NewActionService builds an ActionService.
func NewActionService(auth ports.AuthService, sessions ports.SessionStore, api ports.Backend, guard SubmissionGuard, log zerolog.Logger) *ActionService {
	return &ActionService{auth: auth, sessions: sessions, api: api, guard: guard, log: log}
}

// translator loads the viewer's language for validation messages.
func (s *ActionService) translator(ctx context.Context, sid string) i18n.Translator {
	lang, err := s.sessions.Language(ctx, sid)
	if err != nil {
		lang = i18n.LangEN
	}
	return i18n.For(lang)
}

// acquire claims the dedup slot for a mutation, encoding the payload as the
// submission fingerprint.
func (s *ActionService) acquire(ctx context.Context, sid, action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	ok, err := s.guard.Acquire(ctx, sid, action, raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.SubmissionDedupTotal.WithLabelValues("hit").Inc()
		return nil, domain.ErrDuplicateSubmission
	}
	metrics.SubmissionDedupTotal.WithLabelValues("miss").Inc()
	return raw, nil
}

func (s *ActionService) release(ctx context.Context, sid, action string, raw []byte) {
	if err := s.guard.Release(ctx, sid, action, raw); err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("releasing submission slot failed")
	}
}

// findInvoice looks an invoice up in the role's current list. A missing
// invoice is not an error here; the backend stays authoritative.
func (s *ActionService) findInvoice(ctx context.Context, sid, role, invoiceID string) (domain.Invoice, bool) {
	invoices, err := s.api.ListInvoices(ctx, sid, role, ports.InvoiceQuery{})
	if err != nil {
		return domain.Invoice{}, false
	}
	inv, ok := aggregate.InvoiceIndex(invoices)[invoiceID]
	return inv, ok
}

// ApproveInvoice records the admin's risk tier and APR on a submitted
// invoice.
func (s *ActionService) ApproveInvoice(ctx context.Context, sid, invoiceID string, in ports.ApproveInput, creds ports.Credentials) error {
	tr := s.translator(ctx, sid)
	if in.RiskTier == "" {
		return domain.Invalid(tr.T("admin.riskTierRequired", "Risk tier is required.", nil))
	}
	if in.APRPercent <= 0 {
		return domain.Invalid(tr.T("admin.aprRequired", "APR must be greater than 0.", nil))
	}

	token, err := s.auth.ResolveToken(ctx, sid, domain.RoleAdmin, creds)
	if err != nil {
		return err
	}

	raw, err := s.acquire(ctx, sid, "approve:"+invoiceID, in)
	if err != nil {
		return err
	}
	if _, err := s.api.ApproveInvoice(ctx, sid, token, invoiceID, in); err != nil {
		s.release(ctx, sid, "approve:"+invoiceID, raw)
		return err
	}
	return nil
}

// MarkInvoicePaid records a repayment. The invoice must already be funded;
// the check runs client-side so the admin gets an inline message instead of
// a round trip.
func (s *ActionService) MarkInvoicePaid(ctx context.Context, sid, invoiceID string, amount float64, creds ports.Credentials) error {
	tr := s.translator(ctx, sid)
	if amount <= 0 {
		return domain.Invalid(tr.T("common.amountGreaterThanZero", "Amount must be greater than 0.", nil))
	}

	token, err := s.auth.ResolveToken(ctx, sid, domain.RoleAdmin, creds)
	if err != nil {
		return err
	}

	if inv, ok := s.findInvoice(ctx, sid, domain.RoleAdmin, invoiceID); ok && !domain.Payable(inv.Status) {
		return domain.Invalid(tr.T("admin.invoiceNotFunded", "Invoice is not funded yet.", nil))
	}

	raw, err := s.acquire(ctx, sid, "markpaid:"+invoiceID, amount)
	if err != nil {
		return err
	}
	if _, err := s.api.MarkInvoicePaid(ctx, sid, token, invoiceID, amount); err != nil {
		s.release(ctx, sid, "markpaid:"+invoiceID, raw)
		return err
	}
	return nil
}

// FundInvoice commits investor capital to a listing. On success the
// simulated wallet balance is debited locally; the balance has no backend
// counterpart.
func (s *ActionService) FundInvoice(ctx context.Context, sid, invoiceID string, in ports.FundInput, creds ports.Credentials) error {
	tr := s.translator(ctx, sid)
	if in.Amount <= 0 {
		return domain.Invalid(tr.T("investor.fundAmountError", "Amount must be greater than 0.", nil))
	}
	if in.APRPercent <= 0 {
		return domain.Invalid(tr.T("investor.aprError", "APR must be greater than 0.", nil))
	}
	if in.TermMonths <= 0 {
		return domain.Invalid(tr.T("investor.termError", "Term must be greater than 0.", nil))
	}

	token, err := s.auth.ResolveToken(ctx, sid, domain.RoleInvestor, creds)
	if err != nil {
		return err
	}

	raw, err := s.acquire(ctx, sid, "fund:"+invoiceID, in)
	if err != nil {
		return err
	}
	if err := s.api.FundInvoice(ctx, sid, token, invoiceID, in); err != nil {
		s.release(ctx, sid, "fund:"+invoiceID, raw)
		return err
	}

	balance, err := s.sessions.WalletBalance(ctx, sid)
	if err == nil {
		balance -= in.Amount
		if balance < 0 {
			balance = 0
		}
		if err := s.sessions.SetWalletBalance(ctx, sid, balance); err != nil {
			s.log.Warn().Err(err).Str("sid", sid).Msg("wallet debit failed")
		}
	}
	return nil
}

// CreateInvoice validates and creates an SME draft, optionally submitting
// it for review in the same flow. Returns the new invoice's ID.
func (s *ActionService) CreateInvoice(ctx context.Context, sid string, draft ports.InvoiceDraft, submitAfter bool, creds ports.Credentials) (string, error) {
	tr := s.translator(ctx, sid)
	if err := validateDraft(tr, draft); err != nil {
		return "", err
	}

	token, err := s.auth.ResolveToken(ctx, sid, domain.RoleSME, creds)
	if err != nil {
		return "", err
	}

	raw, err := s.acquire(ctx, sid, "create", draft)
	if err != nil {
		return "", err
	}
	created, err := s.api.CreateInvoice(ctx, sid, token, draft)
	if err != nil {
		s.release(ctx, sid, "create", raw)
		return "", err
	}

	if submitAfter {
		if err := s.api.SubmitInvoice(ctx, sid, token, created.ID); err != nil {
			// The draft exists; surface the submit failure and let the SME
			// retry from the workspace.
			return created.ID, err
		}
	}
	return created.ID, nil
}

// SubmitInvoice sends a draft to admin review. Only drafts may be
// submitted; the check runs client-side first.
func (s *ActionService) SubmitInvoice(ctx context.Context, sid, invoiceID string, creds ports.Credentials) error {
	tr := s.translator(ctx, sid)

	token, err := s.auth.ResolveToken(ctx, sid, domain.RoleSME, creds)
	if err != nil {
		return err
	}

	if inv, ok := s.findInvoice(ctx, sid, domain.RoleSME, invoiceID); ok && inv.Status != domain.InvoiceStatusDraft {
		return domain.Invalid(tr.T("sme.alreadySubmitted", "Invoice already submitted or approved.", nil))
	}

	raw, err := s.acquire(ctx, sid, "submit:"+invoiceID, invoiceID)
	if err != nil {
		return err
	}
	if err := s.api.SubmitInvoice(ctx, sid, token, invoiceID); err != nil {
		s.release(ctx, sid, "submit:"+invoiceID, raw)
		return err
	}
	return nil
}

// Deposit credits the simulated investor wallet and returns the new
// balance. Purely local; nothing is sent to the backend.
func (s *ActionService) Deposit(ctx context.Context, sid string, amount float64) (float64, error) {
	tr := s.translator(ctx, sid)
	if amount <= 0 {
		return 0, domain.Invalid(tr.T("common.amountGreaterThanZero", "Amount must be greater than 0.", nil))
	}
	balance, err := s.sessions.WalletBalance(ctx, sid)
	if err != nil {
		return 0, err
	}
	balance += amount
	if err := s.sessions.SetWalletBalance(ctx, sid, balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// validateDraft runs the invoice form checks in display order; the first
// failure wins.
func validateDraft(tr i18n.Translator, draft ports.InvoiceDraft) error {
	switch {
	case draft.Title == "" || draft.InvoiceNumber == "":
		return domain.Invalid(tr.T("sme.errorTitleNumber", "Title and invoice number are required.", nil))
	case draft.Amount <= 0:
		return domain.Invalid(tr.T("sme.errorAmount", "Amount must be greater than 0.", nil))
	case draft.TermMonths <= 0:
		return domain.Invalid(tr.T("sme.errorTerm", "Term must be greater than 0.", nil))
	case draft.APRPercent < 1 || draft.APRPercent > 20:
		return domain.Invalid(tr.T("sme.errorAprRange", "APR must be between 1% and 20% per year.", nil))
	case draft.DueDate == "":
		return domain.Invalid(tr.T("sme.errorDueDate", "Due date is required.", nil))
	case draft.FundingTarget <= 0:
		return domain.Invalid(tr.T("sme.errorTarget", "Funding target must be greater than 0.", nil))
	case draft.FundingTarget < draft.Amount:
		return domain.Invalid(tr.T("sme.errorTargetMin", "funding target must be at least invoice amount", nil))
	}
	return nil
}
