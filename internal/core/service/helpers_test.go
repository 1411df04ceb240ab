package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/invoiceflow/console/internal/core/domain"
	"github.com/invoiceflow/console/internal/core/ports"
	"github.com/invoiceflow/console/internal/core/session"
)

// stubBackend implements ports.Backend with per-call hooks. Unset hooks
// return an error so tests fail loudly on unexpected calls.
type stubBackend struct {
	login        func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error)
	register     func(ctx context.Context, in ports.RegisterInput) error
	me           func(ctx context.Context, token string) (*domain.User, error)
	listInvoices func(ctx context.Context, sid, role string, q ports.InvoiceQuery) ([]domain.Invoice, error)
	createInv    func(ctx context.Context, sid, token string, draft ports.InvoiceDraft) (*domain.Invoice, error)
	submitInv    func(ctx context.Context, sid, token, invoiceID string) error
	fundInv      func(ctx context.Context, sid, token, invoiceID string, in ports.FundInput) error
	listFundings func(ctx context.Context, sid, role string, q ports.PageQuery) ([]domain.Funding, error)
	adminMetrics func(ctx context.Context, sid string) (*ports.AdminMetrics, error)
	approveInv   func(ctx context.Context, sid, token, invoiceID string, in ports.ApproveInput) (*domain.Invoice, error)
	markPaid     func(ctx context.Context, sid, token, invoiceID string, amount float64) (*domain.Invoice, error)
}

var errUnexpectedCall = errors.New("unexpected backend call")

func (s *stubBackend) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	if s.login == nil {
		return nil, errUnexpectedCall
	}
	return s.login(ctx, in)
}

func (s *stubBackend) Register(ctx context.Context, in ports.RegisterInput) error {
	if s.register == nil {
		return errUnexpectedCall
	}
	return s.register(ctx, in)
}

func (s *stubBackend) Me(ctx context.Context, token string) (*domain.User, error) {
	if s.me == nil {
		return nil, errUnexpectedCall
	}
	return s.me(ctx, token)
}

func (s *stubBackend) ListInvoices(ctx context.Context, sid, role string, q ports.InvoiceQuery) ([]domain.Invoice, error) {
	if s.listInvoices == nil {
		return nil, errUnexpectedCall
	}
	return s.listInvoices(ctx, sid, role, q)
}

func (s *stubBackend) CreateInvoice(ctx context.Context, sid, token string, draft ports.InvoiceDraft) (*domain.Invoice, error) {
	if s.createInv == nil {
		return nil, errUnexpectedCall
	}
	return s.createInv(ctx, sid, token, draft)
}

func (s *stubBackend) SubmitInvoice(ctx context.Context, sid, token, invoiceID string) error {
	if s.submitInv == nil {
		return errUnexpectedCall
	}
	return s.submitInv(ctx, sid, token, invoiceID)
}

func (s *stubBackend) FundInvoice(ctx context.Context, sid, token, invoiceID string, in ports.FundInput) error {
	if s.fundInv == nil {
		return errUnexpectedCall
	}
	return s.fundInv(ctx, sid, token, invoiceID, in)
}

func (s *stubBackend) ListMyFundings(ctx context.Context, sid, role string, q ports.PageQuery) ([]domain.Funding, error) {
	if s.listFundings == nil {
		return nil, errUnexpectedCall
	}
	return s.listFundings(ctx, sid, role, q)
}

func (s *stubBackend) AdminDashboardMetrics(ctx context.Context, sid string) (*ports.AdminMetrics, error) {
	if s.adminMetrics == nil {
		return nil, errUnexpectedCall
	}
	return s.adminMetrics(ctx, sid)
}

func (s *stubBackend) ApproveInvoice(ctx context.Context, sid, token, invoiceID string, in ports.ApproveInput) (*domain.Invoice, error) {
	if s.approveInv == nil {
		return nil, errUnexpectedCall
	}
	return s.approveInv(ctx, sid, token, invoiceID, in)
}

func (s *stubBackend) MarkInvoicePaid(ctx context.Context, sid, token, invoiceID string, amount float64) (*domain.Invoice, error) {
	if s.markPaid == nil {
		return nil, errUnexpectedCall
	}
	return s.markPaid(ctx, sid, token, invoiceID, amount)
}

// noopGuard is a SubmissionGuard that always admits.
type noopGuard struct{}

func (noopGuard) Acquire(context.Context, string, string, []byte) (bool, error) { return true, nil }
func (noopGuard) Release(context.Context, string, string, []byte) error         { return nil }

// blockingGuard rejects everything as a duplicate.
type blockingGuard struct{}

func (blockingGuard) Acquire(context.Context, string, string, []byte) (bool, error) {
	return false, nil
}
func (blockingGuard) Release(context.Context, string, string, []byte) error { return nil }

func newTestSessions() *session.Store {
	hub := session.NewBroadcaster(zerolog.Nop())
	return session.NewStore(session.NewMemoryKV(), hub, zerolog.Nop())
}
