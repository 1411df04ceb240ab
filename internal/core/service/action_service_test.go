package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/invoiceflow/console/internal/core/domain"
	"github.com/invoiceflow/console/internal/core/ports"
)

func newActionService(api *stubBackend, guard SubmissionGuard) (*ActionService, *authFixture) {
	sessions := newTestSessions()
	auth := &authFixture{token: "tok"}
	return NewActionService(auth, sessions, api, guard, zerolog.Nop()), auth
}

// authFixture hands out a fixed token, or the configured error.
type authFixture struct {
	token string
	err   error
	role  string
}

func (a *authFixture) ResolveToken(_ context.Context, _ string, role string, _ ports.Credentials) (string, error) {
	a.role = role
	if a.err != nil {
		return "", a.err
	}
	return a.token, nil
}

func (a *authFixture) Verify(context.Context, string) ports.Verification {
	return ports.Verification{State: ports.Anonymous}
}

func (a *authFixture) Logout(context.Context, string) error { return nil }

func validDraft() ports.InvoiceDraft {
	return ports.InvoiceDraft{
		Title:         "Q3 logistics invoice",
		InvoiceNumber: "INV-2031",
		Amount:        500,
		Currency:      "USD",
		TermMonths:    3,
		APRPercent:    12,
		DueDate:       "2026-11-30",
		FundingTarget: 500,
	}
}

func TestCreateInvoice_TargetBelowAmountRejectedBeforeNetwork(t *testing.T) {
	api := &stubBackend{} // any call fails the test
	svc, _ := newActionService(api, noopGuard{})

	draft := validDraft()
	draft.Amount = 500
	draft.FundingTarget = 400

	_, err := svc.CreateInvoice(context.Background(), "s1", draft, false, ports.Credentials{})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Message != "funding target must be at least invoice amount" {
		t.Fatalf("unexpected message %q", ve.Message)
	}
}

func TestCreateInvoice_FieldChecksInOrder(t *testing.T) {
	svc, _ := newActionService(&stubBackend{}, noopGuard{})
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*ports.InvoiceDraft)
		want   string
	}{
		{"missing title", func(d *ports.InvoiceDraft) { d.Title = "" }, "Title and invoice number are required."},
		{"zero amount", func(d *ports.InvoiceDraft) { d.Amount = 0; d.FundingTarget = 0 }, "Amount must be greater than 0."},
		{"zero term", func(d *ports.InvoiceDraft) { d.TermMonths = 0 }, "Term must be greater than 0."},
		{"apr too high", func(d *ports.InvoiceDraft) { d.APRPercent = 25 }, "APR must be between 1% and 20% per year."},
		{"apr too low", func(d *ports.InvoiceDraft) { d.APRPercent = 0.5 }, "APR must be between 1% and 20% per year."},
		{"missing due date", func(d *ports.InvoiceDraft) { d.DueDate = "" }, "Due date is required."},
	}

	for _, tc := range cases {
		draft := validDraft()
		tc.mutate(&draft)
		_, err := svc.CreateInvoice(ctx, "s1", draft, false, ports.Credentials{})
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if ve.Message != tc.want {
			t.Fatalf("%s: message = %q, want %q", tc.name, ve.Message, tc.want)
		}
	}
}

func TestCreateInvoice_SubmitAfterRunsBothCalls(t *testing.T) {
	var submitted string
	api := &stubBackend{
		createInv: func(_ context.Context, _, token string, draft ports.InvoiceDraft) (*domain.Invoice, error) {
			if token != "tok" {
				t.Errorf("unexpected token %q", token)
			}
			return &domain.Invoice{ID: "inv-9", Title: draft.Title, Status: domain.InvoiceStatusDraft}, nil
		},
		submitInv: func(_ context.Context, _, _, invoiceID string) error {
			submitted = invoiceID
			return nil
		},
	}
	svc, auth := newActionService(api, noopGuard{})

	id, err := svc.CreateInvoice(context.Background(), "s1", validDraft(), true, ports.Credentials{})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if id != "inv-9" || submitted != "inv-9" {
		t.Fatalf("id=%q submitted=%q", id, submitted)
	}
	if auth.role != domain.RoleSME {
		t.Fatalf("resolved role = %q", auth.role)
	}
}

func TestCreateInvoice_CredentialChallengeSurfaces(t *testing.T) {
	svc, auth := newActionService(&stubBackend{}, noopGuard{})
	auth.err = &domain.CredentialRequiredError{Role: domain.RoleSME, LoginAllowed: true}

	_, err := svc.CreateInvoice(context.Background(), "s1", validDraft(), false, ports.Credentials{})
	if _, ok := domain.IsCredentialRequired(err); !ok {
		t.Fatalf("expected credential challenge, got %v", err)
	}
}

func TestCreateInvoice_DuplicateSubmissionRejected(t *testing.T) {
	svc, _ := newActionService(&stubBackend{}, blockingGuard{})

	_, err := svc.CreateInvoice(context.Background(), "s1", validDraft(), false, ports.Credentials{})
	if !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}
}

func TestSubmitInvoice_NonDraftRejectedClientSide(t *testing.T) {
	api := &stubBackend{
		listInvoices: func(context.Context, string, string, ports.InvoiceQuery) ([]domain.Invoice, error) {
			return []domain.Invoice{{ID: "inv-1", Status: domain.InvoiceStatusSubmitted}}, nil
		},
	}
	svc, _ := newActionService(api, noopGuard{})

	err := svc.SubmitInvoice(context.Background(), "s1", "inv-1", ports.Credentials{})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMarkInvoicePaid_RequiresFundedStatus(t *testing.T) {
	api := &stubBackend{
		listInvoices: func(context.Context, string, string, ports.InvoiceQuery) ([]domain.Invoice, error) {
			return []domain.Invoice{{ID: "inv-1", Status: domain.InvoiceStatusApproved}}, nil
		},
	}
	svc, auth := newActionService(api, noopGuard{})

	err := svc.MarkInvoicePaid(context.Background(), "s1", "inv-1", 100, ports.Credentials{})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if auth.role != domain.RoleAdmin {
		t.Fatalf("resolved role = %q", auth.role)
	}
}

func TestMarkInvoicePaid_PartiallyPaidAccepted(t *testing.T) {
	marked := false
	api := &stubBackend{
		listInvoices: func(context.Context, string, string, ports.InvoiceQuery) ([]domain.Invoice, error) {
			return []domain.Invoice{{ID: "inv-1", Status: domain.InvoiceStatusPartiallyPaid}}, nil
		},
		markPaid: func(_ context.Context, _, _, invoiceID string, amount float64) (*domain.Invoice, error) {
			marked = true
			if invoiceID != "inv-1" || amount != 250 {
				t.Errorf("markPaid(%q, %v)", invoiceID, amount)
			}
			return &domain.Invoice{ID: invoiceID, Status: domain.InvoiceStatusPaid}, nil
		},
	}
	svc, _ := newActionService(api, noopGuard{})

	if err := svc.MarkInvoicePaid(context.Background(), "s1", "inv-1", 250, ports.Credentials{}); err != nil {
		t.Fatalf("MarkInvoicePaid: %v", err)
	}
	if !marked {
		t.Fatalf("backend call never happened")
	}
}

func TestApproveInvoice_ValidatesTierAndAPR(t *testing.T) {
	svc, _ := newActionService(&stubBackend{}, noopGuard{})
	ctx := context.Background()

	err := svc.ApproveInvoice(ctx, "s1", "inv-1", ports.ApproveInput{APRPercent: 10}, ports.Credentials{})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error for missing tier, got %v", err)
	}

	err = svc.ApproveInvoice(ctx, "s1", "inv-1", ports.ApproveInput{RiskTier: "A"}, ports.Credentials{})
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error for zero APR, got %v", err)
	}
}

func TestFundInvoice_DebitsWallet(t *testing.T) {
	api := &stubBackend{
		fundInv: func(_ context.Context, _, token, invoiceID string, in ports.FundInput) error {
			if token != "tok" || invoiceID != "inv-1" || in.Amount != 300 {
				t.Errorf("fund(%q, %q, %+v)", token, invoiceID, in)
			}
			return nil
		},
	}
	sessions := newTestSessions()
	auth := &authFixture{token: "tok"}
	svc := NewActionService(auth, sessions, api, noopGuard{}, zerolog.Nop())
	ctx := context.Background()
	_ = sessions.SetWalletBalance(ctx, "s1", 1000)

	in := ports.FundInput{Amount: 300, APRPercent: 12, TermMonths: 3}
	if err := svc.FundInvoice(ctx, "s1", "inv-1", in, ports.Credentials{}); err != nil {
		t.Fatalf("FundInvoice: %v", err)
	}
	if bal, _ := sessions.WalletBalance(ctx, "s1"); bal != 700 {
		t.Fatalf("balance = %v, want 700", bal)
	}
	if auth.role != domain.RoleInvestor {
		t.Fatalf("resolved role = %q", auth.role)
	}
}

func TestFundInvoice_BackendFailureKeepsWallet(t *testing.T) {
	api := &stubBackend{
		fundInv: func(context.Context, string, string, string, ports.FundInput) error {
			return errors.New("boom")
		},
	}
	sessions := newTestSessions()
	svc := NewActionService(&authFixture{token: "tok"}, sessions, api, noopGuard{}, zerolog.Nop())
	ctx := context.Background()
	_ = sessions.SetWalletBalance(ctx, "s1", 1000)

	in := ports.FundInput{Amount: 300, APRPercent: 12, TermMonths: 3}
	if err := svc.FundInvoice(ctx, "s1", "inv-1", in, ports.Credentials{}); err == nil {
		t.Fatalf("expected the backend failure to surface")
	}
	if bal, _ := sessions.WalletBalance(ctx, "s1"); bal != 1000 {
		t.Fatalf("failed funding must not debit the wallet, balance = %v", bal)
	}
}

func TestDeposit_AccumulatesAndValidates(t *testing.T) {
	svc, _ := newActionService(&stubBackend{}, noopGuard{})
	ctx := context.Background()

	if _, err := svc.Deposit(ctx, "s1", 0); err == nil {
		t.Fatalf("zero deposit must be rejected")
	}

	bal, err := svc.Deposit(ctx, "s1", 500)
	if err != nil || bal != 500 {
		t.Fatalf("Deposit: bal=%v err=%v", bal, err)
	}
	bal, err = svc.Deposit(ctx, "s1", 250.50)
	if err != nil || bal != 750.50 {
		t.Fatalf("second Deposit: bal=%v err=%v", bal, err)
	}
}

func TestValidationMessagesLocalized(t *testing.T) {
	sessions := newTestSessions()
	svc := NewActionService(&authFixture{token: "tok"}, sessions, &stubBackend{}, noopGuard{}, zerolog.Nop())
	ctx := context.Background()
	_ = sessions.SetLanguage(ctx, "s1", "vi")

	draft := validDraft()
	draft.Title = ""
	_, err := svc.CreateInvoice(ctx, "s1", draft, false, ports.Credentials{})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ve.Message != "Tiêu đề và số hóa đơn là bắt buộc." {
		t.Fatalf("expected Vietnamese message, got %q", ve.Message)
	}
}
