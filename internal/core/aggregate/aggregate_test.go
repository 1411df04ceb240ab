package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/invoiceflow/console/internal/core/domain"
)

func invoice(target, funded float64) domain.Invoice {
	return domain.Invoice{FundingTarget: target, FundedAmount: funded}
}

func apr(v float64) *float64 { return &v }

func TestProgressRatio_Bounds(t *testing.T) {
	if got := ProgressRatio(invoice(0, 500)); got != 0 {
		t.Fatalf("zero target: expected 0, got %v", got)
	}
	if got := ProgressRatio(invoice(1000, 800)); got != 0.8 {
		t.Fatalf("expected 0.8, got %v", got)
	}
	if got := ProgressRatio(invoice(1000, 1500)); got != 1 {
		t.Fatalf("overfunded should clamp to 1, got %v", got)
	}
	if got := ProgressRatio(invoice(1000, -50)); got != 0 {
		t.Fatalf("negative funded should clamp to 0, got %v", got)
	}
	if math.IsNaN(ProgressRatio(invoice(0, 0))) {
		t.Fatalf("ratio must never be NaN")
	}
}

func TestAverageBy_ExcludesNonPositive(t *testing.T) {
	invoices := []domain.Invoice{
		{APRPercent: apr(10)},
		{APRPercent: apr(14)},
		{APRPercent: apr(0)},
		{APRPercent: nil},
		{APRPercent: apr(-3)},
	}
	got := AverageBy(invoices, domain.Invoice.APR)
	if got != 12 {
		t.Fatalf("expected 12 (zero/undefined excluded from denominator), got %v", got)
	}
}

func TestAverageBy_Empty(t *testing.T) {
	if got := AverageBy(nil, domain.Invoice.APR); got != 0 {
		t.Fatalf("empty list: expected 0, got %v", got)
	}
}

func TestUniqueCount(t *testing.T) {
	invoices := []domain.Invoice{
		{IssuerID: "a"},
		{IssuerID: "b"},
		{IssuerID: "a"},
		{IssuerID: ""},
		{IssuerID: "c"},
		{IssuerID: "b"},
	}
	if got := UniqueCount(invoices, func(i domain.Invoice) string { return i.IssuerID }); got != 3 {
		t.Fatalf("expected 3 distinct issuers, got %d", got)
	}
	if got := UniqueCount(nil, func(i domain.Invoice) string { return i.IssuerID }); got != 0 {
		t.Fatalf("empty list: expected 0, got %d", got)
	}
}

func TestTopTags_OrderAndTies(t *testing.T) {
	invoices := []domain.Invoice{
		{Tags: []string{"Retail", "Logistics"}},
		{Tags: []string{"Agri"}},
		{Tags: []string{"Retail"}},
		{Tags: []string{"Logistics"}},
		{Tags: []string{"Agri", ""}},
	}
	got := TopTags(invoices, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(got))
	}
	if got[0].Tag != "Retail" || got[0].Count != 2 {
		t.Fatalf("unexpected top tag: %+v", got[0])
	}
	// Logistics and Agri both count 2 after Retail; Logistics was seen first.
	if got[1].Tag != "Logistics" || got[2].Tag != "Agri" {
		t.Fatalf("tie must keep encounter order, got %v then %v", got[1].Tag, got[2].Tag)
	}
}

func TestTopTags_Empty(t *testing.T) {
	if got := TopTags(nil, 3); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestPipelineStatus_Priority(t *testing.T) {
	ready := invoice(500, 500)
	if tier, pct := PipelineStatus(ready); tier != TierEscrowReady || pct != 100 {
		t.Fatalf("fully funded: expected escrow ready 100, got %v %d", tier, pct)
	}

	// Escrow-ready wins even with the emergency flag set.
	readyEmergency := invoice(1000, 800)
	readyEmergency.EmergencyLane = true
	if tier, _ := PipelineStatus(readyEmergency); tier != TierEscrowReady {
		t.Fatalf("80%% + emergency: escrow ready must win, got %v", tier)
	}

	emergency := invoice(1000, 100)
	emergency.EmergencyLane = true
	if tier, _ := PipelineStatus(emergency); tier != TierEmergencyLane {
		t.Fatalf("expected emergency lane, got %v", tier)
	}

	if tier, pct := PipelineStatus(invoice(1000, 800)); tier != TierEscrowReady || pct != 80 {
		t.Fatalf("exactly 0.80 crosses the threshold, got %v %d", tier, pct)
	}
	if tier, pct := PipelineStatus(invoice(1000, 799)); tier != TierFundedPercent || pct != 80 {
		t.Fatalf("just below threshold: expected percent label, got %v %d", tier, pct)
	}
}

// Mirrors the two-invoice example the dashboards render: aggregate funded
// 1300 of target 1500, the 100% invoice escrow-ready, the 80%... also ready.
func TestAggregateScenario(t *testing.T) {
	invoices := []domain.Invoice{invoice(1000, 800), invoice(500, 500)}

	funded := SumBy(invoices, func(i domain.Invoice) float64 { return i.FundedAmount })
	target := SumBy(invoices, func(i domain.Invoice) float64 { return i.FundingTarget })
	if funded != 1300 || target != 1500 {
		t.Fatalf("expected 1300/1500, got %v/%v", funded, target)
	}
	if r := Ratio(funded, target); math.Abs(r-0.8667) > 0.0001 {
		t.Fatalf("expected aggregate ratio 0.8667, got %v", r)
	}
	if tier, _ := PipelineStatus(invoices[1]); tier != TierEscrowReady {
		t.Fatalf("second invoice must be escrow ready")
	}
}

func TestAverageFundingHours(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	invoices := []domain.Invoice{
		{Status: domain.InvoiceStatusFunded, CreatedAt: base, UpdatedAt: base.Add(10 * time.Hour)},
		{Status: domain.InvoiceStatusPaid, CreatedAt: base, UpdatedAt: base.Add(20 * time.Hour)},
		// Not yet funded: excluded.
		{Status: domain.InvoiceStatusApproved, CreatedAt: base, UpdatedAt: base.Add(100 * time.Hour)},
		// Updated before created: clamps to zero, still counted.
		{Status: domain.InvoiceStatusPartiallyPaid, CreatedAt: base, UpdatedAt: base.Add(-2 * time.Hour)},
	}
	if got := AverageFundingHours(invoices); got != 10 {
		t.Fatalf("expected 10 hours, got %d", got)
	}
	if got := AverageFundingHours(nil); got != 0 {
		t.Fatalf("empty list: expected 0, got %d", got)
	}
}

func TestEmergencyCapital(t *testing.T) {
	a := invoice(1000, 400)
	a.EmergencyLane = true
	b := invoice(500, 500)
	b.EmergencyLane = true
	c := invoice(2000, 0)

	if got := EmergencyCapital([]domain.Invoice{a, b, c}); got != 600 {
		t.Fatalf("expected 600, got %v", got)
	}
}

func TestDemandRatio(t *testing.T) {
	if got := DemandRatio(0, 1500); got != 0 {
		t.Fatalf("zero funded: expected 0, got %v", got)
	}
	if got := DemandRatio(1000, 1500); got != 1.5 {
		t.Fatalf("expected 1.5, got %v", got)
	}
}

func TestSortByProgress_DoesNotMutate(t *testing.T) {
	invoices := []domain.Invoice{invoice(1000, 100), invoice(1000, 900)}
	sorted := SortByProgress(invoices)
	if sorted[0].FundedAmount != 900 {
		t.Fatalf("expected most funded first, got %v", sorted[0].FundedAmount)
	}
	if invoices[0].FundedAmount != 100 {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestSectorAllocation(t *testing.T) {
	invoices := InvoiceIndex([]domain.Invoice{
		{ID: "i1", Tags: []string{"Retail"}},
		{ID: "i2", Tags: []string{"Agri"}},
	})
	fundings := []domain.Funding{
		{InvoiceID: "i1", Amount: 300},
		{InvoiceID: "i2", Amount: 100},
		{InvoiceID: "i1", Amount: 100},
		{InvoiceID: "missing", Amount: 500},
	}
	shares := SectorAllocation(fundings, invoices, "General")
	if len(shares) != 3 {
		t.Fatalf("expected 3 sectors, got %d", len(shares))
	}
	if shares[0].Sector != "Retail" || shares[0].Amount != 400 {
		t.Fatalf("unexpected first share: %+v", shares[0])
	}
	if shares[2].Sector != "General" || shares[2].Share != 0.5 {
		t.Fatalf("unknown invoice must fall back to General with half the total: %+v", shares[2])
	}
}

func TestSectorAllocation_Empty(t *testing.T) {
	if got := SectorAllocation(nil, nil, "General"); len(got) != 0 {
		t.Fatalf("expected empty allocation, got %v", got)
	}
}

func TestPayoutDate(t *testing.T) {
	due := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	invoices := InvoiceIndex([]domain.Invoice{{ID: "i1", DueDate: due}})

	f := domain.Funding{InvoiceID: "i1", TermMonths: 3, CreatedAt: created}
	if got := PayoutDate(f, invoices); !got.Equal(due.AddDate(0, 3, 0)) {
		t.Fatalf("expected due date + 3 months, got %v", got)
	}

	orphan := domain.Funding{InvoiceID: "gone", TermMonths: 3, CreatedAt: created}
	if got := PayoutDate(orphan, invoices); !got.Equal(created.AddDate(0, 3, 0)) {
		t.Fatalf("unknown invoice must fall back to funding creation, got %v", got)
	}

	zero := domain.Funding{InvoiceID: "gone", TermMonths: 3}
	if got := PayoutDate(zero, invoices); !got.IsZero() {
		t.Fatalf("zero base date must yield zero time, got %v", got)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if bucket, n := RelativeTime(now.Add(-30*time.Second), now); bucket != BucketMinutes || n != 1 {
		t.Fatalf("sub-minute must floor to 1 minute, got %v %d", bucket, n)
	}
	if bucket, n := RelativeTime(now.Add(-45*time.Minute), now); bucket != BucketMinutes || n != 45 {
		t.Fatalf("expected 45 minutes, got %v %d", bucket, n)
	}
	if bucket, n := RelativeTime(now.Add(-5*time.Hour), now); bucket != BucketHours || n != 5 {
		t.Fatalf("expected 5 hours, got %v %d", bucket, n)
	}
	if bucket, n := RelativeTime(now.Add(-72*time.Hour), now); bucket != BucketDays || n != 3 {
		t.Fatalf("expected 3 days, got %v %d", bucket, n)
	}
	if bucket, n := RelativeTime(now.Add(time.Hour), now); bucket != BucketMinutes || n != 1 {
		t.Fatalf("future timestamps floor to 1 minute, got %v %d", bucket, n)
	}
}
