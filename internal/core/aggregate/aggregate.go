// Package aggregate folds already-fetched invoice and funding lists into
// dashboard-ready figures. Every function is pure, synchronous, and total:
// an empty list yields zero values, never an error, NaN, or Inf.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/invoiceflow/console/internal/core/domain"
)

// SumBy folds items with the given getter. Nil getters are not supported;
// callers pass a field accessor.
func SumBy[T any](items []T, value func(T) float64) float64 {
	var total float64
	for _, it := range items {
		total += value(it)
	}
	return total
}

// AverageBy averages the values a getter yields, excluding non-finite and
// non-positive values from both the sum and the denominator. Zero or
// undefined APRs therefore do not drag the average down.
func AverageBy[T any](items []T, value func(T) float64) float64 {
	var sum float64
	var n int
	for _, it := range items {
		v := value(it)
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// UniqueCount counts distinct non-empty keys. Duplicates and empties are
// ignored, so a list with N distinct issuers yields exactly N.
func UniqueCount[T any](items []T, key func(T) string) int {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		k := key(it)
		if k == "" {
			continue
		}
		seen[k] = struct{}{}
	}
	return len(seen)
}

// TagCount pairs a tag with its occurrence count.
type TagCount struct {
	Tag   string
	Count int
}

// TopTags ranks invoice tags by frequency, descending, keeping at most n.
// Ties keep first-encounter order (stable sort), so the display is
// deterministic for a given fetch.
func TopTags(invoices []domain.Invoice, n int) []TagCount {
	counts := make(map[string]int)
	var order []string
	for _, inv := range invoices {
		for _, tag := range inv.Tags {
			if tag == "" {
				continue
			}
			if _, ok := counts[tag]; !ok {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	ranked := make([]TagCount, 0, len(order))
	for _, tag := range order {
		ranked = append(ranked, TagCount{Tag: tag, Count: counts[tag]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ProgressRatio is funded/target guarded against division by zero: a target
// of 0 yields exactly 0, never NaN or Inf. The result is clamped to [0,1]
// for display; overfunded invoices read as fully funded.
func ProgressRatio(inv domain.Invoice) float64 {
	return Ratio(inv.FundedAmount, inv.FundingTarget)
}

// Ratio divides part by whole with the same zero guard and clamp.
func Ratio(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	r := part / whole
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

const escrowReadyThreshold = 0.80

// PipelineTier labels an invoice's funding progress for pipeline displays.
type PipelineTier int

const (
	// TierFundedPercent renders the literal percentage.
	TierFundedPercent PipelineTier = iota
	// TierEscrowReady means progress has crossed the escrow release bar.
	TierEscrowReady
	// TierEmergencyLane flags a priority-funding invoice still below the bar.
	TierEmergencyLane
)

// PipelineStatus classifies an invoice for the funding pipeline. The
// priority order is fixed display policy: escrow-ready beats the emergency
// flag, which beats the plain percentage.
func PipelineStatus(inv domain.Invoice) (PipelineTier, int) {
	progress := ProgressRatio(inv)
	percent := int(math.Round(progress * 100))
	if progress >= escrowReadyThreshold {
		return TierEscrowReady, percent
	}
	if inv.EmergencyLane {
		return TierEmergencyLane, percent
	}
	return TierFundedPercent, percent
}

// AverageFundingHours averages hours between creation and last update over
// invoices in a funded-or-later status, rounded to whole hours. Negative
// spans (clock skew) clamp to zero. No qualifying invoices yields 0.
func AverageFundingHours(invoices []domain.Invoice) int {
	var totalHours float64
	var n int
	for _, inv := range invoices {
		if !domain.FundedOrLater(inv.Status) {
			continue
		}
		span := inv.UpdatedAt.Sub(inv.CreatedAt)
		if span < 0 {
			span = 0
		}
		totalHours += span.Hours()
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(totalHours / float64(n)))
}

// RemainingTarget is the uncommitted portion of an invoice's funding
// target, floored at zero.
func RemainingTarget(inv domain.Invoice) float64 {
	remaining := inv.FundingTarget - inv.FundedAmount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// EmergencyCapital sums the remaining targets of emergency-lane invoices,
// the capital the priority lane is still waiting on.
func EmergencyCapital(invoices []domain.Invoice) float64 {
	var total float64
	for _, inv := range invoices {
		if inv.EmergencyLane {
			total += RemainingTarget(inv)
		}
	}
	return total
}

// DemandRatio is total target over total funded: how much capital is
// waiting per unit already deployed. Zero funded yields 0.
func DemandRatio(totalFunded, totalTarget float64) float64 {
	if totalFunded <= 0 {
		return 0
	}
	return totalTarget / totalFunded
}

// SortByProgress returns a copy of invoices ordered by funding progress,
// most funded first. The input slice is not mutated.
func SortByProgress(invoices []domain.Invoice) []domain.Invoice {
	sorted := make([]domain.Invoice, len(invoices))
	copy(sorted, invoices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ProgressRatio(sorted[i]) > ProgressRatio(sorted[j])
	})
	return sorted
}

// SectorShare is one row of an allocation table.
type SectorShare struct {
	Sector string
	Amount float64
	Share  float64
}

// SectorAllocation groups funding amounts by the first tag of the funded
// invoice (falling back to fallbackSector when the invoice is unknown or
// untagged) and computes each sector's share of the total. Rows keep
// first-encounter order.
func SectorAllocation(fundings []domain.Funding, invoices map[string]domain.Invoice, fallbackSector string) []SectorShare {
	totals := make(map[string]float64)
	var order []string
	for _, f := range fundings {
		sector := fallbackSector
		if inv, ok := invoices[f.InvoiceID]; ok && len(inv.Tags) > 0 && inv.Tags[0] != "" {
			sector = inv.Tags[0]
		}
		if _, ok := totals[sector]; !ok {
			order = append(order, sector)
		}
		totals[sector] += f.Amount
	}

	var grand float64
	for _, amount := range totals {
		grand += amount
	}

	shares := make([]SectorShare, 0, len(order))
	for _, sector := range order {
		shares = append(shares, SectorShare{
			Sector: sector,
			Amount: totals[sector],
			Share:  Ratio(totals[sector], grand),
		})
	}
	return shares
}

// InvoiceIndex maps invoices by ID for joining fundings to their invoices.
func InvoiceIndex(invoices []domain.Invoice) map[string]domain.Invoice {
	index := make(map[string]domain.Invoice, len(invoices))
	for _, inv := range invoices {
		index[inv.ID] = inv
	}
	return index
}

// PayoutDate projects a funding's payout: term months after the invoice due
// date, or after the funding's creation when the invoice is unknown. A zero
// base date yields the zero time.
func PayoutDate(f domain.Funding, invoices map[string]domain.Invoice) time.Time {
	base := f.CreatedAt
	if inv, ok := invoices[f.InvoiceID]; ok && !inv.DueDate.IsZero() {
		base = inv.DueDate
	}
	if base.IsZero() {
		return time.Time{}
	}
	return base.AddDate(0, f.TermMonths, 0)
}

// RelativeBucket is a coarse elapsed-time unit for "x ago" labels.
type RelativeBucket int

const (
	BucketMinutes RelativeBucket = iota
	BucketHours
	BucketDays
)

// RelativeTime buckets the span between ts and now into minutes (< 60),
// hours (< 24), or days. Future or sub-minute timestamps floor to 1 minute.
func RelativeTime(ts, now time.Time) (RelativeBucket, int) {
	diff := now.Sub(ts)
	if diff < 0 {
		diff = 0
	}
	minutes := int(diff.Minutes())
	if minutes < 60 {
		if minutes < 1 {
			minutes = 1
		}
		return BucketMinutes, minutes
	}
	hours := minutes / 60
	if hours < 24 {
		return BucketHours, hours
	}
	return BucketDays, hours / 24
}
