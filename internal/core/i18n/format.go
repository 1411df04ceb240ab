package i18n

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/invoiceflow/console/internal/core/aggregate"
)

// Placeholder is rendered wherever a value is absent or unknowable. The
// dashboards never silently show stale or zero-filled numbers for missing
// data.
const Placeholder = "-"

// CurrencyShort renders 1_234_567 as "1.2M", 12_300 as "12.3k", small
// values with no decimals. NaN and Inf render the placeholder.
func CurrencyShort(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Placeholder
	}
	abs := math.Abs(value)
	switch {
	case abs >= 1_000_000:
		return strconv.FormatFloat(value/1_000_000, 'f', 1, 64) + "M"
	case abs >= 1_000:
		return strconv.FormatFloat(value/1_000, 'f', 1, 64) + "k"
	default:
		return strconv.FormatFloat(value, 'f', 0, 64)
	}
}

// Percent renders 12.345 as "12.3%". NaN and Inf render the placeholder.
func Percent(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Placeholder
	}
	return strconv.FormatFloat(value, 'f', 1, 64) + "%"
}

var viMonths = [...]string{
	"thg 1", "thg 2", "thg 3", "thg 4", "thg 5", "thg 6",
	"thg 7", "thg 8", "thg 9", "thg 10", "thg 11", "thg 12",
}

// ShortDate renders a short month-day form ("Mar 05" / "05 thg 3"). Zero
// times render the placeholder.
func (tr Translator) ShortDate(ts time.Time) string {
	if ts.IsZero() {
		return Placeholder
	}
	if tr.lang == LangVI {
		return fmt.Sprintf("%02d %s", ts.Day(), viMonths[ts.Month()-1])
	}
	return ts.Format("Jan 02")
}

// RelativeTime renders an elapsed-time label ("5 hours ago" / "5 giờ
// trước"), bucketed into minutes, hours, or days. Zero times render the
// placeholder.
func (tr Translator) RelativeTime(ts, now time.Time) string {
	if ts.IsZero() {
		return Placeholder
	}
	bucket, count := aggregate.RelativeTime(ts, now)
	n := strconv.Itoa(count)
	switch bucket {
	case aggregate.BucketMinutes:
		return tr.T("time.minutes", pluralEN(n, "minute")+" ago", Params{"count": n})
	case aggregate.BucketHours:
		return tr.T("time.hours", pluralEN(n, "hour")+" ago", Params{"count": n})
	default:
		return tr.T("time.days", pluralEN(n, "day")+" ago", Params{"count": n})
	}
}

func pluralEN(count, unit string) string {
	if count == "1" {
		return count + " " + unit
	}
	return count + " " + unit + "s"
}

// StatusTitle renders a backend status literal for display: the Vietnamese
// mapping when available, else title case with underscores spaced out
// ("PARTIALLY_PAID" → "Partially Paid").
func (tr Translator) StatusTitle(status string) string {
	if status == "" {
		return Placeholder
	}
	upper := strings.ToUpper(status)
	if tr.lang == LangVI {
		if mapped, ok := statusVI[upper]; ok {
			return mapped
		}
	}
	words := strings.Split(strings.ToLower(upper), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// PipelineLabel renders the tiered funding-progress label. The tier
// priority itself is decided in the aggregate package; this only localizes.
func (tr Translator) PipelineLabel(tier aggregate.PipelineTier, percent int) string {
	switch tier {
	case aggregate.TierEscrowReady:
		return tr.T("pipeline.escrowReady", "Escrow ready", nil)
	case aggregate.TierEmergencyLane:
		return tr.T("pipeline.emergencyLane", "Emergency lane", nil)
	default:
		return tr.T("pipeline.fundedPercent", "Funded {percent}%", Params{"percent": strconv.Itoa(percent)})
	}
}

// HoursSpan renders a duration in whole hours ("36 hours" / "36 giờ"), or
// the placeholder for zero.
func (tr Translator) HoursSpan(hours int) string {
	if hours <= 0 {
		return Placeholder
	}
	n := strconv.Itoa(hours)
	return tr.T("time.hoursSpan", pluralEN(n, "hour"), Params{"count": n})
}
