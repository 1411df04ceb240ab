package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoiceflow/console/internal/core/aggregate"
	"github.com/invoiceflow/console/internal/core/domain"
	"github.com/invoiceflow/console/internal/core/i18n"
	"github.com/invoiceflow/console/internal/core/ports"
)

const listPageSize = 100

// DashboardService assembles the render-ready view models. Each view issues
// its backend reads as one fire-together batch and recomputes everything
// from scratch; a failed batch yields the explicit empty view, never stale
// numbers.
type DashboardService struct {
	api      ports.Backend
	sessions ports.SessionStore
	log      zerolog.Logger
	now      func() time.Time
}

// NewDashboardService builds a DashboardService.
func NewDashboardService(api ports.Backend, sessions ports.SessionStore, log zerolog.Logger) *DashboardService {
	return &DashboardService{api: api, sessions: sessions, log: log, now: time.Now}
}

// batch runs the fetches concurrently and waits for all of them. The first
// error wins; a canceled ctx discards the cycle.
func batch(ctx context.Context, fetches ...func() error) error {
	var wg sync.WaitGroup
	errs := make([]error, len(fetches))
	for i, fetch := range fetches {
		i, fetch := i, fetch
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fetch()
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Home computes the public landing page.
func (s *DashboardService) Home(ctx context.Context, sid, lang string) (*ports.HomeView, error) {
	tr := i18n.For(lang)

	var invoices []domain.Invoice
	err := batch(ctx, func() error {
		var fetchErr error
		invoices, fetchErr = s.api.ListInvoices(ctx, sid, "", ports.InvoiceQuery{PageSize: listPageSize})
		return fetchErr
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("home batch failed, rendering empty view")
		return &ports.HomeView{Stats: emptyStats(homeStatLabels(tr)), Pipeline: []ports.PipelineDeal{}, Snapshot: []ports.SnapshotItem{}}, nil
	}

	totalFunded := aggregate.SumBy(invoices, func(i domain.Invoice) float64 { return i.FundedAmount })
	totalTarget := aggregate.SumBy(invoices, func(i domain.Invoice) float64 { return i.FundingTarget })
	issuers := aggregate.UniqueCount(invoices, func(i domain.Invoice) string { return i.IssuerID })
	avgAPR := aggregate.AverageBy(invoices, domain.Invoice.APR)

	labels := homeStatLabels(tr)
	stats := []ports.StatCard{
		{Label: labels[0], Value: CurrencyDisplay(totalFunded, "USD"),
			Delta: tr.T("home.stats.invoicesListed", "{count} invoices listed", i18n.Params{"count": strconv.Itoa(len(invoices))}),
			Icon: "banknote", Tone: "primary"},
		{Label: labels[1], Value: strconv.Itoa(issuers), Icon: "building", Tone: "neutral"},
		{Label: labels[2], Value: i18n.Percent(avgAPR), Icon: "trending-up", Tone: "positive"},
	}

	pipeline := make([]ports.PipelineDeal, 0, 3)
	for _, inv := range aggregate.SortByProgress(invoices) {
		if len(pipeline) == 3 {
			break
		}
		tier, percent := aggregate.PipelineStatus(inv)
		pipeline = append(pipeline, ports.PipelineDeal{
			Name:   inv.Title,
			Amount: CurrencyDisplay(inv.FundingTarget, inv.Currency),
			Status: tr.PipelineLabel(tier, percent),
			Tone:   pipelineTone(tier),
		})
	}

	snapshot := []ports.SnapshotItem{
		{Label: tr.T("home.snapshot.avgFundingTime", "Avg funding time", nil),
			Value: tr.HoursSpan(aggregate.AverageFundingHours(invoices))},
		{Label: tr.T("home.snapshot.topSectorDemand", "Top sector demand", nil),
			Value: topSector(invoices)},
		{Label: tr.T("home.snapshot.investorDemand", "Investor demand", nil),
			Value: demandDisplay(totalFunded, totalTarget)},
	}

	return &ports.HomeView{Stats: stats, Pipeline: pipeline, Snapshot: snapshot}, nil
}

// Admin computes the admin command center: platform metrics, the approval
// queue, and the live request pipeline, fetched as three concurrent reads.
func (s *DashboardService) Admin(ctx context.Context, sid, lang string) (*ports.AdminView, error) {
	tr := i18n.For(lang)

	var (
		m         *ports.AdminMetrics
		submitted []domain.Invoice
		recent    []domain.Invoice
	)
	err := batch(ctx,
		func() error {
			var fetchErr error
			m, fetchErr = s.api.AdminDashboardMetrics(ctx, sid)
			return fetchErr
		},
		func() error {
			var fetchErr error
			submitted, fetchErr = s.api.ListInvoices(ctx, sid, domain.RoleAdmin,
				ports.InvoiceQuery{Status: domain.InvoiceStatusSubmitted, PageSize: listPageSize})
			return fetchErr
		},
		func() error {
			var fetchErr error
			recent, fetchErr = s.api.ListInvoices(ctx, sid, domain.RoleAdmin,
				ports.InvoiceQuery{PageSize: listPageSize})
			return fetchErr
		},
	)
	if err != nil {
		s.log.Warn().Err(err).Msg("admin batch failed, rendering empty view")
		return &ports.AdminView{
			Stats:            []ports.StatCard{},
			RiskDistribution: []ports.RiskBar{},
			Approvals:        []ports.ApprovalItem{},
			Requests:         []ports.RequestItem{},
		}, nil
	}

	stats := make([]ports.StatCard, 0, len(m.Stats))
	for _, stat := range m.Stats {
		stats = append(stats, ports.StatCard{
			Label: tr.T("admin.stats."+stat.Label, tr.StatusTitle(stat.Label), nil),
			Value: statValue(stat.Value),
			Delta: stat.Delta,
			Icon:  stat.Icon,
			Tone:  stat.Tone,
		})
	}

	risk := make([]ports.RiskBar, 0, len(m.RiskDistribution))
	for _, tier := range m.RiskDistribution {
		risk = append(risk, ports.RiskBar{
			Label: tr.T("admin.tierLabel", "Tier {tier}", i18n.Params{"tier": tier.Tier}),
			Value: aggregate.Ratio(tier.Ratio, 1) * 100,
		})
	}

	now := s.now()
	approvals := make([]ports.ApprovalItem, 0, len(submitted))
	for _, inv := range submitted {
		approvals = append(approvals, ports.ApprovalItem{
			ID:        inv.ID,
			Name:      inv.Title,
			Amount:    CurrencyDisplay(inv.Amount, inv.Currency),
			Term:      tr.T("common.monthsShort", "{count} mo", i18n.Params{"count": strconv.Itoa(inv.TermMonths)}),
			Risk:      inv.Risk(),
			APR:       inv.APR(),
			Submitted: tr.RelativeTime(inv.UpdatedAt, now),
		})
	}

	requests := make([]ports.RequestItem, 0, len(recent))
	for _, inv := range recent {
		requests = append(requests, ports.RequestItem{
			ID:          inv.ID,
			Name:        inv.Title,
			Region:      firstTag(inv, tr.T("common.general", "General", nil)),
			Amount:      CurrencyDisplay(inv.Amount, inv.Currency),
			AmountValue: inv.Amount,
			Status:      inv.Status,
			StatusLabel: tr.StatusTitle(inv.Status),
			Owner:       inv.IssuerID,
		})
	}

	return &ports.AdminView{
		Stats:            stats,
		RiskDistribution: risk,
		FundingVolume:    m.FundingVolume,
		Approvals:        approvals,
		Requests:         requests,
	}, nil
}

// InvestorMarket computes the investor marketplace: open listings, the
// viewer's positions, and sector demand signals.
func (s *DashboardService) InvestorMarket(ctx context.Context, sid, lang string) (*ports.InvestorMarketView, error) {
	tr := i18n.For(lang)

	var (
		approved []domain.Invoice
		fundings []domain.Funding
	)
	err := batch(ctx,
		func() error {
			var fetchErr error
			approved, fetchErr = s.api.ListInvoices(ctx, sid, domain.RoleInvestor,
				ports.InvoiceQuery{Status: domain.InvoiceStatusApproved, PageSize: listPageSize})
			return fetchErr
		},
		func() error {
			var fetchErr error
			fundings, fetchErr = s.api.ListMyFundings(ctx, sid, domain.RoleInvestor, ports.PageQuery{PageSize: listPageSize})
			return fetchErr
		},
	)
	if err != nil {
		s.log.Warn().Err(err).Msg("investor market batch failed, rendering empty view")
		return &ports.InvestorMarketView{
			Stats:            emptyStats(investorStatLabels(tr)),
			Listings:         []ports.Listing{},
			Portfolio:        []ports.Position{},
			MarketSignals:    []ports.Signal{},
			EmergencyCapital: i18n.Placeholder,
		}, nil
	}

	wallet, walletErr := s.sessions.WalletBalance(ctx, sid)
	if walletErr != nil {
		wallet = 0
	}

	expectedYield := aggregate.AverageBy(fundings, func(f domain.Funding) float64 { return f.APRPercent })
	impact := aggregate.UniqueCount(approved, func(i domain.Invoice) string { return i.IssuerID }) * 10
	if impact > 100 {
		impact = 100
	}

	labels := investorStatLabels(tr)
	stats := []ports.StatCard{
		{Label: labels[0], Value: CurrencyDisplay(wallet, "USD"), Icon: "wallet", Tone: "primary"},
		{Label: labels[1], Value: strconv.Itoa(activeDeals(fundings)), Icon: "briefcase", Tone: "neutral"},
		{Label: labels[2], Value: i18n.Percent(expectedYield), Icon: "trending-up", Tone: "positive"},
		{Label: labels[3], Value: strconv.Itoa(impact), Icon: "heart", Tone: "accent"},
	}

	listings := make([]ports.Listing, 0, len(approved))
	for _, inv := range approved {
		listings = append(listings, ports.Listing{
			ID:            inv.ID,
			Name:          inv.Title,
			Industry:      firstTag(inv, tr.T("common.general", "General", nil)),
			Location:      secondTag(inv),
			Amount:        CurrencyDisplay(inv.FundingTarget, inv.Currency),
			AmountValue:   inv.FundingTarget,
			Term:          tr.T("common.monthsShort", "{count} mo", i18n.Params{"count": strconv.Itoa(inv.TermMonths)}),
			TermMonths:    inv.TermMonths,
			ReturnRate:    i18n.Percent(inv.APR()),
			APRPercent:    inv.APR(),
			Risk:          inv.Risk(),
			Progress:      aggregate.ProgressRatio(inv),
			FundingTarget: inv.FundingTarget,
			FundedAmount:  inv.FundedAmount,
			Remaining:     aggregate.RemainingTarget(inv),
			Tags:          inv.Tags,
		})
	}

	index := aggregate.InvoiceIndex(approved)
	portfolio := make([]ports.Position, 0, len(fundings))
	for _, f := range fundings {
		portfolio = append(portfolio, s.position(tr, f, index))
	}

	signals := make([]ports.Signal, 0, 3)
	for rank, tag := range aggregate.TopTags(approved, 3) {
		signals = append(signals, ports.Signal{Sector: tag.Tag, Level: demandLevel(tr, rank)})
	}

	return &ports.InvestorMarketView{
		Stats:            stats,
		Listings:         listings,
		Portfolio:        portfolio,
		MarketSignals:    signals,
		EmergencyCapital: CurrencyDisplay(aggregate.EmergencyCapital(approved), "USD"),
	}, nil
}

// InvestorPortfolio computes the investor's portfolio page: capital
// progress, sector allocation, positions, and upcoming payouts.
func (s *DashboardService) InvestorPortfolio(ctx context.Context, sid, lang string) (*ports.InvestorPortfolioView, error) {
	tr := i18n.For(lang)

	var (
		fundings []domain.Funding
		invoices []domain.Invoice
	)
	err := batch(ctx,
		func() error {
			var fetchErr error
			fundings, fetchErr = s.api.ListMyFundings(ctx, sid, domain.RoleInvestor, ports.PageQuery{PageSize: listPageSize})
			return fetchErr
		},
		func() error {
			var fetchErr error
			invoices, fetchErr = s.api.ListInvoices(ctx, sid, domain.RoleInvestor,
				ports.InvoiceQuery{Status: domain.InvoiceStatusApproved, PageSize: listPageSize})
			return fetchErr
		},
	)
	if err != nil {
		s.log.Warn().Err(err).Msg("investor portfolio batch failed, rendering empty view")
		return &ports.InvestorPortfolioView{
			Stats:      emptyStats(portfolioStatLabels(tr)),
			Allocation: []ports.AllocationRow{},
			Positions:  []ports.Position{},
			Payouts:    []ports.Position{},
		}, nil
	}

	invested := aggregate.SumBy(fundings, func(f domain.Funding) float64 { return f.Amount })
	var returned float64
	for _, f := range fundings {
		if f.Status == domain.FundingStatusSettled || f.Status == domain.FundingStatusRefunded {
			returned += f.Amount
		}
	}
	pending := invested - returned
	if pending < 0 {
		pending = 0
	}

	labels := portfolioStatLabels(tr)
	stats := []ports.StatCard{
		{Label: labels[0], Value: CurrencyDisplay(invested, "USD"), Icon: "banknote", Tone: "primary"},
		{Label: labels[1], Value: CurrencyDisplay(returned, "USD"), Icon: "rotate-ccw", Tone: "positive"},
		{Label: labels[2], Value: CurrencyDisplay(pending, "USD"), Icon: "hourglass", Tone: "neutral"},
	}

	index := aggregate.InvoiceIndex(invoices)

	allocation := make([]ports.AllocationRow, 0)
	for _, share := range aggregate.SectorAllocation(fundings, index, tr.T("common.general", "General", nil)) {
		allocation = append(allocation, ports.AllocationRow{
			Label:  share.Sector,
			Value:  share.Share * 100,
			Amount: CurrencyDisplay(share.Amount, "USD"),
		})
	}

	positions := make([]ports.Position, 0, len(fundings))
	payouts := make([]ports.Position, 0)
	var nextPayout time.Time
	var nextPayoutAmount float64
	for _, f := range fundings {
		pos := s.position(tr, f, index)
		positions = append(positions, pos)

		if f.Status != domain.FundingStatusConfirmed && f.Status != domain.FundingStatusPending {
			continue
		}
		payouts = append(payouts, pos)
		due := aggregate.PayoutDate(f, index)
		if due.IsZero() {
			continue
		}
		if nextPayout.IsZero() || due.Before(nextPayout) {
			nextPayout = due
			nextPayoutAmount = f.Amount
		}
	}

	return &ports.InvestorPortfolioView{
		Stats:      stats,
		Allocation: allocation,
		Positions:  positions,
		Payouts:    payouts,
		Progress: ports.PortfolioProgress{
			Invested:         invested,
			Returned:         returned,
			Ratio:            aggregate.Ratio(returned, invested),
			NextPayoutAmount: nextPayoutAmount,
			NextPayoutDate:   tr.ShortDate(nextPayout),
			RiskReserve:      math.Round(invested*5) / 100,
		},
	}, nil
}

// SmeWorkspace computes the SME marketplace page: book totals, the raise
// with the most progress, and the invoice list.
func (s *DashboardService) SmeWorkspace(ctx context.Context, sid, lang string) (*ports.SmeWorkspaceView, error) {
	tr := i18n.For(lang)

	var invoices []domain.Invoice
	err := batch(ctx, func() error {
		var fetchErr error
		invoices, fetchErr = s.api.ListInvoices(ctx, sid, domain.RoleSME, ports.InvoiceQuery{PageSize: listPageSize})
		return fetchErr
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("sme workspace batch failed, rendering empty view")
		return &ports.SmeWorkspaceView{
			Stats:     emptyStats(smeStatLabels(tr)),
			Portfolio: []ports.InvoiceRow{},
		}, nil
	}

	totalTarget := aggregate.SumBy(invoices, func(i domain.Invoice) float64 { return i.FundingTarget })
	totalCommitted := aggregate.SumBy(invoices, func(i domain.Invoice) float64 { return i.FundedAmount })
	avgAPR := aggregate.AverageBy(invoices, domain.Invoice.APR)
	var offersPending int
	for _, inv := range invoices {
		if inv.Status == domain.InvoiceStatusSubmitted {
			offersPending++
		}
	}

	labels := smeStatLabels(tr)
	completion := int(math.Round(aggregate.Ratio(totalCommitted, totalTarget) * 100))
	stats := []ports.StatCard{
		{Label: labels[0], Value: CurrencyDisplay(totalTarget, "USD"), Icon: "target", Tone: "primary"},
		{Label: labels[1], Value: CurrencyDisplay(totalCommitted, "USD"),
			Delta: tr.T("sme.completePercent", "{percent}% complete", i18n.Params{"percent": strconv.Itoa(completion)}),
			Icon:  "handshake", Tone: "positive"},
		{Label: labels[2], Value: strconv.Itoa(offersPending), Icon: "inbox", Tone: "neutral"},
		{Label: labels[3], Value: i18n.Percent(avgAPR), Icon: "percent", Tone: "accent"},
	}

	var current *ports.CurrentInvoice
	if ranked := aggregate.SortByProgress(invoices); len(ranked) > 0 {
		top := ranked[0]
		current = &ports.CurrentInvoice{
			ID:         top.ID,
			Title:      top.Title,
			Status:     tr.StatusTitle(top.Status),
			Target:     CurrencyDisplay(top.FundingTarget, top.Currency),
			Committed:  CurrencyDisplay(top.FundedAmount, top.Currency),
			TermMonths: top.TermMonths,
			Risk:       top.Risk(),
			Progress:   aggregate.ProgressRatio(top),
		}
	}

	return &ports.SmeWorkspaceView{
		Stats:     stats,
		Current:   current,
		Portfolio: invoiceRows(tr, invoices),
	}, nil
}

// SmePortfolio computes the SME's full-book summary page.
func (s *DashboardService) SmePortfolio(ctx context.Context, sid, lang string) (*ports.SmePortfolioView, error) {
	tr := i18n.For(lang)

	var invoices []domain.Invoice
	err := batch(ctx, func() error {
		var fetchErr error
		invoices, fetchErr = s.api.ListInvoices(ctx, sid, domain.RoleSME, ports.InvoiceQuery{PageSize: listPageSize})
		return fetchErr
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("sme portfolio batch failed, rendering empty view")
		return &ports.SmePortfolioView{
			Summary: ports.SmeSummary{
				TotalTarget:    i18n.Placeholder,
				TotalCommitted: i18n.Placeholder,
				AvgAPR:         i18n.Placeholder,
			},
			Rows: []ports.InvoiceRow{},
		}, nil
	}

	return &ports.SmePortfolioView{
		Summary: ports.SmeSummary{
			TotalTarget:    CurrencyDisplay(aggregate.SumBy(invoices, func(i domain.Invoice) float64 { return i.FundingTarget }), "USD"),
			TotalCommitted: CurrencyDisplay(aggregate.SumBy(invoices, func(i domain.Invoice) float64 { return i.FundedAmount }), "USD"),
			AvgAPR:         i18n.Percent(aggregate.AverageBy(invoices, domain.Invoice.APR)),
			Invoices:       len(invoices),
		},
		Rows: invoiceRows(tr, invoices),
	}, nil
}

// position joins one funding to its invoice for display.
func (s *DashboardService) position(tr i18n.Translator, f domain.Funding, index map[string]domain.Invoice) ports.Position {
	name := tr.T("common.invoice", "Invoice", nil)
	if inv, ok := index[f.InvoiceID]; ok && inv.Title != "" {
		name = inv.Title
	}
	return ports.Position{
		Name:       name,
		Amount:     CurrencyDisplay(f.Amount, "USD"),
		ReturnRate: i18n.Percent(f.APRPercent),
		Status:     tr.StatusTitle(f.Status),
		NextPayout: tr.ShortDate(aggregate.PayoutDate(f, index)),
	}
}

func invoiceRows(tr i18n.Translator, invoices []domain.Invoice) []ports.InvoiceRow {
	rows := make([]ports.InvoiceRow, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, ports.InvoiceRow{
			ID:     inv.ID,
			Title:  inv.Title,
			Amount: CurrencyDisplay(inv.Amount, inv.Currency),
			Status: tr.StatusTitle(inv.Status),
			Due:    tr.ShortDate(inv.DueDate),
		})
	}
	return rows
}

// CurrencyDisplay renders an amount with its currency code ("1.3M USD").
func CurrencyDisplay(value float64, currency string) string {
	short := i18n.CurrencyShort(value)
	if short == i18n.Placeholder || currency == "" {
		return short
	}
	return short + " " + currency
}

func homeStatLabels(tr i18n.Translator) []string {
	return []string{
		tr.T("home.stats.capitalDeployed", "Capital deployed", nil),
		tr.T("home.stats.activeSmes", "Active SMEs", nil),
		tr.T("home.stats.netYield", "Net yield", nil),
	}
}

func investorStatLabels(tr i18n.Translator) []string {
	return []string{
		tr.T("investor.stats.availableCapital", "Available capital", nil),
		tr.T("investor.stats.activeDeals", "Active deals", nil),
		tr.T("investor.stats.expectedYield", "Expected yield", nil),
		tr.T("investor.stats.impactScore", "Impact score", nil),
	}
}

func portfolioStatLabels(tr i18n.Translator) []string {
	return []string{
		tr.T("portfolio.totalInvested", "Total invested", nil),
		tr.T("portfolio.totalReturned", "Total returned", nil),
		tr.T("portfolio.pendingPayout", "Pending payout", nil),
	}
}

func smeStatLabels(tr i18n.Translator) []string {
	return []string{
		tr.T("sme.stats.fundingTarget", "Funding target", nil),
		tr.T("sme.stats.committed", "Committed", nil),
		tr.T("sme.stats.offersPending", "Offers pending", nil),
		tr.T("sme.stats.averageApr", "Average APR", nil),
	}
}

// emptyStats renders placeholder cards so a failed fetch is visibly empty
// rather than zero-filled.
func emptyStats(labels []string) []ports.StatCard {
	cards := make([]ports.StatCard, 0, len(labels))
	for _, label := range labels {
		cards = append(cards, ports.StatCard{Label: label, Value: i18n.Placeholder})
	}
	return cards
}

func pipelineTone(tier aggregate.PipelineTier) string {
	switch tier {
	case aggregate.TierEscrowReady:
		return "positive"
	case aggregate.TierEmergencyLane:
		return "urgent"
	default:
		return "neutral"
	}
}

func topSector(invoices []domain.Invoice) string {
	top := aggregate.TopTags(invoices, 1)
	if len(top) == 0 {
		return i18n.Placeholder
	}
	return top[0].Tag
}

func demandDisplay(totalFunded, totalTarget float64) string {
	ratio := aggregate.DemandRatio(totalFunded, totalTarget)
	if ratio <= 0 {
		return i18n.Placeholder
	}
	return strconv.FormatFloat(ratio, 'f', 1, 64) + "x"
}

func demandLevel(tr i18n.Translator, rank int) string {
	switch rank {
	case 0:
		return tr.T("status.high", "High", nil)
	case 1:
		return tr.T("status.medium", "Medium", nil)
	default:
		return tr.T("status.low", "Low", nil)
	}
}

func activeDeals(fundings []domain.Funding) int {
	n := 0
	for _, f := range fundings {
		if f.Status == domain.FundingStatusPending || f.Status == domain.FundingStatusConfirmed {
			n++
		}
	}
	return n
}

func firstTag(inv domain.Invoice, fallback string) string {
	if len(inv.Tags) > 0 && inv.Tags[0] != "" {
		return inv.Tags[0]
	}
	return fallback
}

func secondTag(inv domain.Invoice) string {
	if len(inv.Tags) > 1 && inv.Tags[1] != "" {
		return inv.Tags[1]
	}
	return i18n.Placeholder
}

// statValue renders a backend-provided metric value. JSON numbers arrive as
// float64; whole values drop the fraction.
func statValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		if value == math.Trunc(value) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', 1, 64)
	case int:
		return strconv.Itoa(value)
	case nil:
		return i18n.Placeholder
	default:
		return fmt.Sprintf("%v", value)
	}
}
