package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
)

const dashboardCacheKey = "dashboard"

type nameTotalView struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

type monthBucketView struct {
	Month string          `json:"month"`
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
}

type fixedVariableView struct {
	Fixed    decimal.Decimal `json:"fixed"`
	Variable decimal.Decimal `json:"variable"`
}

type dashboardView struct {
	Total          decimal.Decimal   `json:"total"`
	MonthTotal     decimal.Decimal   `json:"monthTotal"`
	YearTotal      decimal.Decimal   `json:"yearTotal"`
	ByCategory     []nameTotalView   `json:"byCategory"`
	ByPartner      []nameTotalView   `json:"byPartner"`
	MonthlySeries  []monthBucketView `json:"monthlySeries"`
	FixedVariable  fixedVariableView `json:"fixedVariable"`
	TopProviders   []nameTotalView   `json:"topProviders"`
	RecentExpenses []expenseView     `json:"recentExpenses"`
	GeneratedAt    time.Time         `json:"generatedAt"`
}

// handleDashboard aggregates every report over the current snapshot. Amounts
// are summed as raw figures across currencies, matching how the books are
// kept; the view is memoized until the next mutation or TTL expiry.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if view, ok := s.dashCache.Get(dashboardCacheKey); ok {
		slog.DebugContext(r.Context(), "Dashboard cache hit")
		writeJSON(w, http.StatusOK, view)
		return
	}

	view := s.buildDashboard(time.Now())
	s.dashCache.Set(dashboardCacheKey, view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) buildDashboard(now time.Time) dashboardView {
	expenses := s.store.Expenses()
	partners := s.store.Partners()
	categories := s.store.Categories()

	split := core.FixedVariableSplit(expenses)

	recent := core.RecentExpenses(expenses, core.DefaultRecentLimit)
	recentViews := make([]expenseView, 0, len(recent))
	for _, e := range recent {
		recentViews = append(recentViews, s.toExpenseView(e))
	}

	return dashboardView{
		Total:          core.TotalToDate(expenses),
		MonthTotal:     core.MonthTotal(expenses, now),
		YearTotal:      core.YearTotal(expenses, now),
		ByCategory:     toNameTotalViews(core.ByCategory(expenses, categories)),
		ByPartner:      toNameTotalViews(core.ByPartner(expenses, partners)),
		MonthlySeries:  toMonthBucketViews(core.MonthlySeries(expenses, now)),
		FixedVariable:  fixedVariableView{Fixed: split.Fixed, Variable: split.Variable},
		TopProviders:   toNameTotalViews(core.TopProviders(expenses, core.DefaultProviderLimit)),
		RecentExpenses: recentViews,
		GeneratedAt:    now.UTC(),
	}
}

func (s *Server) handlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.PaymentMethods)
}

func toNameTotalViews(rows []core.NameTotal) []nameTotalView {
	out := make([]nameTotalView, 0, len(rows))
	for _, row := range rows {
		out = append(out, nameTotalView{Name: row.Name, Total: row.Total})
	}
	return out
}

func toMonthBucketViews(buckets []core.MonthBucket) []monthBucketView {
	out := make([]monthBucketView, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, monthBucketView{Month: b.Month, Year: b.Year, Total: b.Total})
	}
	return out
}
