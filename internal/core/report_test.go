package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func expense(date Date, categoryID, provider string, amount int64, fixed bool, partnerID string) Expense {
	e := Expense{
		Date:            date,
		CategoryID:      categoryID,
		Provider:        provider,
		Description:     "x",
		Amount:          decimal.NewFromInt(amount),
		Currency:        CurrencyUSD,
		PaymentStatus:   StatusPaid,
		PaidByPartnerID: partnerID,
		IsFixedCharge:   fixed,
	}
	e.DeriveCalendar()
	return e
}

func TestTotalToDate(t *testing.T) {
	expenses := []Expense{
		expense(NewDate(2025, 6, 1), "c1", "", 100, true, ""),
		expense(NewDate(2025, 7, 1), "c1", "", 50, false, ""),
	}
	if got := TotalToDate(expenses); !got.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected 150, got %s", got)
	}
	if got := TotalToDate(nil); !got.Equal(decimal.Zero) {
		t.Fatalf("expected zero for empty input, got %s", got)
	}
}

func TestMonthAndYearTotals(t *testing.T) {
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	expenses := []Expense{
		expense(NewDate(2025, 7, 1), "c1", "", 40, false, ""),
		expense(NewDate(2025, 7, 31), "c1", "", 10, false, ""),
		expense(NewDate(2025, 6, 30), "c1", "", 5, false, ""),
		expense(NewDate(2024, 7, 1), "c1", "", 100, false, ""), // same month, prior year
	}
	if got := MonthTotal(expenses, now); !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected month total 50, got %s", got)
	}
	if got := YearTotal(expenses, now); !got.Equal(decimal.NewFromInt(55)) {
		t.Fatalf("expected year total 55, got %s", got)
	}
}

func TestByCategory(t *testing.T) {
	categories := []Category{
		{ID: "c1", Name: "Rent"},
		{ID: "c2", Name: "Servers"},
		{ID: "c3", Name: "Travel"}, // no expenses
	}
	expenses := []Expense{
		expense(NewDate(2025, 7, 1), "c1", "", 30, false, ""),
		expense(NewDate(2025, 7, 2), "c2", "", 100, false, ""),
		expense(NewDate(2025, 7, 3), "c1", "", 20, false, ""),
	}
	rows := ByCategory(expenses, categories)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "Servers" || !rows[0].Total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected Servers/100 first, got %s/%s", rows[0].Name, rows[0].Total)
	}
	if rows[1].Name != "Rent" || !rows[1].Total.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected Rent/50 second, got %s/%s", rows[1].Name, rows[1].Total)
	}
}

func TestByCategoryStableTies(t *testing.T) {
	categories := []Category{
		{ID: "c1", Name: "Alpha"},
		{ID: "c2", Name: "Beta"},
	}
	expenses := []Expense{
		expense(NewDate(2025, 7, 1), "c1", "", 10, false, ""),
		expense(NewDate(2025, 7, 1), "c2", "", 10, false, ""),
	}
	rows := ByCategory(expenses, categories)
	if rows[0].Name != "Alpha" || rows[1].Name != "Beta" {
		t.Fatalf("equal totals must keep category order, got %s then %s", rows[0].Name, rows[1].Name)
	}
}

func TestByPartner(t *testing.T) {
	partners := []Partner{
		{ID: "p1", Name: "Zakaria"},
		{ID: "p2", Name: "Naoufal"},
	}
	expenses := []Expense{
		expense(NewDate(2025, 7, 1), "c1", "", 70, false, "p1"),
		expense(NewDate(2025, 7, 2), "c1", "", 30, false, ""),   // unattributed
		expense(NewDate(2025, 7, 3), "c1", "", 25, false, "p9"), // dangling ref
	}
	rows := ByPartner(expenses, partners)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Name != "Zakaria" || !rows[0].Total.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected Zakaria/70, got %s/%s", rows[0].Name, rows[0].Total)
	}

	attributed := decimal.Zero
	for _, r := range rows {
		attributed = attributed.Add(r.Total)
	}
	if attributed.GreaterThan(TotalToDate(expenses)) {
		t.Fatalf("attributed sum %s exceeds total %s", attributed, TotalToDate(expenses))
	}
}

func TestMonthlySeries(t *testing.T) {
	now := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	expenses := []Expense{
		expense(NewDate(2025, 7, 1), "c1", "", 10, false, ""),
		expense(NewDate(2025, 4, 20), "c1", "", 25, false, ""),
		expense(NewDate(2024, 8, 5), "c1", "", 7, false, ""),  // oldest bucket
		expense(NewDate(2024, 7, 5), "c1", "", 99, false, ""), // outside window
	}
	buckets := MonthlySeries(expenses, now)
	if len(buckets) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(buckets))
	}
	if buckets[0].Month != "Aug" || buckets[0].Year != 2024 {
		t.Fatalf("expected first bucket Aug/2024, got %s/%d", buckets[0].Month, buckets[0].Year)
	}
	if buckets[11].Month != "Jul" || buckets[11].Year != 2025 {
		t.Fatalf("expected last bucket Jul/2025, got %s/%d", buckets[11].Month, buckets[11].Year)
	}
	if !buckets[0].Total.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("expected Aug/2024 total 7, got %s", buckets[0].Total)
	}
	if !buckets[11].Total.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected Jul/2025 total 10, got %s", buckets[11].Total)
	}
	// April sits 3 back from July
	if !buckets[8].Total.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected Apr/2025 total 25, got %s", buckets[8].Total)
	}
	zeroMonths := 0
	for _, b := range buckets {
		if b.Total.Equal(decimal.Zero) {
			zeroMonths++
		}
	}
	if zeroMonths != 9 {
		t.Fatalf("expected 9 empty buckets, got %d", zeroMonths)
	}
}

func TestMonthlySeriesEndOfMonthNow(t *testing.T) {
	// Jan 31 must not skip short months when walking back.
	now := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	buckets := MonthlySeries(nil, now)
	if buckets[0].Month != "Feb" || buckets[0].Year != 2024 {
		t.Fatalf("expected first bucket Feb/2024, got %s/%d", buckets[0].Month, buckets[0].Year)
	}
	seen := make(map[string]bool)
	for _, b := range buckets {
		key := bucketKey(b.Month, b.Year)
		if seen[key] {
			t.Fatalf("duplicate bucket %s/%d", b.Month, b.Year)
		}
		seen[key] = true
	}
}

func TestFixedVariableSplit(t *testing.T) {
	expenses := []Expense{
		expense(NewDate(2025, 7, 1), "c1", "", 100, true, ""),
		expense(NewDate(2025, 7, 2), "c1", "", 50, false, ""),
	}
	split := FixedVariableSplit(expenses)
	if !split.Fixed.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected fixed 100, got %s", split.Fixed)
	}
	if !split.Variable.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected variable 50, got %s", split.Variable)
	}
}

func TestTopProviders(t *testing.T) {
	expenses := []Expense{
		expense(NewDate(2025, 7, 1), "c1", "hetzner", 10, false, ""),
		expense(NewDate(2025, 7, 2), "c1", "scaleway", 200, false, ""),
		expense(NewDate(2025, 7, 3), "c1", "hetzner", 40, false, ""),
		expense(NewDate(2025, 7, 4), "c1", "", 999, false, ""), // no provider
		expense(NewDate(2025, 7, 5), "c1", "ghostnet", 30, false, ""),
	}
	rows := TopProviders(expenses, 2)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "scaleway" || !rows[0].Total.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected scaleway/200 first, got %s/%s", rows[0].Name, rows[0].Total)
	}
	if rows[1].Name != "hetzner" || !rows[1].Total.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected hetzner/50 second, got %s/%s", rows[1].Name, rows[1].Total)
	}
}

func TestRecentExpenses(t *testing.T) {
	a := expense(NewDate(2025, 7, 3), "c1", "", 1, false, "")
	b := expense(NewDate(2025, 7, 5), "c1", "", 2, false, "")
	c := expense(NewDate(2025, 7, 5), "c1", "", 3, false, "")
	d := expense(NewDate(2025, 7, 1), "c1", "", 4, false, "")

	out := RecentExpenses([]Expense{a, b, c, d}, 3)
	if len(out) != 3 {
		t.Fatalf("expected 3, got %d", len(out))
	}
	// b and c share a date; input order must be preserved between them.
	if !out[0].Amount.Equal(b.Amount) || !out[1].Amount.Equal(c.Amount) || !out[2].Amount.Equal(a.Amount) {
		t.Fatalf("unexpected order: %s %s %s", out[0].Amount, out[1].Amount, out[2].Amount)
	}

	if got := RecentExpenses([]Expense{a}, 10); len(got) != 1 {
		t.Fatalf("limit above length must return all, got %d", len(got))
	}
}
