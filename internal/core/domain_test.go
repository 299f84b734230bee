package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-07-04")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	month, year := d.MonthYear()
	if month != "Jul" || year != 2025 {
		t.Fatalf("expected Jul/2025, got %s/%d", month, year)
	}
	if got := d.Format(DateLayout); got != "2025-07-04" {
		t.Fatalf("expected round trip, got %s", got)
	}

	bads := []string{"", "04/07/2025", "2025-13-01", "yesterday"}
	for i, s := range bads {
		if _, err := ParseDate(s); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("case %d expected ErrInvalidDate, got %v", i, err)
		}
	}
}

func TestDateValidate(t *testing.T) {
	if err := NewDate(2025, 1, 1).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Date{Time: time.Time{}}).Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestDeriveCalendar(t *testing.T) {
	e := Expense{Date: NewDate(2025, 12, 31)}
	e.DeriveCalendar()
	if e.Month != "Dec" || e.Year != 2025 {
		t.Fatalf("expected Dec/2025, got %s/%d", e.Month, e.Year)
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:          NewDate(2025, 1, 1),
		Description:   "server invoice",
		CategoryID:    "cat-1",
		Amount:        decimal.NewFromInt(100),
		Currency:      CurrencyUSD,
		PaymentStatus: StatusPaid,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		mutate func(*Expense)
		want   error
	}{
		{func(e *Expense) { e.Date = Date{} }, ErrInvalidDate},
		{func(e *Expense) { e.Description = "  " }, ErrEmptyDescription},
		{func(e *Expense) { e.CategoryID = "" }, ErrMissingCategory},
		{func(e *Expense) { e.Amount = decimal.Zero }, ErrInvalidAmount},
		{func(e *Expense) { e.Amount = decimal.NewFromInt(-5) }, ErrInvalidAmount},
		{func(e *Expense) { e.Currency = "JPY" }, ErrUnknownCurrency},
		{func(e *Expense) { e.PaymentStatus = "Settled" }, ErrUnknownPaymentStatus},
		{func(e *Expense) { e.ItemCount = -1 }, ErrNegativeItemCount},
	}
	for i, tc := range cases {
		e := good
		tc.mutate(&e)
		if err := e.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	for _, s := range []string{"USD", "EUR", "GBP", "MAD", " MAD "} {
		if _, err := ParseCurrency(s); err != nil {
			t.Fatalf("expected %q ok, got %v", s, err)
		}
	}
	if _, err := ParseCurrency("CHF"); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency, got %v", err)
	}
}

func TestParsePaymentStatus(t *testing.T) {
	for _, s := range []string{"Paid", "Due", "Overdue", "Scheduled", "Pending Reimbursement"} {
		if _, err := ParsePaymentStatus(s); err != nil {
			t.Fatalf("expected %q ok, got %v", s, err)
		}
	}
	if _, err := ParsePaymentStatus("paid"); !errors.Is(err, ErrUnknownPaymentStatus) {
		t.Fatalf("expected ErrUnknownPaymentStatus for wrong case, got %v", err)
	}
}

func TestPartnerValidate(t *testing.T) {
	if err := (Partner{Name: "Zakaria"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Partner{Name: "  "}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestSentinelPredicates(t *testing.T) {
	if !(Partner{Name: "Unassigned / Company"}).IsUnassignedSentinel() {
		t.Fatalf("expected exact name to match")
	}
	if (Partner{Name: "unassigned / company"}).IsUnassignedSentinel() {
		t.Fatalf("partner sentinel must match exactly")
	}

	for _, name := range []string{"Miscellaneous", "miscellaneous", " MISCELLANEOUS "} {
		if !(Category{Name: name}).IsMiscellaneousSentinel() {
			t.Fatalf("expected %q to match sentinel", name)
		}
	}
	if (Category{Name: "Misc"}).IsMiscellaneousSentinel() {
		t.Fatalf("prefix must not match sentinel")
	}
}
