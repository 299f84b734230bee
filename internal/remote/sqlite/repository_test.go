package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "spendtrack.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func testExpense(id string, day int, entered time.Time) core.Expense {
	e := core.Expense{
		ID:             id,
		Date:           core.NewDate(2025, 7, day),
		CategoryID:     "c-rent",
		Description:    "expense " + id,
		Amount:         decimal.NewFromInt(10),
		Currency:       core.CurrencyUSD,
		PaymentStatus:  core.StatusPaid,
		EntryTimestamp: entered,
	}
	e.DeriveCalendar()
	return e
}

func TestExpenseRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	in := testExpense("e1", 4, time.Date(2025, 7, 4, 9, 0, 0, 0, time.UTC))
	in.Amount = decimal.RequireFromString("12.50")
	in.Notes = "split with office"
	in.IsFixedCharge = true
	if err := repo.InsertExpense(ctx, in); err != nil {
		t.Fatalf("insert: %v", err)
	}

	listed, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(listed))
	}
	got := listed[0]
	if !got.Amount.Equal(in.Amount) {
		t.Fatalf("expected amount %s, got %s", in.Amount, got.Amount)
	}
	if !got.Date.Equal(in.Date.Time) || got.Month != "Jul" || got.Year != 2025 {
		t.Fatalf("date did not survive the round trip: %+v", got)
	}
	if !got.IsFixedCharge || got.Notes != in.Notes {
		t.Fatalf("fields did not survive the round trip: %+v", got)
	}
}

func TestListExpensesTieBreaksByEntryTimestamp(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// Three expenses on the same day, entered a minute apart.
	base := time.Date(2025, 7, 4, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"e-first", "e-second", "e-third"} {
		e := testExpense(id, 4, base.Add(time.Duration(i)*time.Minute))
		if err := repo.InsertExpense(ctx, e); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	listed, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"e-third", "e-second", "e-first"}
	if len(listed) != len(want) {
		t.Fatalf("expected %d expenses, got %d", len(want), len(listed))
	}
	for i, id := range want {
		if listed[i].ID != id {
			t.Fatalf("position %d expected %s, got %s", i, id, listed[i].ID)
		}
	}
}

func TestUpdateMissingExpense(t *testing.T) {
	repo := newTestRepository(t)
	err := repo.UpdateExpense(context.Background(), testExpense("ghost", 1, time.Now().UTC()))
	if err == nil {
		t.Fatalf("expected update of unknown id to fail")
	}
}
