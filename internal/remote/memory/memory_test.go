package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
)

func TestExpenseRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	e := core.Expense{ID: "e1", Description: "srv", Amount: decimal.NewFromInt(10)}
	if err := s.InsertExpense(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.ListExpenses(ctx)
	if err != nil || len(got) != 1 || got[0].ID != "e1" {
		t.Fatalf("list: %v %v", got, err)
	}

	e.Description = "server"
	if err := s.UpdateExpense(ctx, e); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = s.ListExpenses(ctx)
	if got[0].Description != "server" {
		t.Fatalf("update not applied: %q", got[0].Description)
	}

	if err := s.DeleteExpense(ctx, "e1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = s.ListExpenses(ctx)
	if len(got) != 0 {
		t.Fatalf("expected empty after delete, got %d", len(got))
	}
}

func TestUnknownIDs(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.UpdateExpense(ctx, core.Expense{ID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeletePartner(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteCategory(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFailNextConsumedOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	s.FailNext(boom)
	if err := s.InsertPartner(ctx, core.Partner{ID: "p1", Name: "Z"}); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	// Failure must not persist past one call.
	if err := s.InsertPartner(ctx, core.Partner{ID: "p1", Name: "Z"}); err != nil {
		t.Fatalf("expected second call ok, got %v", err)
	}
	got, _ := s.ListPartners(ctx)
	if len(got) != 1 {
		t.Fatalf("failed insert must not apply, got %d partners", len(got))
	}
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.InsertCategory(ctx, core.Category{ID: "c1", Name: "Rent"})

	got, _ := s.ListCategories(ctx)
	got[0].Name = "mutated"

	again, _ := s.ListCategories(ctx)
	if again[0].Name != "Rent" {
		t.Fatalf("list exposed internal slice")
	}
}
