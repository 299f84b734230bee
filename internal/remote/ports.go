package remote

import (
	"context"

	"spendtrack/internal/core"
)

// Ports for the persistence boundary. Each collection is reached through the
// same four primitives: select-all, insert-one, update-by-id, delete-by-id.
// Adapters must treat entities as full-record replacements on update.
type (
	ExpenseStore interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		InsertExpense(ctx context.Context, e core.Expense) error
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id string) error
	}

	PartnerStore interface {
		ListPartners(ctx context.Context) ([]core.Partner, error)
		InsertPartner(ctx context.Context, p core.Partner) error
		UpdatePartner(ctx context.Context, p core.Partner) error
		DeletePartner(ctx context.Context, id string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		InsertCategory(ctx context.Context, c core.Category) error
		UpdateCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, id string) error
	}

	// Store is the full remote persistence surface the entity store needs.
	Store interface {
		ExpenseStore
		PartnerStore
		CategoryStore
	}
)
