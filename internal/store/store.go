package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"spendtrack/internal/core"
	"spendtrack/internal/events"
	"spendtrack/internal/remote"
)

// Collection names as used in entity events and logs.
const (
	collectionExpenses   = "expenses"
	collectionPartners   = "partners"
	collectionCategories = "categories"
)

// ErrNotFound is returned by updates and deletes that reference an id absent
// from the loaded collections.
var ErrNotFound = errors.New("entity not found")

// Publisher receives mutation notifications. *events.Publisher satisfies it;
// a nil Publisher disables publishing.
type Publisher interface {
	Publish(ctx context.Context, collection, action, id string) error
}

// Store holds the three entity collections in memory and keeps them
// consistent with a remote persistence backend. Every mutation writes to the
// remote first; if that fails the in-memory state is left untouched, so reads
// always reflect the last successfully persisted state. All mutations are
// expected to come from a single logical actor; reads are safe concurrently.
type Store struct {
	mu     sync.RWMutex
	remote remote.Store
	pub    Publisher

	expenses   []core.Expense
	partners   []core.Partner
	categories []core.Category
}

func New(r remote.Store, pub Publisher) *Store {
	return &Store{remote: r, pub: pub}
}

// Load bootstraps the store. When the remote reports zero partners the
// built-in seed dataset is inserted first (all three collections, in full),
// then the collections are fetched in parallel. Load must complete before any
// read is served.
func (s *Store) Load(ctx context.Context) error {
	existing, err := s.remote.ListPartners(ctx)
	if err != nil {
		return fmt.Errorf("check partners: %w", err)
	}
	if len(existing) == 0 {
		if err := s.seed(ctx); err != nil {
			return fmt.Errorf("seed remote store: %w", err)
		}
	}

	var (
		expenses   []core.Expense
		partners   []core.Partner
		categories []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.remote.ListExpenses(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		partners, err = s.remote.ListPartners(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.remote.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load collections: %w", err)
	}

	sortExpensesByDateDesc(expenses)

	s.mu.Lock()
	s.expenses = expenses
	s.partners = partners
	s.categories = categories
	s.mu.Unlock()

	slog.InfoContext(ctx, "Store loaded",
		"expenses", len(expenses),
		"partners", len(partners),
		"categories", len(categories),
		"seeded", len(existing) == 0)
	return nil
}

func (s *Store) seed(ctx context.Context) error {
	partners, categories, expenses := seedData()
	slog.InfoContext(ctx, "Remote store empty, seeding initial dataset",
		"partners", len(partners),
		"categories", len(categories),
		"expenses", len(expenses))

	for _, p := range partners {
		if err := s.remote.InsertPartner(ctx, p); err != nil {
			return fmt.Errorf("insert partner %q: %w", p.Name, err)
		}
	}
	for _, c := range categories {
		if err := s.remote.InsertCategory(ctx, c); err != nil {
			return fmt.Errorf("insert category %q: %w", c.Name, err)
		}
	}
	for _, e := range expenses {
		if err := s.remote.InsertExpense(ctx, e); err != nil {
			return fmt.Errorf("insert expense %q: %w", e.Description, err)
		}
	}
	return nil
}

// Expenses returns a snapshot of the expense collection in display order
// (date descending, newest-written first on equal dates).
func (s *Store) Expenses() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Expense(nil), s.expenses...)
}

func (s *Store) Partners() []core.Partner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Partner(nil), s.partners...)
}

func (s *Store) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category(nil), s.categories...)
}

// CategoryName resolves a category id against the current snapshot.
func (s *Store) CategoryName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.CategoryName(s.categories, id)
}

// PartnerName resolves a partner id against the current snapshot.
func (s *Store) PartnerName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.PartnerName(s.partners, id)
}

// AddExpense assigns a fresh id, derives month/year from the date, stamps the
// entry timestamp and persists the expense. The stored record is returned.
func (s *Store) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	e.DeriveCalendar()
	e.EntryTimestamp = time.Now().UTC()
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	if err := s.remote.InsertExpense(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Remote insert failed, expense not applied", "error", err, "description", e.Description)
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	s.mu.Lock()
	s.expenses = append([]core.Expense{e}, s.expenses...)
	sortExpensesByDateDesc(s.expenses)
	s.mu.Unlock()

	s.publish(ctx, collectionExpenses, events.ActionCreated, e.ID)
	return e, nil
}

// UpdateExpense replaces an expense by id. Month/year are re-derived and the
// entry timestamp is overwritten with the current instant.
func (s *Store) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.DeriveCalendar()
	e.EntryTimestamp = time.Now().UTC()
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if !s.hasExpense(e.ID) {
		return core.Expense{}, ErrNotFound
	}

	if err := s.remote.UpdateExpense(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Remote update failed, expense not applied", "error", err, "id", e.ID)
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	s.mu.Lock()
	for i := range s.expenses {
		if s.expenses[i].ID == e.ID {
			s.expenses[i] = e
			break
		}
	}
	sortExpensesByDateDesc(s.expenses)
	s.mu.Unlock()

	s.publish(ctx, collectionExpenses, events.ActionUpdated, e.ID)
	return e, nil
}

// DeleteExpense removes an expense by id.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	if !s.hasExpense(id) {
		return ErrNotFound
	}
	if err := s.remote.DeleteExpense(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Remote delete failed, expense kept", "error", err, "id", id)
		return fmt.Errorf("delete expense: %w", err)
	}

	s.mu.Lock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.publish(ctx, collectionExpenses, events.ActionDeleted, id)
	return nil
}

// AddPartner assigns a fresh id and persists the partner.
func (s *Store) AddPartner(ctx context.Context, p core.Partner) (core.Partner, error) {
	p.ID = uuid.NewString()
	if err := p.Validate(); err != nil {
		return core.Partner{}, err
	}

	if err := s.remote.InsertPartner(ctx, p); err != nil {
		slog.ErrorContext(ctx, "Remote insert failed, partner not applied", "error", err, "name", p.Name)
		return core.Partner{}, fmt.Errorf("insert partner: %w", err)
	}

	s.mu.Lock()
	s.partners = append(s.partners, p)
	s.mu.Unlock()

	s.publish(ctx, collectionPartners, events.ActionCreated, p.ID)
	return p, nil
}

// UpdatePartner replaces a partner by id.
func (s *Store) UpdatePartner(ctx context.Context, p core.Partner) (core.Partner, error) {
	if err := p.Validate(); err != nil {
		return core.Partner{}, err
	}
	if !s.hasPartner(p.ID) {
		return core.Partner{}, ErrNotFound
	}

	if err := s.remote.UpdatePartner(ctx, p); err != nil {
		slog.ErrorContext(ctx, "Remote update failed, partner not applied", "error", err, "id", p.ID)
		return core.Partner{}, fmt.Errorf("update partner: %w", err)
	}

	s.mu.Lock()
	for i := range s.partners {
		if s.partners[i].ID == p.ID {
			s.partners[i] = p
			break
		}
	}
	s.mu.Unlock()

	s.publish(ctx, collectionPartners, events.ActionUpdated, p.ID)
	return p, nil
}

// DeletePartner reassigns every expense attributed to the partner to the
// "Unassigned / Company" sentinel (or clears the attribution when no sentinel
// exists), then removes the partner. Reassignment happens first so no expense
// ever references an already-deleted partner.
func (s *Store) DeletePartner(ctx context.Context, id string) error {
	if !s.hasPartner(id) {
		return ErrNotFound
	}

	s.mu.RLock()
	sentinel, ok := core.FindPartner(s.partners, func(p core.Partner) bool {
		return p.IsUnassignedSentinel() && p.ID != id
	})
	s.mu.RUnlock()

	newRef := ""
	if ok {
		newRef = sentinel.ID
	} else {
		slog.WarnContext(ctx, "Sentinel partner missing, clearing attributions", "deleted_id", id)
	}

	n, err := s.reassignExpenses(ctx,
		func(e core.Expense) bool { return e.PaidByPartnerID == id },
		func(e *core.Expense) { e.PaidByPartnerID = newRef },
	)
	if err != nil {
		return fmt.Errorf("reassign expenses for partner: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Reassigned expenses from deleted partner", "count", n, "sentinel_found", ok)
	}

	if err := s.remote.DeletePartner(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Remote delete failed, partner kept", "error", err, "id", id)
		return fmt.Errorf("delete partner: %w", err)
	}

	s.mu.Lock()
	for i := range s.partners {
		if s.partners[i].ID == id {
			s.partners = append(s.partners[:i], s.partners[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.publish(ctx, collectionPartners, events.ActionDeleted, id)
	return nil
}

// AddCategory assigns a fresh id and persists the category.
func (s *Store) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = uuid.NewString()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	if err := s.remote.InsertCategory(ctx, c); err != nil {
		slog.ErrorContext(ctx, "Remote insert failed, category not applied", "error", err, "name", c.Name)
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}

	s.mu.Lock()
	s.categories = append(s.categories, c)
	s.mu.Unlock()

	s.publish(ctx, collectionCategories, events.ActionCreated, c.ID)
	return c, nil
}

// UpdateCategory replaces a category by id.
func (s *Store) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if !s.hasCategory(c.ID) {
		return core.Category{}, ErrNotFound
	}

	if err := s.remote.UpdateCategory(ctx, c); err != nil {
		slog.ErrorContext(ctx, "Remote update failed, category not applied", "error", err, "id", c.ID)
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}

	s.mu.Lock()
	for i := range s.categories {
		if s.categories[i].ID == c.ID {
			s.categories[i] = c
			break
		}
	}
	s.mu.Unlock()

	s.publish(ctx, collectionCategories, events.ActionUpdated, c.ID)
	return c, nil
}

// DeleteCategory reassigns every referencing expense to the "Miscellaneous"
// sentinel category (matched case-insensitively, or an unset marker when
// absent), then removes the category.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if !s.hasCategory(id) {
		return ErrNotFound
	}

	s.mu.RLock()
	sentinel, ok := core.FindCategory(s.categories, func(c core.Category) bool {
		return c.IsMiscellaneousSentinel() && c.ID != id
	})
	s.mu.RUnlock()

	newRef := ""
	if ok {
		newRef = sentinel.ID
	} else {
		slog.WarnContext(ctx, "Sentinel category missing, clearing references", "deleted_id", id)
	}

	n, err := s.reassignExpenses(ctx,
		func(e core.Expense) bool { return e.CategoryID == id },
		func(e *core.Expense) { e.CategoryID = newRef },
	)
	if err != nil {
		return fmt.Errorf("reassign expenses for category: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Reassigned expenses from deleted category", "count", n, "sentinel_found", ok)
	}

	if err := s.remote.DeleteCategory(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Remote delete failed, category kept", "error", err, "id", id)
		return fmt.Errorf("delete category: %w", err)
	}

	s.mu.Lock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.publish(ctx, collectionCategories, events.ActionDeleted, id)
	return nil
}

// reassignExpenses is the generic cascade policy behind both deletions: every
// expense matching match is rewritten with assign, remote first, memory after
// each successful write. It stops at the first remote failure, leaving memory
// consistent with what was persisted so far, and returns the rewritten count.
// Each rewrite is announced as an expense update so event consumers see the
// cascade, not just the delete that triggered it.
func (s *Store) reassignExpenses(ctx context.Context, match func(core.Expense) bool, assign func(*core.Expense)) (int, error) {
	snapshot := s.Expenses()

	count := 0
	for _, e := range snapshot {
		if !match(e) {
			continue
		}
		updated := e
		assign(&updated)
		if err := s.remote.UpdateExpense(ctx, updated); err != nil {
			return count, fmt.Errorf("rewrite expense %s: %w", e.ID, err)
		}
		s.mu.Lock()
		for i := range s.expenses {
			if s.expenses[i].ID == updated.ID {
				s.expenses[i] = updated
				break
			}
		}
		s.mu.Unlock()
		s.publish(ctx, collectionExpenses, events.ActionUpdated, updated.ID)
		count++
	}
	return count, nil
}

func (s *Store) publish(ctx context.Context, collection, action, id string) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, collection, action, id); err != nil {
		// Notifications are best-effort; the mutation already succeeded.
		slog.WarnContext(ctx, "Entity event publish failed", "error", err, "collection", collection, "action", action, "id", id)
	}
}

func (s *Store) hasExpense(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := core.FindExpense(s.expenses, func(e core.Expense) bool { return e.ID == id })
	return ok
}

func (s *Store) hasPartner(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := core.FindPartner(s.partners, func(p core.Partner) bool { return p.ID == id })
	return ok
}

func (s *Store) hasCategory(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := core.FindCategory(s.categories, func(c core.Category) bool { return c.ID == id })
	return ok
}

func sortExpensesByDateDesc(expenses []core.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date.Time)
	})
}
