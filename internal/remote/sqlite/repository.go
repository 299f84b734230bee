// Package sqlite persists the three collections in a local SQLite database.
// Amounts are stored as decimal strings and dates as ISO day strings so that
// rows survive round trips without float drift.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"spendtrack/internal/core"
)

type Repository struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and applies pending
// migrations before returning the repository.
func New(dbPath string) (*Repository, error) {
	if err := runMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

const expenseColumns = `id, date, month, year, category_id, provider, description,
	item_count, amount, currency, payment_status, paid_by_partner_id,
	payment_method, is_fixed_charge, notes, receipt_attachment, entry_timestamp`

func (r *Repository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	// entry_timestamp and id break same-date ties so the order survives restarts.
	rows, err := r.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY date DESC, entry_timestamp DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func (r *Repository) InsertExpense(ctx context.Context, e core.Expense) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expenseArgs(e)...)
	if err != nil {
		return fmt.Errorf("insert expense %s: %w", e.ID, err)
	}
	return nil
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx, `UPDATE expenses SET
		date = ?, month = ?, year = ?, category_id = ?, provider = ?,
		description = ?, item_count = ?, amount = ?, currency = ?,
		payment_status = ?, paid_by_partner_id = ?, payment_method = ?,
		is_fixed_charge = ?, notes = ?, receipt_attachment = ?, entry_timestamp = ?
		WHERE id = ?`,
		e.Date.Format(core.DateLayout), e.Month, e.Year, e.CategoryID, e.Provider,
		e.Description, e.ItemCount, e.Amount.String(), string(e.Currency),
		string(e.PaymentStatus), e.PaidByPartnerID, e.PaymentMethod,
		boolToInt(e.IsFixedCharge), e.Notes, e.ReceiptAttachment,
		e.EntryTimestamp.UTC().Format(time.RFC3339), e.ID)
	if err != nil {
		return fmt.Errorf("update expense %s: %w", e.ID, err)
	}
	return requireRow(res, "expense", e.ID)
}

func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	return requireRow(res, "expense", id)
}

func (r *Repository) ListPartners(ctx context.Context) ([]core.Partner, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email, role FROM partners ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	var out []core.Partner
	for rows.Next() {
		var p core.Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Role); err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	return out, nil
}

func (r *Repository) InsertPartner(ctx context.Context, p core.Partner) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO partners (id, name, email, role) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Email, p.Role)
	if err != nil {
		return fmt.Errorf("insert partner %s: %w", p.ID, err)
	}
	return nil
}

func (r *Repository) UpdatePartner(ctx context.Context, p core.Partner) error {
	res, err := r.db.ExecContext(ctx, `UPDATE partners SET name = ?, email = ?, role = ? WHERE id = ?`,
		p.Name, p.Email, p.Role, p.ID)
	if err != nil {
		return fmt.Errorf("update partner %s: %w", p.ID, err)
	}
	return requireRow(res, "partner", p.ID)
}

func (r *Repository) DeletePartner(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM partners WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete partner %s: %w", id, err)
	}
	return requireRow(res, "partner", id)
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, default_is_fixed FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var fixed int
		if err := rows.Scan(&c.ID, &c.Name, &fixed); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.DefaultIsFixed = fixed != 0
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (r *Repository) InsertCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO categories (id, name, default_is_fixed) VALUES (?, ?, ?)`,
		c.ID, c.Name, boolToInt(c.DefaultIsFixed))
	if err != nil {
		return fmt.Errorf("insert category %s: %w", c.ID, err)
	}
	return nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name = ?, default_is_fixed = ? WHERE id = ?`,
		c.Name, boolToInt(c.DefaultIsFixed), c.ID)
	if err != nil {
		return fmt.Errorf("update category %s: %w", c.ID, err)
	}
	return requireRow(res, "category", c.ID)
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return requireRow(res, "category", id)
}

func expenseArgs(e core.Expense) []any {
	return []any{
		e.ID, e.Date.Format(core.DateLayout), e.Month, e.Year, e.CategoryID,
		e.Provider, e.Description, e.ItemCount, e.Amount.String(),
		string(e.Currency), string(e.PaymentStatus), e.PaidByPartnerID,
		e.PaymentMethod, boolToInt(e.IsFixedCharge), e.Notes,
		e.ReceiptAttachment, e.EntryTimestamp.UTC().Format(time.RFC3339),
	}
}

func scanExpense(rows *sql.Rows) (core.Expense, error) {
	var (
		e          core.Expense
		dateStr    string
		amountStr  string
		currency   string
		status     string
		fixed      int
		enteredStr string
	)
	err := rows.Scan(&e.ID, &dateStr, &e.Month, &e.Year, &e.CategoryID,
		&e.Provider, &e.Description, &e.ItemCount, &amountStr, &currency,
		&status, &e.PaidByPartnerID, &e.PaymentMethod, &fixed, &e.Notes,
		&e.ReceiptAttachment, &enteredStr)
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}

	e.Date, err = core.ParseDate(dateStr)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: parse date %q: %w", e.ID, dateStr, err)
	}
	e.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: parse amount %q: %w", e.ID, amountStr, err)
	}
	e.EntryTimestamp, err = time.Parse(time.RFC3339, enteredStr)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: parse entry timestamp %q: %w", e.ID, enteredStr, err)
	}
	e.Currency = core.Currency(currency)
	e.PaymentStatus = core.PaymentStatus(status)
	e.IsFixedCharge = fixed != 0
	return e, nil
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: rows affected: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: not found", kind, id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
