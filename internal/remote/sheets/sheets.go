// Package sheets backs the three collections with one tab each in a Google
// spreadsheet. Column A holds the entity id; rows are located by scanning
// that column, so tabs should stay in the low thousands of rows.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendtrack/internal/core"
	"spendtrack/internal/remote"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesTab   string
	partnersTab   string
	categoriesTab string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// Ensure interface conformance
var _ remote.Store = (*Client)(nil)

// NewFromEnv creates a spreadsheet-backed store using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional tab names: GOOGLE_EXPENSES_TAB (default "Expenses"),
// GOOGLE_PARTNERS_TAB (default "Partners"),
// GOOGLE_CATEGORIES_TAB (default "Categories").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	expensesTab := strings.TrimSpace(os.Getenv("GOOGLE_EXPENSES_TAB"))
	if expensesTab == "" {
		expensesTab = "Expenses"
	}
	partnersTab := strings.TrimSpace(os.Getenv("GOOGLE_PARTNERS_TAB"))
	if partnersTab == "" {
		partnersTab = "Partners"
	}
	categoriesTab := strings.TrimSpace(os.Getenv("GOOGLE_CATEGORIES_TAB"))
	if categoriesTab == "" {
		categoriesTab = "Categories"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		expensesTab:   expensesTab,
		partnersTab:   partnersTab,
		categoriesTab: categoriesTab,
		sheetIDs:      make(map[string]int64),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service", "credentials_size", len(credentialsJSON))
	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := c.readRows(ctx, c.expensesTab, "A2:Q")
	if err != nil {
		return nil, err
	}
	out := make([]core.Expense, 0, len(rows))
	for _, cols := range rows {
		e, err := expenseFromRow(cols)
		if err != nil {
			return nil, fmt.Errorf("tab %s: %w", c.expensesTab, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *Client) InsertExpense(ctx context.Context, e core.Expense) error {
	return c.appendRow(ctx, c.expensesTab, expenseToRow(e))
}

func (c *Client) UpdateExpense(ctx context.Context, e core.Expense) error {
	return c.updateRow(ctx, c.expensesTab, e.ID, "Q", expenseToRow(e))
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.deleteRow(ctx, c.expensesTab, id)
}

func (c *Client) ListPartners(ctx context.Context) ([]core.Partner, error) {
	rows, err := c.readRows(ctx, c.partnersTab, "A2:D")
	if err != nil {
		return nil, err
	}
	out := make([]core.Partner, 0, len(rows))
	for _, cols := range rows {
		if safeGet(cols, 0) == "" {
			continue
		}
		out = append(out, core.Partner{
			ID:    safeGet(cols, 0),
			Name:  safeGet(cols, 1),
			Email: safeGet(cols, 2),
			Role:  safeGet(cols, 3),
		})
	}
	return out, nil
}

func (c *Client) InsertPartner(ctx context.Context, p core.Partner) error {
	return c.appendRow(ctx, c.partnersTab, partnerToRow(p))
}

func (c *Client) UpdatePartner(ctx context.Context, p core.Partner) error {
	return c.updateRow(ctx, c.partnersTab, p.ID, "D", partnerToRow(p))
}

func (c *Client) DeletePartner(ctx context.Context, id string) error {
	return c.deleteRow(ctx, c.partnersTab, id)
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := c.readRows(ctx, c.categoriesTab, "A2:C")
	if err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(rows))
	for _, cols := range rows {
		if safeGet(cols, 0) == "" {
			continue
		}
		out = append(out, core.Category{
			ID:             safeGet(cols, 0),
			Name:           safeGet(cols, 1),
			DefaultIsFixed: parseBoolCell(safeGet(cols, 2)),
		})
	}
	return out, nil
}

func (c *Client) InsertCategory(ctx context.Context, cat core.Category) error {
	return c.appendRow(ctx, c.categoriesTab, categoryToRow(cat))
}

func (c *Client) UpdateCategory(ctx context.Context, cat core.Category) error {
	return c.updateRow(ctx, c.categoriesTab, cat.ID, "C", categoryToRow(cat))
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.deleteRow(ctx, c.categoriesTab, id)
}

// readRows fetches the data range of a tab as trimmed string cells.
func (c *Client) readRows(ctx context.Context, tab, span string) ([][]string, error) {
	rng := fmt.Sprintf("%s!%s", tab, span)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		out = append(out, toStrings(row))
	}
	return out, nil
}

func (c *Client) appendRow(ctx context.Context, tab string, cells []any) error {
	rng := fmt.Sprintf("%s!A:A", tab)
	vr := &gsheet.ValueRange{Values: [][]any{cells}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", tab, err)
	}
	return nil
}

func (c *Client) updateRow(ctx context.Context, tab, id, lastCol string, cells []any) error {
	rowNum, err := c.findRowByID(ctx, tab, id)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!A%d:%s%d", tab, rowNum, lastCol, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{cells}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) deleteRow(ctx context.Context, tab, id string) error {
	rowNum, err := c.findRowByID(ctx, tab, id)
	if err != nil {
		return err
	}
	sheetID, err := c.sheetID(ctx, tab)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowNum - 1),
					EndIndex:   int64(rowNum),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in %s: %w", rowNum, tab, err)
	}
	return nil
}

// findRowByID scans column A for id and returns the 1-based row number.
func (c *Client) findRowByID(ctx context.Context, tab, id string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", tab)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, row := range resp.Values {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("tab %s: id %s not found", tab, id)
}

// sheetID resolves and caches the numeric sheet id for a tab title.
func (c *Client) sheetID(ctx context.Context, tab string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.sheetIDs[tab]; ok {
		return id, nil
	}
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties(sheetId,title)").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}
	id, ok := c.sheetIDs[tab]
	if !ok {
		return 0, fmt.Errorf("tab %s not found in spreadsheet", tab)
	}
	return id, nil
}

func expenseToRow(e core.Expense) []any {
	return []any{
		e.ID, e.Date.Format(core.DateLayout), e.Month, e.Year, e.CategoryID,
		e.Provider, e.Description, e.ItemCount, e.Amount.String(),
		string(e.Currency), string(e.PaymentStatus), e.PaidByPartnerID,
		e.PaymentMethod, boolCell(e.IsFixedCharge), e.Notes,
		e.ReceiptAttachment, e.EntryTimestamp.UTC().Format(time.RFC3339),
	}
}

func expenseFromRow(cols []string) (core.Expense, error) {
	id := safeGet(cols, 0)
	if id == "" {
		return core.Expense{}, errors.New("row without id")
	}

	date, err := core.ParseDate(safeGet(cols, 1))
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: parse date %q: %w", id, safeGet(cols, 1), err)
	}
	year, err := strconv.Atoi(safeGet(cols, 3))
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: parse year %q: %w", id, safeGet(cols, 3), err)
	}
	itemCount := 0
	if s := safeGet(cols, 7); s != "" {
		itemCount, err = strconv.Atoi(s)
		if err != nil {
			return core.Expense{}, fmt.Errorf("expense %s: parse item count %q: %w", id, s, err)
		}
	}
	amount, err := decimal.NewFromString(normalizeNumberCell(safeGet(cols, 8)))
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: parse amount %q: %w", id, safeGet(cols, 8), err)
	}
	entered, err := time.Parse(time.RFC3339, safeGet(cols, 16))
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: parse entry timestamp %q: %w", id, safeGet(cols, 16), err)
	}

	return core.Expense{
		ID:                id,
		Date:              date,
		Month:             safeGet(cols, 2),
		Year:              year,
		CategoryID:        safeGet(cols, 4),
		Provider:          safeGet(cols, 5),
		Description:       safeGet(cols, 6),
		ItemCount:         itemCount,
		Amount:            amount,
		Currency:          core.Currency(safeGet(cols, 9)),
		PaymentStatus:     core.PaymentStatus(safeGet(cols, 10)),
		PaidByPartnerID:   safeGet(cols, 11),
		PaymentMethod:     safeGet(cols, 12),
		IsFixedCharge:     parseBoolCell(safeGet(cols, 13)),
		Notes:             safeGet(cols, 14),
		ReceiptAttachment: safeGet(cols, 15),
		EntryTimestamp:    entered,
	}, nil
}

func partnerToRow(p core.Partner) []any {
	return []any{p.ID, p.Name, p.Email, p.Role}
}

func categoryToRow(c core.Category) []any {
	return []any{c.ID, c.Name, boolCell(c.DefaultIsFixed)}
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func boolCell(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func parseBoolCell(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "1", "YES":
		return true
	}
	return false
}

// normalizeNumberCell turns a sheet-formatted number into a decimal string.
func normalizeNumberCell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
}
