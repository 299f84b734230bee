package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
	"spendtrack/internal/remote/memory"
	"spendtrack/internal/store"
)

func testServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	r := memory.New()

	partners := []core.Partner{
		{ID: "p-zak", Name: "Zakaria", Role: "CEO"},
		{ID: "p-sent", Name: core.UnassignedPartnerName},
	}
	categories := []core.Category{
		{ID: "c-rent", Name: "Rent", DefaultIsFixed: true},
		{ID: "c-misc", Name: core.MiscellaneousCategoryName},
	}
	for _, p := range partners {
		if err := r.InsertPartner(ctx, p); err != nil {
			t.Fatalf("insert partner: %v", err)
		}
	}
	for _, c := range categories {
		if err := r.InsertCategory(ctx, c); err != nil {
			t.Fatalf("insert category: %v", err)
		}
	}
	seed := core.Expense{
		ID:              "e1",
		Date:            core.NewDate(2025, 7, 1),
		CategoryID:      "c-rent",
		Provider:        "Landlord",
		Description:     "rent july",
		Amount:          decimal.NewFromInt(100),
		Currency:        core.CurrencyUSD,
		PaymentStatus:   core.StatusPaid,
		PaidByPartnerID: "p-zak",
		IsFixedCharge:   true,
	}
	seed.DeriveCalendar()
	if err := r.InsertExpense(ctx, seed); err != nil {
		t.Fatalf("insert expense: %v", err)
	}

	st := store.New(r, nil)
	if err := st.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	s := NewServer(":0", st, time.Minute)
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	})
	return s, r
}

func doJSON(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func TestListExpenses(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(s, http.MethodGet, "/api/expenses", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var views []expenseView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(views))
	}
	if views[0].CategoryName != "Rent" || views[0].PaidByPartnerName != "Zakaria" {
		t.Fatalf("expected resolved names, got %q/%q", views[0].CategoryName, views[0].PaidByPartnerName)
	}
}

func TestCreateExpense(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(s, http.MethodPost, "/api/expenses", map[string]any{
		"date":          "2025-08-09",
		"categoryId":    "c-rent",
		"description":   "august rent",
		"amount":        "250",
		"currency":      "MAD",
		"paymentStatus": "Due",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var view expenseView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.ID == "" {
		t.Fatalf("expected generated id")
	}
	if view.Month != "Aug" || view.Year != 2025 {
		t.Fatalf("expected derived Aug/2025, got %s/%d", view.Month, view.Year)
	}
	// isFixedCharge omitted: category default applies.
	if !view.IsFixedCharge {
		t.Fatalf("expected category default to set fixed charge")
	}
}

func TestCreateExpenseExplicitFixedOverride(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(s, http.MethodPost, "/api/expenses", map[string]any{
		"date":          "2025-08-09",
		"categoryId":    "c-rent",
		"description":   "one-off",
		"amount":        "10",
		"currency":      "USD",
		"paymentStatus": "Paid",
		"isFixedCharge": false,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var view expenseView
	_ = json.Unmarshal(rec.Body.Bytes(), &view)
	if view.IsFixedCharge {
		t.Fatalf("explicit false must win over the category default")
	}
}

func TestUpdateExpenseIgnoresCategoryFixedDefault(t *testing.T) {
	s, _ := testServer(t)
	// e1 sits under c-rent, whose default is fixed. A full-record update that
	// omits isFixedCharge must store false, not re-apply the category default.
	rec := doJSON(s, http.MethodPut, "/api/expenses/e1", map[string]any{
		"date":            "2025-07-01",
		"categoryId":      "c-rent",
		"provider":        "Landlord",
		"description":     "rent july",
		"amount":          "100",
		"currency":        "USD",
		"paymentStatus":   "Paid",
		"paidByPartnerId": "p-zak",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var view expenseView
	_ = json.Unmarshal(rec.Body.Bytes(), &view)
	if view.IsFixedCharge {
		t.Fatalf("update with absent isFixedCharge must not take the category default")
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	s, _ := testServer(t)
	cases := []map[string]any{
		{"date": "2025-08-09", "categoryId": "c-rent", "description": "x", "amount": "0", "currency": "USD", "paymentStatus": "Paid"},
		{"date": "not-a-date", "categoryId": "c-rent", "description": "x", "amount": "5", "currency": "USD", "paymentStatus": "Paid"},
		{"date": "2025-08-09", "categoryId": "c-rent", "description": "x", "amount": "5", "currency": "JPY", "paymentStatus": "Paid"},
		{"date": "2025-08-09", "categoryId": "c-rent", "description": "x", "amount": "5", "currency": "USD", "paymentStatus": "Settled"},
	}
	for i, body := range cases {
		rec := doJSON(s, http.MethodPost, "/api/expenses", body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("case %d expected 422, got %d: %s", i, rec.Code, rec.Body.String())
		}
	}
}

func TestUpdateExpenseNotFound(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(s, http.MethodPut, "/api/expenses/ghost", map[string]any{
		"date":          "2025-08-09",
		"categoryId":    "c-rent",
		"description":   "x",
		"amount":        "5",
		"currency":      "USD",
		"paymentStatus": "Paid",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDeletePartnerCascade(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(s, http.MethodDelete, "/api/partners/p-zak", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(s, http.MethodGet, "/api/expenses", nil)
	var views []expenseView
	_ = json.Unmarshal(rec.Body.Bytes(), &views)
	if views[0].PaidByPartnerID != "p-sent" {
		t.Fatalf("expected reassignment to sentinel, got %q", views[0].PaidByPartnerID)
	}
	if views[0].PaidByPartnerName != core.UnassignedPartnerName {
		t.Fatalf("expected sentinel name, got %q", views[0].PaidByPartnerName)
	}
}

func TestDashboard(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(s, http.MethodGet, "/api/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var view dashboardView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !view.Total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected total 100, got %s", view.Total)
	}
	if len(view.MonthlySeries) != 12 {
		t.Fatalf("expected 12 series buckets, got %d", len(view.MonthlySeries))
	}
	if !view.FixedVariable.Fixed.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected fixed 100, got %s", view.FixedVariable.Fixed)
	}
}

func TestDashboardInvalidatedByMutation(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(s, http.MethodGet, "/api/dashboard", nil)
	var before dashboardView
	_ = json.Unmarshal(rec.Body.Bytes(), &before)

	rec = doJSON(s, http.MethodPost, "/api/expenses", map[string]any{
		"date":          time.Now().UTC().Format(core.DateLayout),
		"categoryId":    "c-misc",
		"description":   "fresh spend",
		"amount":        "33",
		"currency":      "USD",
		"paymentStatus": "Paid",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(s, http.MethodGet, "/api/dashboard", nil)
	var after dashboardView
	_ = json.Unmarshal(rec.Body.Bytes(), &after)
	if !after.Total.Equal(before.Total.Add(decimal.NewFromInt(33))) {
		t.Fatalf("expected total %s, got %s", before.Total.Add(decimal.NewFromInt(33)), after.Total)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(s, http.MethodGet, "/api/expenses", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected DENY, got %q", got)
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	s, _ := testServer(t)

	limited := false
	for i := 0; i < 70; i++ {
		rec := doJSON(s, http.MethodPost, "/api/categories", map[string]any{
			"name": "cat " + strconv.Itoa(i),
		})
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("expected rate limit to trip within 70 mutations")
	}

	// Reads stay unlimited.
	rec := doJSON(s, http.MethodGet, "/api/expenses", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected reads unaffected, got %d", rec.Code)
	}
}

func TestPaymentMethods(t *testing.T) {
	s, _ := testServer(t)
	rec := doJSON(s, http.MethodGet, "/api/payment-methods", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var methods []string
	if err := json.Unmarshal(rec.Body.Bytes(), &methods); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(methods) == 0 {
		t.Fatalf("expected non-empty method list")
	}
}

func TestBadRequestBody(t *testing.T) {
	s, _ := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
