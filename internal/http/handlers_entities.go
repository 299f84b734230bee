package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
)

// expenseRequest is the wire form of an expense mutation. isFixedCharge is a
// pointer so create can tell an absent field from an explicit false; only
// create falls back to the category default.
type expenseRequest struct {
	Date              string          `json:"date"`
	CategoryID        string          `json:"categoryId"`
	Provider          string          `json:"provider"`
	Description       string          `json:"description"`
	ItemCount         int             `json:"itemCount"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	PaymentStatus     string          `json:"paymentStatus"`
	PaidByPartnerID   string          `json:"paidByPartnerId"`
	PaymentMethod     string          `json:"paymentMethod"`
	IsFixedCharge     *bool           `json:"isFixedCharge"`
	Notes             string          `json:"notes"`
	ReceiptAttachment string          `json:"receiptAttachment"`
}

type expenseView struct {
	ID                string          `json:"id"`
	Date              string          `json:"date"`
	Month             string          `json:"month"`
	Year              int             `json:"year"`
	CategoryID        string          `json:"categoryId"`
	CategoryName      string          `json:"categoryName"`
	Provider          string          `json:"provider"`
	Description       string          `json:"description"`
	ItemCount         int             `json:"itemCount"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	PaymentStatus     string          `json:"paymentStatus"`
	PaidByPartnerID   string          `json:"paidByPartnerId"`
	PaidByPartnerName string          `json:"paidByPartnerName"`
	PaymentMethod     string          `json:"paymentMethod"`
	IsFixedCharge     bool            `json:"isFixedCharge"`
	Notes             string          `json:"notes,omitempty"`
	ReceiptAttachment string          `json:"receiptAttachment,omitempty"`
	EntryTimestamp    time.Time       `json:"entryTimestamp"`
}

type partnerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type partnerView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

type categoryRequest struct {
	Name           string `json:"name"`
	DefaultIsFixed bool   `json:"defaultIsFixed"`
}

type categoryView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DefaultIsFixed bool   `json:"defaultIsFixed"`
}

func toPartnerView(p core.Partner) partnerView {
	return partnerView{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role}
}

func toCategoryView(c core.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, DefaultIsFixed: c.DefaultIsFixed}
}

// toExpense builds the domain entity. Parse failures surface the matching
// validation sentinel so callers get a 422. An absent isFixedCharge reads as
// false; the category default is applied by handleCreateExpense only.
func (s *Server) toExpense(req expenseRequest) (core.Expense, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	currency, err := core.ParseCurrency(req.Currency)
	if err != nil {
		return core.Expense{}, err
	}
	status, err := core.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		return core.Expense{}, err
	}

	fixed := req.IsFixedCharge != nil && *req.IsFixedCharge

	return core.Expense{
		Date:              date,
		CategoryID:        req.CategoryID,
		Provider:          req.Provider,
		Description:       req.Description,
		ItemCount:         req.ItemCount,
		Amount:            req.Amount,
		Currency:          currency,
		PaymentStatus:     status,
		PaidByPartnerID:   req.PaidByPartnerID,
		PaymentMethod:     req.PaymentMethod,
		IsFixedCharge:     fixed,
		Notes:             req.Notes,
		ReceiptAttachment: req.ReceiptAttachment,
	}, nil
}

func (s *Server) toExpenseView(e core.Expense) expenseView {
	return expenseView{
		ID:                e.ID,
		Date:              e.Date.Format(core.DateLayout),
		Month:             e.Month,
		Year:              e.Year,
		CategoryID:        e.CategoryID,
		CategoryName:      s.store.CategoryName(e.CategoryID),
		Provider:          e.Provider,
		Description:       e.Description,
		ItemCount:         e.ItemCount,
		Amount:            e.Amount,
		Currency:          string(e.Currency),
		PaymentStatus:     string(e.PaymentStatus),
		PaidByPartnerID:   e.PaidByPartnerID,
		PaidByPartnerName: s.store.PartnerName(e.PaidByPartnerID),
		PaymentMethod:     e.PaymentMethod,
		IsFixedCharge:     e.IsFixedCharge,
		Notes:             e.Notes,
		ReceiptAttachment: e.ReceiptAttachment,
		EntryTimestamp:    e.EntryTimestamp,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses := s.store.Expenses()
	views := make([]expenseView, 0, len(expenses))
	for _, e := range expenses {
		views = append(views, s.toExpenseView(e))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := s.toExpense(req)
	if err != nil {
		writeMutationError(w, r, err)
		return
	}
	// The category default pre-fills isFixedCharge at creation time only.
	if req.IsFixedCharge == nil {
		if cat, ok := core.FindCategory(s.store.Categories(), func(c core.Category) bool {
			return c.ID == req.CategoryID
		}); ok {
			e.IsFixedCharge = cat.DefaultIsFixed
		}
	}
	stored, err := s.store.AddExpense(r.Context(), e)
	if err != nil {
		writeMutationError(w, r, err)
		return
	}
	s.invalidateDashboard()
	writeJSON(w, http.StatusCreated, s.toExpenseView(stored))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := s.toExpense(req)
	if err != nil {
		writeMutationError(w, r, err)
		return
	}
	e.ID = r.PathValue("id")
	stored, err := s.store.UpdateExpense(r.Context(), e)
	if err != nil {
		writeMutationError(w, r, err)
		return
	}
	s.invalidateDashboard()
	writeJSON(w, http.StatusOK, s.toExpenseView(stored))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeMutationError(w, r, err)
		return
	}
	s.invalidateDashboard()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPartners(w http.ResponseWriter, r *http.Request) {
	partners := s.store.Partners()
	views := make([]partnerView, 0, len(partners))
	for _, p := range partners {
		views = append(views, toPartnerView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreatePartner(w http.ResponseWriter, r *http.Request) {
	var req partnerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	stored, err := s.store.AddPartner(r.Context(), core.Partner{Name: req.Name, Email: req.Email, Role: req.Role})
	if err != nil {
		writeMutationError(w, r, err)
		return
	}
	s.invalidateDashboard()
	writeJSON(w, http.StatusCreated, toPartnerView(stored))
}

func (s *Server) handleUpdatePartner(w http.ResponseWriter, r *http.Request) {
	var req partnerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p := core.Partner{ID: r.PathValue("id"), Name: req.Name, Email: req.Email, Role: req.Role}
	stored, err := s.store.UpdatePartner(r.Context(), p)
	if err != nil {
		writeMutationError(w, r, err)
		return
	}
	s.invalidateDashboard()
	writeJSON(w, http.StatusOK, toPartnerView(stored))
}

func (s *Server) handleDeletePartner(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePartner(r.Context(), r.PathValue("id")); err != nil {
		writeMutationError(w, r, err)
		return
	}
	s.invalidateDashboard()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.store.Categories()
	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, toCategoryView(c))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	stored, err := s.store.AddCategory(r.Context(), core.Category{Name: req.Name, DefaultIsFixed: req.DefaultIsFixed})
	if err != nil {
		writeMutationError(w, r, err)
		return
	}
	s.invalidateDashboard()
	writeJSON(w, http.StatusCreated, toCategoryView(stored))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c := core.Category{ID: r.PathValue("id"), Name: req.Name, DefaultIsFixed: req.DefaultIsFixed}
	stored, err := s.store.UpdateCategory(r.Context(), c)
	if err != nil {
		writeMutationError(w, r, err)
		return
	}
	s.invalidateDashboard()
	writeJSON(w, http.StatusOK, toCategoryView(stored))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeMutationError(w, r, err)
		return
	}
	s.invalidateDashboard()
	w.WriteHeader(http.StatusNoContent)
}
