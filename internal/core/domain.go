package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyMAD Currency = "MAD"
)

const (
	StatusPaid                 PaymentStatus = "Paid"
	StatusDue                  PaymentStatus = "Due"
	StatusOverdue              PaymentStatus = "Overdue"
	StatusScheduled            PaymentStatus = "Scheduled"
	StatusPendingReimbursement PaymentStatus = "Pending Reimbursement"
)

// UnassignedPartnerName is the sentinel partner that absorbs expense
// attributions when a partner is deleted.
const UnassignedPartnerName = "Unassigned / Company"

// MiscellaneousCategoryName is the sentinel category (matched
// case-insensitively) that absorbs expenses when a category is deleted.
const MiscellaneousCategoryName = "Miscellaneous"

type (
	Currency      string
	PaymentStatus string

	Date struct {
		time.Time
	}

	// Expense is the atomic record. Month and Year are derived from Date and
	// must never be set independently; DeriveCalendar keeps them consistent.
	Expense struct {
		ID                string
		Date              Date
		Month             string // short name, "Jan".."Dec"
		Year              int
		CategoryID        string
		Provider          string
		Description       string
		ItemCount         int
		Amount            decimal.Decimal
		Currency          Currency
		PaymentStatus     PaymentStatus
		PaidByPartnerID   string // empty means unattributed / company-paid
		PaymentMethod     string
		IsFixedCharge     bool
		Notes             string
		ReceiptAttachment string
		EntryTimestamp    time.Time // last write time, not creation time
	}

	Partner struct {
		ID    string
		Name  string
		Email string
		Role  string
	}

	Category struct {
		ID   string
		Name string
		// DefaultIsFixed pre-populates IsFixedCharge at expense creation only.
		DefaultIsFixed bool
	}
)

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrEmptyDescription     = errors.New("empty description")
	ErrMissingCategory      = errors.New("missing category")
	ErrUnknownCurrency      = errors.New("unknown currency")
	ErrUnknownPaymentStatus = errors.New("unknown payment status")
	ErrNegativeItemCount    = errors.New("negative item count")
	ErrEmptyName            = errors.New("empty name")
)

// PaymentMethods are the suggested payment method labels. The field itself is
// free text; this list only feeds pickers.
var PaymentMethods = []string{
	"Company Card",
	"Partner Personal",
	"Bank Transfer",
	"Cash",
	"Other",
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateLayout is the wire and storage form of a calendar date.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthYear returns the short month name ("Jul") and the year for d.
func (d Date) MonthYear() (string, int) {
	return d.Format("Jan"), d.Year()
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.TrimSpace(s))
	if !c.Valid() {
		return "", ErrUnknownCurrency
	}
	return c, nil
}

func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyMAD:
		return true
	}
	return false
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	ps := PaymentStatus(strings.TrimSpace(s))
	if !ps.Valid() {
		return "", ErrUnknownPaymentStatus
	}
	return ps, nil
}

func (ps PaymentStatus) Valid() bool {
	switch ps {
	case StatusPaid, StatusDue, StatusOverdue, StatusScheduled, StatusPendingReimbursement:
		return true
	}
	return false
}

// DeriveCalendar recomputes Month and Year from Date. Called on every add and
// update so the derived fields can never drift from the source of truth.
func (e *Expense) DeriveCalendar() {
	e.Month, e.Year = e.Date.MonthYear()
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return ErrMissingCategory
	}
	if e.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if !e.Currency.Valid() {
		return ErrUnknownCurrency
	}
	if !e.PaymentStatus.Valid() {
		return ErrUnknownPaymentStatus
	}
	if e.ItemCount < 0 {
		return ErrNegativeItemCount
	}
	return nil
}

func (p Partner) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// IsUnassignedSentinel reports whether p is the reassignment sentinel partner.
func (p Partner) IsUnassignedSentinel() bool {
	return p.Name == UnassignedPartnerName
}

// IsMiscellaneousSentinel reports whether c is the reassignment sentinel
// category. The original books matched the name case-insensitively.
func (c Category) IsMiscellaneousSentinel() bool {
	return strings.EqualFold(strings.TrimSpace(c.Name), MiscellaneousCategoryName)
}
