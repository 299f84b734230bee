package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spendtrack/internal/core"
)

// Built-in bootstrap dataset, inserted once when the remote store reports an
// empty partners collection. Ids are generated fresh per process; the names
// and amounts mirror the company's opening books.

func seedData() ([]core.Partner, []core.Category, []core.Expense) {
	partners := []core.Partner{
		{ID: uuid.NewString(), Name: "Zakaria", Email: "zak@example.com", Role: "CEO"},
		{ID: uuid.NewString(), Name: "Naoufal", Email: "naoufal@example.com", Role: "CTO"},
		{ID: uuid.NewString(), Name: "Hamza", Email: "hamza@example.com", Role: "Lead Dev"},
		{ID: uuid.NewString(), Name: "Laamimach", Email: "laamimach@example.com", Role: "Partner"},
		{ID: uuid.NewString(), Name: core.UnassignedPartnerName},
	}

	categories := []core.Category{
		{ID: uuid.NewString(), Name: "Servers & Hosting", DefaultIsFixed: true},
		{ID: uuid.NewString(), Name: "Software & Subscriptions", DefaultIsFixed: true},
		{ID: uuid.NewString(), Name: "Domain Names", DefaultIsFixed: true},
		{ID: uuid.NewString(), Name: "Rent", DefaultIsFixed: true},
		{ID: uuid.NewString(), Name: "Utilities (Water, Electricity)", DefaultIsFixed: true},
		{ID: uuid.NewString(), Name: "Internet (Fibre, etc.)", DefaultIsFixed: true},
		{ID: uuid.NewString(), Name: "Office Supplies"},
		{ID: uuid.NewString(), Name: "Marketing & Advertising"},
		{ID: uuid.NewString(), Name: "Operational Costs"},
		{ID: uuid.NewString(), Name: "Salaries/Stipends", DefaultIsFixed: true},
		{ID: uuid.NewString(), Name: "Travel"},
		{ID: uuid.NewString(), Name: "Legal & Professional Fees"},
		{ID: uuid.NewString(), Name: core.MiscellaneousCategoryName},
	}

	partnerID := make(map[string]string, len(partners))
	for _, p := range partners {
		partnerID[p.Name] = p.ID
	}
	categoryID := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryID[c.Name] = c.ID
	}

	type row struct {
		date        string
		category    string
		provider    string
		description string
		itemCount   int
		amount      int64
		currency    core.Currency
		paidBy      string
		method      string
		fixed       bool
	}

	rows := []row{
		// One-time capital spend, EUR.
		{date: "2025-04-10", category: "Rent", provider: "Landlord", description: "Loyer 3 mois (lkra)", amount: 12000, currency: core.CurrencyEUR, paidBy: "Zakaria"},
		{date: "2025-04-11", category: "Office Supplies", provider: "Retail Store", description: "TV Purchase", amount: 7500, currency: core.CurrencyEUR, paidBy: "Zakaria"},
		{date: "2025-04-12", category: "Software & Subscriptions", provider: "Telaja Services", description: "Telaja Service", amount: 1500, currency: core.CurrencyEUR, paidBy: "Naoufal"},
		{date: "2025-04-13", category: "Software & Subscriptions", provider: "Rwaq Solutions", description: "Rwaq Service", amount: 1200, currency: core.CurrencyEUR, paidBy: "Zakaria"},
		// Recurring monthly fixed charges, MAD.
		{date: "2025-04-01", category: "Rent", provider: "Landlord", description: "Loyer (Monthly Rent)", amount: 4000, currency: core.CurrencyMAD, paidBy: core.UnassignedPartnerName, fixed: true},
		{date: "2025-04-01", category: "Internet (Fibre, etc.)", provider: "Telecom Provider", description: "Connexion Fibre (Monthly)", amount: 500, currency: core.CurrencyMAD, paidBy: core.UnassignedPartnerName, fixed: true},
		{date: "2025-04-01", category: "Utilities (Water, Electricity)", provider: "Utility Company", description: "Eau et Electricité (Monthly)", amount: 300, currency: core.CurrencyMAD, paidBy: core.UnassignedPartnerName, fixed: true},
		{date: "2025-05-01", category: "Rent", provider: "Landlord", description: "Loyer (Monthly Rent)", amount: 4000, currency: core.CurrencyMAD, paidBy: core.UnassignedPartnerName, fixed: true},
		{date: "2025-05-01", category: "Internet (Fibre, etc.)", provider: "Telecom Provider", description: "Connexion Fibre (Monthly)", amount: 500, currency: core.CurrencyMAD, paidBy: core.UnassignedPartnerName, fixed: true},
		{date: "2025-05-01", category: "Utilities (Water, Electricity)", provider: "Utility Company", description: "Eau et Electricité (Monthly)", amount: 300, currency: core.CurrencyMAD, paidBy: core.UnassignedPartnerName, fixed: true},
		// Servers, scripts and domains, USD.
		{date: "2025-04-05", category: "Servers & Hosting", provider: "Server Provider Intl.", description: "Server Master (USD Plan)", amount: 450, currency: core.CurrencyUSD, paidBy: "Naoufal", fixed: true},
		{date: "2025-05-05", category: "Servers & Hosting", provider: "Server Provider Intl.", description: "Server Master (USD Plan)", amount: 450, currency: core.CurrencyUSD, paidBy: "Naoufal", fixed: true},
		{date: "2025-04-15", category: "Servers & Hosting", provider: "logicweb.com", description: "2 servers", itemCount: 2, amount: 200, currency: core.CurrencyUSD, paidBy: "Zakaria", fixed: true},
		{date: "2025-04-15", category: "Servers & Hosting", provider: "ghostnet.de", description: "1 server", itemCount: 1, amount: 1111, currency: core.CurrencyUSD, paidBy: "Zakaria", fixed: true},
		{date: "2025-04-15", category: "Servers & Hosting", provider: "scaleway", description: "1 server (Avril)", itemCount: 1, amount: 1800, currency: core.CurrencyUSD, paidBy: "Zakaria", fixed: true},
		{date: "2025-04-15", category: "Servers & Hosting", provider: "hetzner", description: "1 server (General)", itemCount: 1, amount: 1500, currency: core.CurrencyUSD, paidBy: "Zakaria", fixed: true},
		{date: "2025-04-15", category: "Software & Subscriptions", provider: "script yahoo", description: "Yahoo Scripts", itemCount: 1, amount: 1000, currency: core.CurrencyUSD, paidBy: "Zakaria", fixed: true},
		{date: "2025-04-15", category: "Software & Subscriptions", provider: "boite yahoo", description: "Boite Yahoo service", amount: 1260, currency: core.CurrencyUSD, paidBy: "Zakaria", fixed: true},
		{date: "2025-04-15", category: "Domain Names", provider: "domaines", description: "Domain Purchase(s) April", amount: 500, currency: core.CurrencyUSD, paidBy: "Naoufal", fixed: true},
		{date: "2025-04-15", category: "Software & Subscriptions", provider: "script gsuite", description: "GSuite Scripts/Service", amount: 3000, currency: core.CurrencyUSD, paidBy: "Zakaria", fixed: true},
		{date: "2025-04-15", category: core.MiscellaneousCategoryName, provider: "binance", description: "Binance fees/service", amount: 1170, currency: core.CurrencyUSD, paidBy: "Naoufal"},
		{date: "2025-04-20", category: "Operational Costs", provider: "Internal Funding", description: "General Contribution (Hamza)", amount: 13000, currency: core.CurrencyUSD, paidBy: "Hamza", method: "Partner Personal"},
		{date: "2025-05-15", category: "Domain Names", provider: "domaines", description: "Domaines (Mai)", amount: 200, currency: core.CurrencyUSD, paidBy: "Naoufal", fixed: true},
		{date: "2025-05-15", category: "Servers & Hosting", provider: "scaleway", description: "Scaleway service (Mai)", amount: 690, currency: core.CurrencyUSD, paidBy: "Zakaria", fixed: true},
	}

	now := time.Now().UTC()
	expenses := make([]core.Expense, 0, len(rows))
	for _, r := range rows {
		date, err := core.ParseDate(r.date)
		if err != nil {
			continue // seed rows are fixed literals; a bad one is a bug, skip it
		}
		e := core.Expense{
			ID:              uuid.NewString(),
			Date:            date,
			CategoryID:      categoryID[r.category],
			Provider:        r.provider,
			Description:     r.description,
			ItemCount:       r.itemCount,
			Amount:          decimal.NewFromInt(r.amount),
			Currency:        r.currency,
			PaymentStatus:   core.StatusPaid,
			PaidByPartnerID: partnerID[r.paidBy],
			PaymentMethod:   r.method,
			IsFixedCharge:   r.fixed,
			EntryTimestamp:  now,
		}
		e.DeriveCalendar()
		expenses = append(expenses, e)
	}

	return partners, categories, expenses
}
