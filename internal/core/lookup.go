package core

// Foreign-key resolution with sentinel fallbacks. Three outcomes stay
// distinguishable: absent id, id that resolves to nothing, and a resolved
// name. Unresolved references are never an error; a deletion race simply
// renders as the sentinel text.

// NameNotAvailable is returned for unresolvable categories and for expenses
// with no partner attribution.
const NameNotAvailable = "N/A"

// UnknownPartnerLabel is returned when a partner id is present but resolves
// to no current partner.
const UnknownPartnerLabel = "Unknown Partner"

// CategoryName resolves a category id to its name, or NameNotAvailable when
// the id does not resolve.
func CategoryName(categories []Category, id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return NameNotAvailable
}

// PartnerName resolves a partner id to its name. An empty id means the
// expense is unattributed and yields NameNotAvailable; a non-empty id that
// matches no partner yields UnknownPartnerLabel.
func PartnerName(partners []Partner, id string) string {
	if id == "" {
		return NameNotAvailable
	}
	for _, p := range partners {
		if p.ID == id {
			return p.Name
		}
	}
	return UnknownPartnerLabel
}

// FindExpense returns the first expense matching pred.
func FindExpense(expenses []Expense, pred func(Expense) bool) (Expense, bool) {
	for _, e := range expenses {
		if pred(e) {
			return e, true
		}
	}
	return Expense{}, false
}

// FindPartner returns the first partner matching pred.
func FindPartner(partners []Partner, pred func(Partner) bool) (Partner, bool) {
	for _, p := range partners {
		if pred(p) {
			return p, true
		}
	}
	return Partner{}, false
}

// FindCategory returns the first category matching pred.
func FindCategory(categories []Category, pred func(Category) bool) (Category, bool) {
	for _, c := range categories {
		if pred(c) {
			return c, true
		}
	}
	return Category{}, false
}
