package core

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Aggregation over expense snapshots. Every function here is pure: it reads
// the slices it is given, never caches across calls, and returns a zero or
// empty result for empty input. Amounts are summed raw across currencies —
// there is deliberately no FX conversion.

type (
	// NameTotal is one (name, total) row of a breakdown, e.g. a category or a
	// partner with its summed spend.
	NameTotal struct {
		Name  string
		Total decimal.Decimal
	}

	// MonthBucket is one slot of the rolling 12-month series.
	MonthBucket struct {
		Month string // short name, "Jan".."Dec"
		Year  int
		Total decimal.Decimal
	}

	// FixedVariable partitions total spend by the IsFixedCharge flag.
	FixedVariable struct {
		Fixed    decimal.Decimal
		Variable decimal.Decimal
	}
)

// DefaultRecentLimit is how many expenses RecentExpenses returns by default.
const DefaultRecentLimit = 10

// DefaultProviderLimit is how many providers TopProviders returns.
const DefaultProviderLimit = 5

// TotalToDate sums every expense amount regardless of period or currency.
func TotalToDate(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// MonthTotal sums expenses whose derived month and year match the calendar
// month of now.
func MonthTotal(expenses []Expense, now time.Time) decimal.Decimal {
	month := now.Format("Jan")
	year := now.Year()
	total := decimal.Zero
	for _, e := range expenses {
		if e.Month == month && e.Year == year {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// YearTotal sums expenses whose derived year matches the calendar year of now.
func YearTotal(expenses []Expense, now time.Time) decimal.Decimal {
	year := now.Year()
	total := decimal.Zero
	for _, e := range expenses {
		if e.Year == year {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// ByCategory sums expenses per category. Categories with no matching expense
// are omitted; rows are sorted by total descending, equal totals keeping the
// category list order.
func ByCategory(expenses []Expense, categories []Category) []NameTotal {
	rows := make([]NameTotal, 0, len(categories))
	for _, c := range categories {
		total := decimal.Zero
		matched := 0
		for _, e := range expenses {
			if e.CategoryID == c.ID {
				total = total.Add(e.Amount)
				matched++
			}
		}
		if matched > 0 {
			rows = append(rows, NameTotal{Name: c.Name, Total: total})
		}
	}
	sortByTotalDesc(rows)
	return rows
}

// ByPartner sums attributed expenses per partner, same shape and ordering as
// ByCategory. Unattributed expenses contribute to no row.
func ByPartner(expenses []Expense, partners []Partner) []NameTotal {
	rows := make([]NameTotal, 0, len(partners))
	for _, p := range partners {
		total := decimal.Zero
		matched := 0
		for _, e := range expenses {
			if e.PaidByPartnerID != "" && e.PaidByPartnerID == p.ID {
				total = total.Add(e.Amount)
				matched++
			}
		}
		if matched > 0 {
			rows = append(rows, NameTotal{Name: p.Name, Total: total})
		}
	}
	sortByTotalDesc(rows)
	return rows
}

// MonthlySeries returns exactly 12 buckets covering the calendar months
// ending with the month of now, oldest first. Months without expenses appear
// with a zero total. Ordering comes from the calendar, not from the string
// form of the bucket key.
func MonthlySeries(expenses []Expense, now time.Time) []MonthBucket {
	// Normalize to the first of the month so AddDate cannot skip short months.
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	buckets := make([]MonthBucket, 0, 12)
	index := make(map[string]int, 12)
	for i := 11; i >= 0; i-- {
		t := first.AddDate(0, -i, 0)
		b := MonthBucket{Month: t.Format("Jan"), Year: t.Year(), Total: decimal.Zero}
		index[bucketKey(b.Month, b.Year)] = len(buckets)
		buckets = append(buckets, b)
	}
	for _, e := range expenses {
		if i, ok := index[bucketKey(e.Month, e.Year)]; ok {
			buckets[i].Total = buckets[i].Total.Add(e.Amount)
		}
	}
	return buckets
}

func bucketKey(month string, year int) string {
	return month + "-" + strconv.Itoa(year)
}

// FixedVariableSplit partitions total spend by the IsFixedCharge flag.
func FixedVariableSplit(expenses []Expense) FixedVariable {
	split := FixedVariable{Fixed: decimal.Zero, Variable: decimal.Zero}
	for _, e := range expenses {
		if e.IsFixedCharge {
			split.Fixed = split.Fixed.Add(e.Amount)
		} else {
			split.Variable = split.Variable.Add(e.Amount)
		}
	}
	return split
}

// TopProviders groups spend by provider, excluding expenses without one, and
// returns at most limit rows sorted by total descending. Equal totals keep
// first-seen order.
func TopProviders(expenses []Expense, limit int) []NameTotal {
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, e := range expenses {
		if e.Provider == "" {
			continue
		}
		if _, seen := totals[e.Provider]; !seen {
			order = append(order, e.Provider)
		}
		totals[e.Provider] = totals[e.Provider].Add(e.Amount)
	}
	rows := make([]NameTotal, 0, len(order))
	for _, name := range order {
		rows = append(rows, NameTotal{Name: name, Total: totals[name]})
	}
	sortByTotalDesc(rows)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// RecentExpenses returns the limit most recently dated expenses. Expenses
// sharing a date keep their relative order from the input, which the store
// maintains as display order.
func RecentExpenses(expenses []Expense, limit int) []Expense {
	out := make([]Expense, len(expenses))
	copy(out, expenses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortByTotalDesc(rows []NameTotal) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total.GreaterThan(rows[j].Total)
	})
}
