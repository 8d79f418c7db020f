package core

import (
	"sort"
	"time"
)

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

type (
	// Period is a rolling window ending now, compared against an
	// equal-length immediately preceding window.
	Period string

	// MonthKey names a fixed calendar month ("YYYY-MM").
	MonthKey struct {
		Year  int
		Month time.Month
	}

	// CategoryShare is one category's slice of total expenses in a window.
	CategoryShare struct {
		Category string  `json:"category"`
		Amount   Money   `json:"amount"`
		Percent  float64 `json:"percent"`
	}

	// Stats are the totals for one window. Only expense-type
	// transactions contribute to the category breakdown.
	Stats struct {
		Expenses          Money           `json:"expenses"`
		Income            Money           `json:"income"`
		Balance           Money           `json:"balance"`
		TransactionCount  int             `json:"transactionCount"`
		CategoryBreakdown []CategoryShare `json:"categoryBreakdown"`
	}

	// PeriodStats extends Stats with the percent change against the
	// preceding window of equal length. A change against a zero
	// previous total is defined as exactly 0.
	PeriodStats struct {
		Stats
		ExpenseChange float64 `json:"expenseChange"`
		IncomeChange  float64 `json:"incomeChange"`
	}
)

func (p Period) IsValid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	default:
		return false
	}
}

// ParseMonthKey parses a "YYYY-MM" key.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthKey{}, err
	}
	return MonthKey{Year: t.Year(), Month: t.Month()}, nil
}

func (k MonthKey) String() string {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// windowStart returns the start of the current window for a relative
// period: start of today for day, minus 7 days for week, minus one
// calendar month for month.
func (p Period) windowStart(now time.Time) time.Time {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodDay:
		return startOfDay
	case PeriodWeek:
		return startOfDay.AddDate(0, 0, -7)
	case PeriodMonth:
		return startOfDay.AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}

// previousWindow returns the immediately preceding window of equal
// calendar length as [start, end).
func (p Period) previousWindow(now time.Time) (start, end time.Time) {
	end = p.windowStart(now)
	switch p {
	case PeriodDay:
		return end.AddDate(0, 0, -1), end
	case PeriodWeek:
		return end.AddDate(0, 0, -7), end
	case PeriodMonth:
		return end.AddDate(0, -1, 0), end
	default:
		return time.Time{}, time.Time{}
	}
}

// ComputeStats computes totals for the current relative window
// [windowStart, now) plus the percent change against the preceding
// window. An empty window yields all zeros and an empty breakdown.
func ComputeStats(txs []Transaction, period Period, now time.Time) PeriodStats {
	curStart := period.windowStart(now)
	prevStart, prevEnd := period.previousWindow(now)

	var current, previous []Transaction
	for _, t := range txs {
		if !t.Date.Before(curStart) && t.Date.Before(now) {
			current = append(current, t)
		} else if !t.Date.Before(prevStart) && t.Date.Before(prevEnd) {
			previous = append(previous, t)
		}
	}

	stats := windowStats(current)

	var prevExpenses, prevIncome int64
	for _, t := range previous {
		switch t.Type {
		case Expense:
			prevExpenses += t.Amount.Cents
		case Income:
			prevIncome += t.Amount.Cents
		}
	}

	return PeriodStats{
		Stats:         stats,
		ExpenseChange: percentChange(stats.Expenses.Cents, prevExpenses),
		IncomeChange:  percentChange(stats.Income.Cents, prevIncome),
	}
}

// ComputeMonthStats computes totals for a fixed calendar month. No
// comparison against a previous period is made in this mode.
func ComputeMonthStats(txs []Transaction, key MonthKey) Stats {
	var window []Transaction
	for _, t := range txs {
		if t.Date.Year() == key.Year && t.Date.Month() == key.Month {
			window = append(window, t)
		}
	}
	return windowStats(window)
}

func windowStats(window []Transaction) Stats {
	var expenses, income int64
	totals := make(map[string]int64)
	var order []string

	for _, t := range window {
		switch t.Type {
		case Expense:
			expenses += t.Amount.Cents
			if _, seen := totals[t.Category]; !seen {
				order = append(order, t.Category)
			}
			totals[t.Category] += t.Amount.Cents
		case Income:
			income += t.Amount.Cents
		}
	}

	breakdown := make([]CategoryShare, 0, len(order))
	for _, cat := range order {
		amount := totals[cat]
		var percent float64
		if expenses > 0 {
			percent = float64(amount) / float64(expenses) * 100
		}
		breakdown = append(breakdown, CategoryShare{
			Category: cat,
			Amount:   Money{Cents: amount},
			Percent:  percent,
		})
	}
	// Descending by amount; ties keep first-seen order.
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Amount.Cents > breakdown[j].Amount.Cents
	})

	return Stats{
		Expenses:          Money{Cents: expenses},
		Income:            Money{Cents: income},
		Balance:           Money{Cents: income - expenses},
		TransactionCount:  len(window),
		CategoryBreakdown: breakdown,
	}
}

// percentChange is the delta relative to the prior window, defined as
// exactly 0 when the previous total is zero.
func percentChange(current, previous int64) float64 {
	if previous <= 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}
