package engine

import (
	"sort"
	"time"
)

// BudgetAverageMonths is how many months before the selected one feed the
// average-spend hint.
const BudgetAverageMonths = 3

// Budget caps the spending of one expense category in one month.
type Budget struct {
	ID       string `json:"id"`
	Month    string `json:"month"`
	Category string `json:"category"`
	Amount   Number `json:"amount"`
}

// BudgetLine compares a category's budget with its spending in a month.
type BudgetLine struct {
	Category     string  `json:"category"`
	Budgeted     float64 `json:"budgeted"`
	HasBudget    bool    `json:"has_budget"`
	Spent        float64 `json:"spent"`
	Remaining    float64 `json:"remaining"`
	Overspent    bool    `json:"overspent"`
	AverageSpend float64 `json:"average_spend"`
}

// PreviousMonth returns the month before a YYYY-MM key.
func PreviousMonth(monthKey string) (string, bool) {
	t, err := time.Parse("2006-01", monthKey)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, -1, 0).Format("2006-01"), true
}

// BudgetReport builds one line per category for monthKey. The given
// categories come first in order; categories that only appear in the month's
// budgets or spending follow alphabetically.
func BudgetReport(budgets []Budget, records []CashflowRecord, monthKey string, categories []string) []BudgetLine {
	budgeted := make(map[string]float64)
	for _, b := range budgets {
		if b.Month == monthKey {
			budgeted[b.Category] = nonNegative(b.Amount.Float())
		}
	}

	spent := make(map[string]float64)
	for _, r := range records {
		if r.Type == CashflowExpense && MonthKey(r.Date) == monthKey {
			spent[r.Category] += nonNegative(r.Amount.Float())
		}
	}

	averages := averageCategorySpend(records, monthKey)

	seen := make(map[string]bool, len(categories))
	order := make([]string, 0, len(categories))
	for _, c := range categories {
		if !seen[c] {
			seen[c] = true
			order = append(order, c)
		}
	}
	var extra []string
	for c := range budgeted {
		if !seen[c] {
			seen[c] = true
			extra = append(extra, c)
		}
	}
	for c := range spent {
		if !seen[c] {
			seen[c] = true
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	lines := make([]BudgetLine, 0, len(order))
	for _, c := range order {
		amount, has := budgeted[c]
		line := BudgetLine{
			Category:     c,
			Budgeted:     amount,
			HasBudget:    has && amount > 0,
			Spent:        spent[c],
			AverageSpend: averages[c],
		}
		if line.HasBudget {
			line.Remaining = line.Budgeted - line.Spent
			line.Overspent = line.Remaining < 0
		}
		lines = append(lines, line)
	}
	return lines
}

// averageCategorySpend averages each category's expense over the months in the
// window before monthKey in which the category had any spending.
func averageCategorySpend(records []CashflowRecord, monthKey string) map[string]float64 {
	start, err := time.Parse("2006-01", monthKey)
	if err != nil {
		return map[string]float64{}
	}
	cutoff := start.AddDate(0, -BudgetAverageMonths, 0).Format("2006-01")

	perMonth := make(map[string]map[string]float64)
	for _, r := range records {
		if r.Type != CashflowExpense || r.Date < cutoff || r.Date >= monthKey {
			continue
		}
		m := MonthKey(r.Date)
		if perMonth[m] == nil {
			perMonth[m] = make(map[string]float64)
		}
		perMonth[m][r.Category] += nonNegative(r.Amount.Float())
	}

	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, cats := range perMonth {
		for c, v := range cats {
			if v > 0 {
				totals[c] += v
				counts[c]++
			}
		}
	}

	out := make(map[string]float64, len(totals))
	for c, total := range totals {
		out[c] = total / float64(counts[c])
	}
	return out
}
