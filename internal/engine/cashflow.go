package engine

import (
	"strings"
	"time"
)

// CashflowType distinguishes income from expense records.
type CashflowType string

const (
	CashflowIncome  CashflowType = "income"
	CashflowExpense CashflowType = "expense"
)

// Valid reports whether t is income or expense.
func (t CashflowType) Valid() bool {
	return t == CashflowIncome || t == CashflowExpense
}

// CashflowRecord is a single income or expense entry. Date is YYYY-MM-DD.
// A record with Recurring set acts as a template for monthly copies on
// RecurrenceDay; SourceID links a generated copy back to its template.
type CashflowRecord struct {
	ID            string       `json:"id"`
	Date          string       `json:"date"`
	Type          CashflowType `json:"type"`
	Category      string       `json:"category"`
	Amount        Number       `json:"amount"`
	Currency      Currency     `json:"currency"`
	Description   string       `json:"description"`
	AccountID     string       `json:"account_id,omitempty"`
	AccountName   string       `json:"account_name,omitempty"`
	Recurring     bool         `json:"is_recurring"`
	RecurrenceDay int          `json:"recurrence_day,omitempty"`
	SourceID      string       `json:"source_id,omitempty"`
}

// MonthKey returns the YYYY-MM prefix of an ISO date.
func MonthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// MonthSummary is the income and expense total of one calendar month.
type MonthSummary struct {
	Month       string  `json:"month"`
	Income      float64 `json:"income"`
	Expense     float64 `json:"expense"`
	Net         float64 `json:"net"`
	SavingsRate float64 `json:"savings_rate"`
}

// MonthlySummary totals the records whose date starts with monthKey.
func MonthlySummary(records []CashflowRecord, monthKey string) MonthSummary {
	s := MonthSummary{Month: monthKey}
	for _, r := range records {
		if !strings.HasPrefix(r.Date, monthKey) {
			continue
		}
		switch r.Type {
		case CashflowIncome:
			s.Income += nonNegative(r.Amount.Float())
		case CashflowExpense:
			s.Expense += nonNegative(r.Amount.Float())
		}
	}
	s.Net = s.Income - s.Expense
	if s.Income > 0 {
		s.SavingsRate = s.Net / s.Income * 100
	}
	return s
}

// AverageMonthlyExpense averages expense totals over the months that have at
// least one expense record. It returns 0 when there are none.
func AverageMonthlyExpense(records []CashflowRecord) float64 {
	months := make(map[string]float64)
	for _, r := range records {
		if r.Type != CashflowExpense {
			continue
		}
		months[MonthKey(r.Date)] += nonNegative(r.Amount.Float())
	}
	if len(months) == 0 {
		return 0
	}

	var total float64
	for _, v := range months {
		total += v
	}
	return total / float64(len(months))
}

// AverageMonthlySavings averages the monthly net (income minus expense) over
// the months present in the trailing window of the given length ending at now.
func AverageMonthlySavings(records []CashflowRecord, now time.Time, months int) float64 {
	cutoff := now.AddDate(0, -months, 0).Format("2006-01")

	net := make(map[string]float64)
	for _, r := range records {
		if r.Date < cutoff {
			continue
		}
		amount := nonNegative(r.Amount.Float())
		switch r.Type {
		case CashflowIncome:
			net[MonthKey(r.Date)] += amount
		case CashflowExpense:
			net[MonthKey(r.Date)] -= amount
		}
	}
	if len(net) == 0 {
		return 0
	}

	var total float64
	for _, v := range net {
		total += v
	}
	return total / float64(len(net))
}
