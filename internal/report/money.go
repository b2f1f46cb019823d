// Package report renders computed financial views as markdown, HTML and
// spreadsheets.
package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"fintrack/internal/engine"
)

// Amount formats v in the currency's conventional notation, rounded to the
// currency's minor unit.
func Amount(v float64, cur engine.Currency) string {
	if cur == "" {
		cur = engine.CurrencyTWD
	}
	c := money.GetCurrency(string(cur))
	if c == nil {
		return decimal.NewFromFloat(v).StringFixed(2) + " " + string(cur)
	}
	minor := decimal.NewFromFloat(v).Shift(int32(c.Fraction)).Round(0)
	return c.Formatter().Format(minor.IntPart())
}

// Local formats a TWD amount.
func Local(v float64) string {
	return Amount(v, engine.CurrencyTWD)
}

// Signed formats a TWD amount with an explicit sign for gains.
func Signed(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsPositive() {
		return "+" + Local(v)
	}
	return Local(v)
}

// Percent formats v (already scaled to 0..100) with one decimal.
func Percent(v float64) string {
	return decimal.NewFromFloat(v).Round(1).StringFixed(1) + "%"
}

// Rate formats an exchange rate with up to four decimals.
func Rate(v float64) string {
	return decimal.NewFromFloat(v).Round(4).String()
}
