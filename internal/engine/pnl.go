package engine

import (
	"slices"
	"strings"
)

// PNLRow is one investment holding on the profit and loss statement.
type PNLRow struct {
	ValuedAsset
	AccountID     string  `json:"account_id"`
	AccountName   string  `json:"account_name"`
	PNLPercentage float64 `json:"pnl_percentage"`
}

// PNLReport is the profit and loss statement across all accounts.
type PNLReport struct {
	Rows           []PNLRow `json:"rows"`
	TotalValue     float64  `json:"total_value"`
	TotalCost      float64  `json:"total_cost"`
	TotalPNL       float64  `json:"total_pnl"`
	OverallROI     float64  `json:"overall_roi"`
	BestAbsolute   *PNLRow  `json:"best_absolute"`
	BestPercentage *PNLRow  `json:"best_percentage"`
}

// ComputePNL flattens stock, ETF and USD-denominated holdings into rows tagged
// with their account and totals them. Rows keep account then asset order.
func ComputePNL(accounts []ValuedAccount) PNLReport {
	report := PNLReport{Rows: []PNLRow{}}

	for _, acc := range accounts {
		for _, a := range acc.Assets {
			if !a.Type.Investment() {
				continue
			}
			row := PNLRow{ValuedAsset: a, AccountID: acc.ID, AccountName: acc.Name}
			if a.CostTWD > 0 {
				row.PNLPercentage = a.ProfitLossTWD / a.CostTWD * 100
			}
			report.Rows = append(report.Rows, row)
			report.TotalValue += a.CurrentValueTWD
			report.TotalCost += a.CostTWD
		}
	}

	report.TotalPNL = report.TotalValue - report.TotalCost
	if report.TotalCost > 0 {
		report.OverallROI = report.TotalPNL / report.TotalCost * 100
	}

	for i := range report.Rows {
		r := &report.Rows[i]
		if report.BestAbsolute == nil || r.ProfitLossTWD > report.BestAbsolute.ProfitLossTWD {
			best := *r
			report.BestAbsolute = &best
		}
		if report.BestPercentage == nil || r.PNLPercentage > report.BestPercentage.PNLPercentage {
			best := *r
			report.BestPercentage = &best
		}
	}
	return report
}

// PNLSortKey names a sortable column of the statement.
type PNLSortKey string

const (
	SortByCode          PNLSortKey = "code"
	SortByType          PNLSortKey = "account_type"
	SortByAccount       PNLSortKey = "account_name"
	SortByValue         PNLSortKey = "current_value_twd"
	SortByCost          PNLSortKey = "cost_twd"
	SortByProfitLoss    PNLSortKey = "profit_loss_twd"
	SortByPNLPercentage PNLSortKey = "pnl_percentage"

	// DefaultPNLSort puts the biggest winners first.
	DefaultPNLSort = SortByProfitLoss
)

// SortDirection orders a sort ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParsePNLSortKey validates a column name.
func ParsePNLSortKey(s string) (PNLSortKey, bool) {
	switch k := PNLSortKey(s); k {
	case SortByCode, SortByType, SortByAccount, SortByValue, SortByCost, SortByProfitLoss, SortByPNLPercentage:
		return k, true
	}
	return "", false
}

func comparePNL(a, b *PNLRow, key PNLSortKey) int {
	var x, y float64
	switch key {
	case SortByCode:
		return strings.Compare(a.Code, b.Code)
	case SortByType:
		return strings.Compare(string(a.Type), string(b.Type))
	case SortByAccount:
		return strings.Compare(a.AccountName, b.AccountName)
	case SortByValue:
		x, y = a.CurrentValueTWD, b.CurrentValueTWD
	case SortByCost:
		x, y = a.CostTWD, b.CostTWD
	case SortByPNLPercentage:
		x, y = a.PNLPercentage, b.PNLPercentage
	default:
		x, y = a.ProfitLossTWD, b.ProfitLossTWD
	}
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// SortPNLRows returns a sorted copy of rows. The sort is stable: rows that
// compare equal keep their relative order in either direction.
func SortPNLRows(rows []PNLRow, key PNLSortKey, dir SortDirection) []PNLRow {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b PNLRow) int {
		c := comparePNL(&a, &b, key)
		if dir == SortDesc {
			return -c
		}
		return c
	})
	return out
}
