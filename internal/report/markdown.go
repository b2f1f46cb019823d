package report

import (
	"fmt"
	"io"
	"strings"

	"fintrack/internal/engine"
)

var typeLabels = map[engine.AssetType]string{
	engine.AssetTypeCash:       "Cash",
	engine.AssetTypeETF:        "ETF",
	engine.AssetTypeStock:      "Stock",
	engine.AssetTypeRealEstate: "Real estate",
	engine.AssetTypeUSDOther:   "USD other",
}

// TypeLabel returns the display name of an asset type.
func TypeLabel(t engine.AssetType) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func table(w io.Writer, header []string, rows [][]string) {
	fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | "))
	seps := make([]string, len(header))
	for i := range seps {
		seps[i] = "---"
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))
	for _, r := range rows {
		escaped := make([]string, len(r))
		for i := range r {
			escaped[i] = cell(r[i])
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(escaped, " | "))
	}
	fmt.Fprintln(w)
}

// WriteSummary writes the net worth and allocation section.
func WriteSummary(w io.Writer, s engine.Summary, rate float64) {
	fmt.Fprintln(w, "## Net worth")
	fmt.Fprintln(w)
	if s.Empty() {
		fmt.Fprintln(w, "No assets recorded yet.")
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "**Total:** %s  \n", Local(s.Total))
	fmt.Fprintf(w, "**Foreign currency (in TWD):** %s  \n", Local(s.TotalForeignInLocal))
	fmt.Fprintf(w, "**USD/TWD:** %s\n\n", Rate(rate))

	rows := make([][]string, 0, len(s.Breakdown))
	for _, e := range s.Breakdown {
		rows = append(rows, []string{TypeLabel(e.Type), Local(e.Value), Percent(e.Value / s.Total * 100)})
	}
	table(w, []string{"Type", "Value", "Share"}, rows)
}

// WriteHealth writes the health score and its feedback lines.
func WriteHealth(w io.Writer, h engine.HealthScore) {
	fmt.Fprintln(w, "## Financial health")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "**Score:** %d / 100 (%s)\n\n", h.Score, h.Level)
	for _, f := range h.Feedback {
		fmt.Fprintf(w, "- %s\n", f)
	}
	fmt.Fprintln(w)
}

// WritePNL writes the investment profit and loss statement.
func WritePNL(w io.Writer, p engine.PNLReport) {
	fmt.Fprintln(w, "## Investments")
	fmt.Fprintln(w)
	if len(p.Rows) == 0 {
		fmt.Fprintln(w, "No investment holdings.")
		fmt.Fprintln(w)
		return
	}

	rows := make([][]string, 0, len(p.Rows)+1)
	for _, r := range p.Rows {
		rows = append(rows, []string{
			r.Code,
			TypeLabel(r.Type),
			r.AccountName,
			Local(r.CurrentValueTWD),
			Local(r.CostTWD),
			Signed(r.ProfitLossTWD),
			Percent(r.PNLPercentage),
		})
	}
	rows = append(rows, []string{"**Total**", "", "", Local(p.TotalValue), Local(p.TotalCost), Signed(p.TotalPNL), Percent(p.OverallROI)})
	table(w, []string{"Code", "Type", "Account", "Value", "Cost", "P/L", "P/L %"}, rows)

	if p.BestAbsolute != nil {
		fmt.Fprintf(w, "Best performer: **%s** %s\n\n", p.BestAbsolute.Code, Signed(p.BestAbsolute.ProfitLossTWD))
	}
	if p.BestPercentage != nil {
		fmt.Fprintf(w, "Best return: **%s** %s\n\n", p.BestPercentage.Code, Percent(p.BestPercentage.PNLPercentage))
	}
}

// WriteMonth writes the income and expense totals for a month.
func WriteMonth(w io.Writer, m engine.MonthSummary) {
	fmt.Fprintf(w, "## Cashflow %s\n\n", m.Month)
	table(w, []string{"Income", "Expense", "Net", "Savings rate"}, [][]string{
		{Local(m.Income), Local(m.Expense), Signed(m.Net), Percent(m.SavingsRate)},
	})
}

// WriteBudgets writes the budget report lines that have a budget or spending.
func WriteBudgets(w io.Writer, lines []engine.BudgetLine) {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		if !l.HasBudget && l.Spent == 0 {
			continue
		}
		status := ""
		if l.Overspent {
			status = "over"
		}
		budgeted := "-"
		if l.HasBudget {
			budgeted = Local(l.Budgeted)
		}
		rows = append(rows, []string{l.Category, budgeted, Local(l.Spent), Local(l.AverageSpend), status})
	}
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w, "## Budgets")
	fmt.Fprintln(w)
	table(w, []string{"Category", "Budget", "Spent", "3-month average", ""}, rows)
}

// WriteGoals writes progress toward each goal.
func WriteGoals(w io.Writer, goals []engine.GoalProgress) {
	if len(goals) == 0 {
		return
	}
	fmt.Fprintln(w, "## Goals")
	fmt.Fprintln(w)
	rows := make([][]string, 0, len(goals))
	for _, g := range goals {
		eta := g.ProjectedCompletion
		if g.Completed {
			eta = "done"
		}
		rows = append(rows, []string{g.Name, Local(g.CurrentAmount), Local(g.TargetAmount), Percent(g.Progress), eta})
	}
	table(w, []string{"Goal", "Current", "Target", "Progress", "Projected"}, rows)
}

// Dashboard renders every section of d as one markdown document.
func Dashboard(d engine.Dashboard) string {
	var b strings.Builder
	fmt.Fprintln(&b, "# Financial overview")
	fmt.Fprintln(&b)
	WriteSummary(&b, d.Summary, d.Rate)
	WriteHealth(&b, d.Health)
	WritePNL(&b, d.PNL)
	WriteMonth(&b, d.Month)
	WriteBudgets(&b, d.Budgets)
	WriteGoals(&b, d.Goals)
	return b.String()
}
