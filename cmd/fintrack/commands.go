package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"fintrack/internal/engine"
	"fintrack/internal/report"
)

var commands = []subcommands.Command{
	&summaryCmd{},
	&healthCmd{},
	&pnlCmd{},
	&monthCmd{},
	&dashboardCmd{},
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}

type summaryCmd struct{ src sourceFlags }

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "net worth by asset type" }
func (*summaryCmd) Usage() string {
	return `fintrack summary [-b <backup>] [-rate <usd/twd>]

  Displays total assets in TWD with the breakdown per asset type.
`
}
func (c *summaryCmd) SetFlags(f *flag.FlagSet) { c.src.register(f) }

func (c *summaryCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	d, _, err := c.src.load()
	if err != nil {
		return fail("Error loading backup: %v", err)
	}
	var b strings.Builder
	report.WriteSummary(&b, d.Summary, d.Rate)
	if err := c.src.print(b.String()); err != nil {
		return fail("Error rendering: %v", err)
	}
	return subcommands.ExitSuccess
}

type healthCmd struct{ src sourceFlags }

func (*healthCmd) Name() string     { return "health" }
func (*healthCmd) Synopsis() string { return "financial health score" }
func (*healthCmd) Usage() string {
	return `fintrack health [-b <backup>] [-scoring <yaml>]

  Scores emergency fund, concentration and stock exposure out of 100.
`
}
func (c *healthCmd) SetFlags(f *flag.FlagSet) { c.src.register(f) }

func (c *healthCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	d, _, err := c.src.load()
	if err != nil {
		return fail("Error loading backup: %v", err)
	}
	var b strings.Builder
	report.WriteHealth(&b, d.Health)
	if err := c.src.print(b.String()); err != nil {
		return fail("Error rendering: %v", err)
	}
	return subcommands.ExitSuccess
}

type pnlCmd struct {
	src  sourceFlags
	sort string
	dir  string
}

func (*pnlCmd) Name() string     { return "pnl" }
func (*pnlCmd) Synopsis() string { return "profit and loss per investment holding" }
func (*pnlCmd) Usage() string {
	return `fintrack pnl [-b <backup>] [-sort <key>] [-dir asc|desc]

  Lists every ETF, stock and USD holding with cost, value and return.
`
}

func (c *pnlCmd) SetFlags(f *flag.FlagSet) {
	c.src.register(f)
	f.StringVar(&c.sort, "sort", string(engine.DefaultPNLSort), "Sort key: code, account_type, account_name, current_value_twd, cost_twd, profit_loss_twd, pnl_percentage.")
	f.StringVar(&c.dir, "dir", string(engine.SortDesc), "Sort direction: asc or desc.")
}

func (c *pnlCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	key, ok := engine.ParsePNLSortKey(c.sort)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown sort key %q\n", c.sort)
		return subcommands.ExitUsageError
	}
	dir := engine.SortDirection(c.dir)
	if dir != engine.SortAsc && dir != engine.SortDesc {
		fmt.Fprintf(os.Stderr, "Unknown direction %q\n", c.dir)
		return subcommands.ExitUsageError
	}

	d, _, err := c.src.load()
	if err != nil {
		return fail("Error loading backup: %v", err)
	}
	pnl := d.PNL
	pnl.Rows = engine.SortPNLRows(pnl.Rows, key, dir)

	var b strings.Builder
	report.WritePNL(&b, pnl)
	if err := c.src.print(b.String()); err != nil {
		return fail("Error rendering: %v", err)
	}
	return subcommands.ExitSuccess
}

type monthCmd struct {
	src   sourceFlags
	month string
}

func (*monthCmd) Name() string     { return "month" }
func (*monthCmd) Synopsis() string { return "monthly cashflow and budgets" }
func (*monthCmd) Usage() string {
	return `fintrack month [-b <backup>] [-m YYYY-MM]

  Shows income, expenses and savings rate with budget usage for a month.
`
}

func (c *monthCmd) SetFlags(f *flag.FlagSet) {
	c.src.register(f)
	f.StringVar(&c.month, "m", "", "Month (YYYY-MM). Defaults to the month of -d.")
}

func (c *monthCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	d, snap, err := c.src.load()
	if err != nil {
		return fail("Error loading backup: %v", err)
	}
	month, budgets := d.Month, d.Budgets
	if c.month != "" && c.month != d.Month.Month {
		if _, err := time.Parse("2006-01", c.month); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid month %q\n", c.month)
			return subcommands.ExitUsageError
		}
		month = engine.MonthlySummary(snap.Records, c.month)
		budgets = engine.BudgetReport(snap.Budgets, snap.Records, c.month, snap.Settings.ExpenseCategories())
	}

	var b strings.Builder
	report.WriteMonth(&b, month)
	report.WriteBudgets(&b, budgets)
	if err := c.src.print(b.String()); err != nil {
		return fail("Error rendering: %v", err)
	}
	return subcommands.ExitSuccess
}

type dashboardCmd struct {
	src  sourceFlags
	html string
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "full financial overview" }
func (*dashboardCmd) Usage() string {
	return `fintrack dashboard [-b <backup>] [-html <file>]

  Displays every report section; -html also writes a standalone page.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	c.src.register(f)
	f.StringVar(&c.html, "html", "", "Also write the report as HTML to this file.")
}

func (c *dashboardCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	d, _, err := c.src.load()
	if err != nil {
		return fail("Error loading backup: %v", err)
	}
	md := report.Dashboard(d)

	if c.html != "" {
		page, err := report.HTML("Financial overview", md)
		if err != nil {
			return fail("Error rendering HTML: %v", err)
		}
		if err := os.WriteFile(c.html, page, 0o644); err != nil {
			return fail("Error writing %s: %v", c.html, err)
		}
	}

	if err := c.src.print(md); err != nil {
		return fail("Error rendering: %v", err)
	}
	return subcommands.ExitSuccess
}
