package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/engine"
)

const (
	sheetCashflow = "Cashflow"
	sheetPNL      = "Investments"
)

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// WriteXLSX writes a workbook with one sheet of cashflow records and one
// sheet with the investment statement.
func WriteXLSX(w io.Writer, records []engine.CashflowRecord, pnl engine.PNLReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// the default sheet is renamed instead of left empty
	if err := f.SetSheetName("Sheet1", sheetCashflow); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := writeCashflowSheet(f, records); err != nil {
		return fmt.Errorf("writing cashflow sheet: %w", err)
	}

	if _, err := f.NewSheet(sheetPNL); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	if err := writePNLSheet(f, pnl); err != nil {
		return fmt.Errorf("writing investment sheet: %w", err)
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeCashflowSheet(f *excelize.File, records []engine.CashflowRecord) error {
	if err := writeRow(f, sheetCashflow, 1, "Date", "Type", "Category", "Amount", "Currency", "Account", "Description", "Recurring"); err != nil {
		return err
	}
	for i, r := range records {
		if err := writeRow(f, sheetCashflow, i+2,
			r.Date, string(r.Type), r.Category, r.Amount.Float(), string(r.Currency), r.AccountName, r.Description, r.Recurring,
		); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(sheetCashflow, "A", "A", 12)
	_ = f.SetColWidth(sheetCashflow, "C", "C", 16)
	_ = f.SetColWidth(sheetCashflow, "F", "G", 24)
	return nil
}

func writePNLSheet(f *excelize.File, pnl engine.PNLReport) error {
	if err := writeRow(f, sheetPNL, 1, "Code", "Type", "Account", "Currency", "Units", "Value (TWD)", "Cost (TWD)", "P/L (TWD)", "P/L %"); err != nil {
		return err
	}
	for i, r := range pnl.Rows {
		if err := writeRow(f, sheetPNL, i+2,
			r.Code, TypeLabel(r.Type), r.AccountName, string(r.Currency), r.Units.Float(),
			r.CurrentValueTWD, r.CostTWD, r.ProfitLossTWD, r.PNLPercentage,
		); err != nil {
			return err
		}
	}
	total := len(pnl.Rows) + 2
	if err := writeRow(f, sheetPNL, total, "Total", "", "", "", "", pnl.TotalValue, pnl.TotalCost, pnl.TotalPNL, pnl.OverallROI); err != nil {
		return err
	}
	_ = f.SetColWidth(sheetPNL, "A", "C", 16)
	_ = f.SetColWidth(sheetPNL, "F", "H", 14)
	return nil
}
