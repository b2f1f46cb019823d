package services

import (
	"testing"
	"time"

	"fintrack/internal/engine"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/testutil"
)

type stubBackup struct {
	snap engine.Snapshot
	err  error
}

func (s *stubBackup) Export(string) (*engine.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	snap := s.snap
	return &snap, nil
}

func (s *stubBackup) Import(string, engine.Snapshot) (*ImportResult, error) {
	return &ImportResult{}, nil
}

func sampleSnapshot() engine.Snapshot {
	rate := engine.Number(30)
	return engine.Snapshot{
		Accounts: []engine.Account{
			{ID: "bank", Name: "Bank", Assets: []engine.Asset{
				{Code: "CASH", Type: engine.AssetTypeCash, Units: 1, CurrentValue: 100000, Currency: engine.CurrencyTWD},
			}},
			{ID: "broker", Name: "Broker", Assets: []engine.Asset{
				{Code: "2330", Type: engine.AssetTypeStock, Units: 10, Cost: 500, CurrentValue: 600, Currency: engine.CurrencyTWD},
				{Code: "VOO", Type: engine.AssetTypeUSDOther, Units: 1, Cost: 100, CurrentValue: 120, Currency: engine.CurrencyUSD},
			}},
		},
		Records: []engine.CashflowRecord{
			{Date: "2025-03-05", Type: engine.CashflowIncome, Category: "Salary", Amount: 50000},
			{Date: "2025-03-06", Type: engine.CashflowExpense, Category: "Food", Amount: 20000},
		},
		Goals: []engine.Goal{
			{ID: "g1", Name: "Fund", TargetAmount: 200000, LinkedAccountIDs: []string{"bank"}},
		},
		Settings: engine.Settings{ManualRate: &rate},
	}
}

func TestDashboardService(t *testing.T) {
	now := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	svc := NewDashboardService(&stubBackup{snap: sampleSnapshot()}, engine.DefaultHealthConfig(), 32)

	t.Run("summary", func(t *testing.T) {
		view, err := svc.GetSummary("u1")
		testutil.AssertNoError(t, err)
		testutil.AssertFloat(t, "rate", view.Rate, 30)
		testutil.AssertFloat(t, "total", view.Summary.Total, 109600)
		testutil.AssertFloat(t, "foreign", view.Summary.TotalForeignInLocal, 3600)
	})

	t.Run("pnl_sorted", func(t *testing.T) {
		report, err := svc.GetPNL("u1", engine.SortByCode, engine.SortDesc)
		testutil.AssertNoError(t, err)
		if len(report.Rows) != 2 {
			t.Fatalf("expected 2 investment rows, got %d", len(report.Rows))
		}
		if report.Rows[0].Code != "VOO" {
			t.Errorf("expected VOO first, got %s", report.Rows[0].Code)
		}
		testutil.AssertFloat(t, "total pnl", report.TotalPNL, 1600)
	})

	t.Run("pnl_default_key", func(t *testing.T) {
		desc, err := svc.GetPNL("u1", "", "")
		testutil.AssertNoError(t, err)
		if desc.Rows[0].Code != "2330" {
			t.Errorf("expected 2330 (pnl 1000) first, got %s", desc.Rows[0].Code)
		}

		asc, err := svc.GetPNL("u1", "", engine.SortAsc)
		testutil.AssertNoError(t, err)
		if asc.Rows[0].Code != "VOO" {
			t.Errorf("expected VOO (pnl 600) first ascending, got %s", asc.Rows[0].Code)
		}
	})

	t.Run("health", func(t *testing.T) {
		score, err := svc.GetHealth("u1")
		testutil.AssertNoError(t, err)
		if len(score.Feedback) != 3 {
			t.Errorf("expected 3 feedback lines, got %v", score.Feedback)
		}
	})

	t.Run("goals", func(t *testing.T) {
		goals, err := svc.GetGoalProgress("u1", now)
		testutil.AssertNoError(t, err)
		if len(goals) != 1 {
			t.Fatalf("expected 1 goal, got %d", len(goals))
		}
		testutil.AssertFloat(t, "progress", goals[0].Progress, 50)
		if goals[0].MonthsToGoal != 4 {
			t.Errorf("expected 4 months to goal at 30000/month, got %d", goals[0].MonthsToGoal)
		}
	})

	t.Run("dashboard", func(t *testing.T) {
		d, err := svc.GetDashboard("u1", now)
		testutil.AssertNoError(t, err)
		if d.Month.Month != "2025-03" {
			t.Errorf("expected month 2025-03, got %s", d.Month.Month)
		}
		testutil.AssertFloat(t, "net", d.Month.Net, 30000)
		if len(d.Budgets) == 0 {
			t.Error("expected budget lines for default categories")
		}
	})

	t.Run("export_error", func(t *testing.T) {
		failing := NewDashboardService(&stubBackup{err: apperrors.ErrInternalServer}, engine.DefaultHealthConfig(), 32)
		_, err := failing.GetSummary("u1")
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")
	})
}
