package engine

import (
	"testing"
	"time"
)

func TestSettings_EffectiveRate(t *testing.T) {
	manual := Number(31.5)
	fetched := Number(30.9)
	zero := Number(0)

	tests := []struct {
		name     string
		settings Settings
		fallback float64
		want     float64
	}{
		{"manual_wins", Settings{ManualRate: &manual, FetchedRate: &fetched}, 32, 31.5},
		{"fetched_next", Settings{FetchedRate: &fetched}, 32, 30.9},
		{"zero_manual_ignored", Settings{ManualRate: &zero}, 29, 29},
		{"constant_last", Settings{}, 0, DefaultUSDRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.settings.EffectiveRate(tt.fallback); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSettings_ExpenseCategories(t *testing.T) {
	s := Settings{CustomExpense: []string{"Pets", "Food", ""}}
	cats := s.ExpenseCategories()
	if len(cats) != len(DefaultExpenseCategories)+1 {
		t.Fatalf("expected defaults plus one custom category, got %v", cats)
	}
	if cats[len(cats)-1] != "Pets" {
		t.Errorf("custom category should come last, got %v", cats)
	}
}

func TestAnalyze(t *testing.T) {
	now := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Accounts: sampleAccounts(),
		Records: []CashflowRecord{
			{Date: "2025-03-01", Type: CashflowIncome, Category: "Salary", Amount: 60000},
			{Date: "2025-03-02", Type: CashflowExpense, Category: "Food", Amount: 30000},
		},
		Budgets: []Budget{{Month: "2025-03", Category: "Food", Amount: 20000}},
		Goals:   []Goal{{ID: "g", Name: "House", TargetAmount: 2000000, LinkedAccountIDs: []string{"house"}}},
	}

	d := Analyze(snap, 32, DefaultHealthConfig(), now)
	if d.Rate != 32 {
		t.Errorf("expected rate 32, got %v", d.Rate)
	}
	if !approx(d.Summary.Total, 1422000) {
		t.Errorf("expected total 1422000, got %v", d.Summary.Total)
	}
	if d.Month.Month != "2025-03" || d.Month.Net != 30000 {
		t.Errorf("unexpected month summary %+v", d.Month)
	}
	if len(d.PNL.Rows) != 2 {
		t.Errorf("expected 2 pnl rows, got %d", len(d.PNL.Rows))
	}
	if len(d.Goals) != 1 || d.Goals[0].CurrentAmount != 1200000 {
		t.Errorf("unexpected goals %+v", d.Goals)
	}
	if d.Budgets[0].Category != "Food" || !d.Budgets[0].Overspent {
		t.Errorf("expected overspent food budget first, got %+v", d.Budgets[0])
	}
	if d.Health.Score < 0 || d.Health.Score > 100 {
		t.Errorf("score out of range: %d", d.Health.Score)
	}
}
