package engine

import "testing"

func TestPreviousMonth(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-03", "2025-02", true},
		{"2025-01", "2024-12", true},
		{"garbage", "", false},
	}
	for _, tt := range tests {
		got, ok := PreviousMonth(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("PreviousMonth(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBudgetReport(t *testing.T) {
	budgets := []Budget{
		{Month: "2025-03", Category: "Food", Amount: 5000},
		{Month: "2025-03", Category: "Housing", Amount: 10000},
		{Month: "2025-02", Category: "Food", Amount: 1},
	}
	records := []CashflowRecord{
		{Date: "2025-03-05", Type: CashflowExpense, Category: "Food", Amount: 3000},
		{Date: "2025-03-10", Type: CashflowExpense, Category: "Food", Amount: 2500},
		{Date: "2025-03-11", Type: CashflowExpense, Category: "Travel", Amount: 700},
		{Date: "2025-03-12", Type: CashflowIncome, Category: "Food", Amount: 100000},
		{Date: "2024-12-01", Type: CashflowExpense, Category: "Food", Amount: 1000},
		{Date: "2025-01-15", Type: CashflowExpense, Category: "Food", Amount: 2000},
		{Date: "2024-11-30", Type: CashflowExpense, Category: "Food", Amount: 50000},
	}

	lines := BudgetReport(budgets, records, "2025-03", []string{"Food", "Housing", "Food"})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %+v", len(lines), lines)
	}

	food := lines[0]
	if food.Category != "Food" || food.Budgeted != 5000 || food.Spent != 5500 {
		t.Errorf("unexpected food line %+v", food)
	}
	if food.Remaining != -500 || !food.Overspent {
		t.Errorf("food should be overspent by 500, got %+v", food)
	}
	if food.AverageSpend != 1500 {
		t.Errorf("expected average spend 1500, got %v", food.AverageSpend)
	}

	housing := lines[1]
	if housing.Spent != 0 || housing.Remaining != 10000 || housing.Overspent {
		t.Errorf("unexpected housing line %+v", housing)
	}

	travel := lines[2]
	if travel.Category != "Travel" || travel.HasBudget || travel.Spent != 700 {
		t.Errorf("unexpected travel line %+v", travel)
	}
}
