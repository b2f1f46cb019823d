package engine

import (
	"testing"
	"time"
)

func TestDueRecurring(t *testing.T) {
	today := time.Date(2025, 4, 10, 15, 0, 0, 0, time.UTC)
	rent := CashflowRecord{
		ID: "rent", Date: "2025-01-15", Type: CashflowExpense, Category: "Housing",
		Amount: 8000, Recurring: true, RecurrenceDay: 31,
	}

	dates := func(rs []CashflowRecord) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.Date
		}
		return out
	}

	t.Run("clamps_to_month_end", func(t *testing.T) {
		due := DueRecurring([]CashflowRecord{rent}, "", today)
		want := []string{"2025-01-31", "2025-02-28", "2025-03-31"}
		got := dates(due)
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("occurrence %d: expected %s, got %s", i, want[i], got[i])
			}
		}
		for _, r := range due {
			if r.Recurring || r.SourceID != "rent" || r.ID != "" || r.Amount != 8000 {
				t.Errorf("unexpected generated record %+v", r)
			}
		}
	})

	t.Run("respects_last_check", func(t *testing.T) {
		due := DueRecurring([]CashflowRecord{rent}, "2025-03-01", today)
		if got := dates(due); len(got) != 1 || got[0] != "2025-03-31" {
			t.Errorf("expected only 2025-03-31, got %v", got)
		}
	})

	t.Run("skips_already_generated", func(t *testing.T) {
		existing := CashflowRecord{ID: "x", Date: "2025-02-28", SourceID: "rent", Type: CashflowExpense, Amount: 8000}
		due := DueRecurring([]CashflowRecord{rent, existing}, "", today)
		if len(due) != 2 {
			t.Errorf("expected 2 occurrences, got %v", dates(due))
		}
	})

	t.Run("ignores_invalid_templates", func(t *testing.T) {
		bad := []CashflowRecord{
			{ID: "a", Date: "2025-01-01", Recurring: true, RecurrenceDay: 0},
			{ID: "b", Date: "not-a-date", Recurring: true, RecurrenceDay: 5},
			{ID: "c", Date: "2025-01-01", RecurrenceDay: 5},
		}
		if due := DueRecurring(bad, "", today); len(due) != 0 {
			t.Errorf("expected nothing due, got %v", dates(due))
		}
	})
}
