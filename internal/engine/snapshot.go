package engine

import "time"

// DefaultUSDRate is the USD to TWD rate used when neither a manual override
// nor a fetched rate is available.
const DefaultUSDRate = 32.0

// Default category lists offered before any custom category is added.
var (
	DefaultIncomeCategories  = []string{"Salary", "Bonus", "Investment", "Side Income", "Other Income"}
	DefaultExpenseCategories = []string{"Food", "Housing", "Transportation", "Utilities", "Entertainment", "Shopping", "Medical", "Education", "Insurance", "Other"}
)

// Settings are the per-user preferences that feed computation.
type Settings struct {
	ManualRate         *Number  `json:"manual_rate"`
	FetchedRate        *Number  `json:"fetched_rate,omitempty"`
	CustomIncome       []string `json:"custom_income"`
	CustomExpense      []string `json:"custom_expense"`
	LastRecurringCheck string   `json:"last_recurring_check,omitempty"`
}

// EffectiveRate picks the manual override, then the last fetched rate, then
// fallback. Non-positive rates are ignored.
func (s Settings) EffectiveRate(fallback float64) float64 {
	if s.ManualRate != nil && s.ManualRate.Float() > 0 {
		return s.ManualRate.Float()
	}
	if s.FetchedRate != nil && s.FetchedRate.Float() > 0 {
		return s.FetchedRate.Float()
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultUSDRate
}

// ExpenseCategories returns the default expense categories followed by the custom ones.
func (s Settings) ExpenseCategories() []string {
	return mergeCategories(DefaultExpenseCategories, s.CustomExpense)
}

// IncomeCategories returns the default income categories followed by the custom ones.
func (s Settings) IncomeCategories() []string {
	return mergeCategories(DefaultIncomeCategories, s.CustomIncome)
}

func mergeCategories(base, custom []string) []string {
	out := make([]string, 0, len(base)+len(custom))
	seen := make(map[string]bool, len(base)+len(custom))
	for _, list := range [][]string{base, custom} {
		for _, c := range list {
			if c != "" && !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Snapshot is everything the engine needs for one user at one point in time.
type Snapshot struct {
	Accounts []Account        `json:"asset_accounts"`
	Records  []CashflowRecord `json:"cashflow_records"`
	Budgets  []Budget         `json:"budgets"`
	Goals    []Goal           `json:"goals"`
	Settings Settings         `json:"settings"`
	TakenAt  time.Time        `json:"backup_timestamp"`
}

// Dashboard is the complete derived view of a snapshot.
type Dashboard struct {
	Rate    float64         `json:"usd_twd_rate"`
	Summary Summary         `json:"summary"`
	Health  HealthScore     `json:"health"`
	Month   MonthSummary    `json:"month"`
	PNL     PNLReport       `json:"pnl"`
	Goals   []GoalProgress  `json:"goals"`
	Budgets []BudgetLine    `json:"budgets"`
	Valued  []ValuedAccount `json:"accounts"`
}

// Analyze runs every computation over snap for the month containing now.
func Analyze(snap Snapshot, fallbackRate float64, cfg HealthConfig, now time.Time) Dashboard {
	rate := snap.Settings.EffectiveRate(fallbackRate)
	valued := Normalize(snap.Accounts, rate)
	month := now.Format("2006-01")

	return Dashboard{
		Rate:    rate,
		Summary: Summarize(valued),
		Health:  ScoreHealth(valued, snap.Records, cfg),
		Month:   MonthlySummary(snap.Records, month),
		PNL:     ComputePNL(valued),
		Goals:   TrackGoals(snap.Goals, valued, AverageMonthlySavings(snap.Records, now, SavingsWindowMonths), now),
		Budgets: BudgetReport(snap.Budgets, snap.Records, month, snap.Settings.ExpenseCategories()),
		Valued:  valued,
	}
}
