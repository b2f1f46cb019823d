package engine

import (
	"math"
	"time"
)

// SavingsWindowMonths is the trailing window used to project goal completion.
const SavingsWindowMonths = 6

// Goal is a savings target. When LinkedAccountIDs is non-empty the linked
// accounts' current value replaces CurrentAmount.
type Goal struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	TargetAmount     Number   `json:"target_amount"`
	TargetDate       string   `json:"target_date"`
	CurrentAmount    Number   `json:"current_amount"`
	LinkedAccountIDs []string `json:"linked_account_ids"`
}

// Linked reports whether the goal tracks account values.
func (g Goal) Linked() bool {
	return len(g.LinkedAccountIDs) > 0
}

// GoalProgress is the derived state of a goal.
type GoalProgress struct {
	GoalID              string  `json:"goal_id"`
	Name                string  `json:"name"`
	TargetAmount        float64 `json:"target_amount"`
	TargetDate          string  `json:"target_date"`
	CurrentAmount       float64 `json:"current_amount"`
	Linked              bool    `json:"linked"`
	Progress            float64 `json:"progress"`
	Completed           bool    `json:"completed"`
	Remaining           float64 `json:"remaining"`
	MonthsToGoal        int     `json:"months_to_goal,omitempty"`
	ProjectedCompletion string  `json:"projected_completion,omitempty"`
}

// EffectiveGoalAmount returns the summed local value of the linked accounts,
// or the manual amount when no account is linked. Unknown ids add nothing.
func EffectiveGoalAmount(g Goal, accounts []ValuedAccount) float64 {
	if !g.Linked() {
		return nonNegative(g.CurrentAmount.Float())
	}

	byID := make(map[string]float64, len(accounts))
	for _, acc := range accounts {
		byID[acc.ID] = acc.TotalTWD()
	}

	var total float64
	for _, id := range g.LinkedAccountIDs {
		total += byID[id]
	}
	return total
}

// TrackGoals computes progress for every goal. avgSavings is the average
// monthly net used to project a completion month when it is positive.
func TrackGoals(goals []Goal, accounts []ValuedAccount, avgSavings float64, now time.Time) []GoalProgress {
	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		target := nonNegative(g.TargetAmount.Float())
		current := EffectiveGoalAmount(g, accounts)

		p := GoalProgress{
			GoalID:        g.ID,
			Name:          g.Name,
			TargetAmount:  target,
			TargetDate:    g.TargetDate,
			CurrentAmount: current,
			Linked:        g.Linked(),
			Remaining:     math.Max(0, target-current),
		}
		if target > 0 {
			p.Progress = math.Min(current/target*100, 100)
			p.Completed = p.Progress >= 100
		}

		if !p.Completed && avgSavings > 0 && p.Remaining > 0 {
			p.MonthsToGoal = int(math.Ceil(p.Remaining / avgSavings))
			p.ProjectedCompletion = now.AddDate(0, p.MonthsToGoal, 0).Format("2006-01")
		}
		out = append(out, p)
	}
	return out
}
