package models

import "fintrack/internal/engine"

// Goal is a savings target, optionally tracking the value of linked accounts.
type Goal struct {
	Base
	UserID        string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string            `gorm:"not null" json:"name"`
	TargetAmount  float64           `gorm:"not null" json:"target_amount"`
	TargetDate    string            `gorm:"type:varchar(10)" json:"target_date"`
	CurrentAmount float64           `gorm:"not null;default:0" json:"current_amount"`
	Links         []GoalAccountLink `gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE" json:"-"`
}

// GoalAccountLink ties a goal to an asset account whose value counts toward it.
type GoalAccountLink struct {
	GoalID    string `gorm:"type:uuid;primaryKey" json:"goal_id"`
	AccountID string `gorm:"type:uuid;primaryKey" json:"account_id"`
}

// LinkedAccountIDs lists the ids of the preloaded links.
func (g *Goal) LinkedAccountIDs() []string {
	ids := make([]string, 0, len(g.Links))
	for _, l := range g.Links {
		ids = append(ids, l.AccountID)
	}
	return ids
}

// ToEngine converts the goal and its preloaded links.
func (g *Goal) ToEngine() engine.Goal {
	return engine.Goal{
		ID:               g.ID,
		Name:             g.Name,
		TargetAmount:     engine.Number(g.TargetAmount),
		TargetDate:       g.TargetDate,
		CurrentAmount:    engine.Number(g.CurrentAmount),
		LinkedAccountIDs: g.LinkedAccountIDs(),
	}
}
