package models

import "fintrack/internal/engine"

// Budget caps one expense category for one month. Rows are hard-deleted so the
// unique index can be reused.
type Budget struct {
	Base
	UserID   string  `gorm:"type:uuid;not null;uniqueIndex:idx_budget_user_month_category" json:"user_id"`
	Month    string  `gorm:"type:varchar(7);not null;uniqueIndex:idx_budget_user_month_category" json:"month"`
	Category string  `gorm:"not null;uniqueIndex:idx_budget_user_month_category" json:"category"`
	Amount   float64 `gorm:"not null" json:"amount"`
}

// ToEngine converts the row.
func (b *Budget) ToEngine() engine.Budget {
	return engine.Budget{ID: b.ID, Month: b.Month, Category: b.Category, Amount: engine.Number(b.Amount)}
}
