package models

import (
	"time"

	"fintrack/internal/engine"
)

// Settings holds one user's preferences. There is at most one row per user.
type Settings struct {
	UserID             string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	ManualRate         *float64  `json:"manual_rate"`
	CustomIncome       []string  `gorm:"type:text;serializer:json" json:"custom_income"`
	CustomExpense      []string  `gorm:"type:text;serializer:json" json:"custom_expense"`
	LastRecurringCheck string    `gorm:"type:varchar(10)" json:"last_recurring_check,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ToEngine converts the row. fetched is the latest provider rate, if any.
func (s *Settings) ToEngine(fetched *float64) engine.Settings {
	out := engine.Settings{
		CustomIncome:       s.CustomIncome,
		CustomExpense:      s.CustomExpense,
		LastRecurringCheck: s.LastRecurringCheck,
	}
	if s.ManualRate != nil {
		r := engine.Number(*s.ManualRate)
		out.ManualRate = &r
	}
	if fetched != nil {
		r := engine.Number(*fetched)
		out.FetchedRate = &r
	}
	return out
}
