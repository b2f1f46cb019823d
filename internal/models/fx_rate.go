package models

import (
	"time"

	"fintrack/internal/uuid"

	"gorm.io/gorm"
)

// PairUSDTWD is the only currency pair the application converts.
const PairUSDTWD = "USDTWD"

// FXRate is an observed exchange rate. Append-only time series, no soft deletes.
type FXRate struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	Pair       string    `gorm:"type:varchar(12);not null;index:idx_fx_pair_recorded" json:"pair"`
	Rate       float64   `gorm:"not null" json:"rate"`
	Source     string    `gorm:"not null" json:"source"`
	RecordedAt time.Time `gorm:"not null;index:idx_fx_pair_recorded" json:"recorded_at"`
}

// TableName pins the table name.
func (FXRate) TableName() string { return "fx_rates" }

// BeforeCreate hook generates a UUIDv7 for new records
func (r *FXRate) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New()
	}
	return nil
}
