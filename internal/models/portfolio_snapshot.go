package models

import (
	"time"

	"fintrack/internal/uuid"

	"gorm.io/gorm"
)

// PortfolioSnapshot is a user's net worth and allocation on one day, valued in
// TWD. This is immutable time-series data, no Base embed, no soft deletes.
type PortfolioSnapshot struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string    `gorm:"type:uuid;not null;uniqueIndex:idx_snapshot_user_recorded" json:"user_id"`
	RecordedAt      time.Time `gorm:"not null;uniqueIndex:idx_snapshot_user_recorded" json:"recorded_at"`
	USDRate         float64   `gorm:"not null" json:"usd_rate"`
	TotalNetWorth   float64   `gorm:"not null" json:"total_net_worth"`
	CashValue       float64   `gorm:"not null" json:"cash_value"`
	ETFValue        float64   `gorm:"not null" json:"etf_value"`
	StockValue      float64   `gorm:"not null" json:"stock_value"`
	RealEstateValue float64   `gorm:"not null" json:"real_estate_value"`
	USDOtherValue   float64   `gorm:"not null" json:"usd_other_value"`
	ForeignValue    float64   `gorm:"not null" json:"foreign_value"`
	InvestmentPNL   float64   `gorm:"not null" json:"investment_pnl"`
	HealthScore     int       `gorm:"not null" json:"health_score"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (p *PortfolioSnapshot) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New()
	}
	return nil
}
