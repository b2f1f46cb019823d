package models

import (
	"fintrack/internal/engine"

	"gorm.io/gorm"
)

// AssetAccount groups the holdings a user keeps at one bank, broker or wallet.
type AssetAccount struct {
	Base
	UserID      string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	SortOrder   int     `gorm:"not null;default:0" json:"sort_order"`
	Assets      []Asset `gorm:"foreignKey:AccountID" json:"assets"`
}

// Asset is one holding. Cost and CurrentValue are per unit in Currency.
type Asset struct {
	Base
	AccountID    string           `gorm:"type:uuid;not null;index" json:"account_id"`
	Code         string           `gorm:"not null" json:"code"`
	Type         engine.AssetType `gorm:"not null" json:"account_type"`
	Units        float64          `gorm:"not null;default:0" json:"units"`
	Cost         float64          `gorm:"not null;default:0" json:"cost"`
	CurrentValue float64          `gorm:"not null;default:0" json:"current_value"`
	Currency     engine.Currency  `gorm:"not null;default:'TWD'" json:"currency"`
}

// BeforeSave applies the per-type shape rules so stored rows are canonical.
func (a *Asset) BeforeSave(tx *gorm.DB) error {
	c := a.ToEngine().Canonical()
	a.Units = c.Units.Float()
	a.Cost = c.Cost.Float()
	a.CurrentValue = c.CurrentValue.Float()
	a.Currency = c.Currency
	return nil
}

// ToEngine converts the row into the engine representation.
func (a *Asset) ToEngine() engine.Asset {
	return engine.Asset{
		ID:           a.ID,
		Code:         a.Code,
		Type:         a.Type,
		Units:        engine.Number(a.Units),
		Cost:         engine.Number(a.Cost),
		CurrentValue: engine.Number(a.CurrentValue),
		Currency:     a.Currency,
	}
}

// AssetFromEngine builds a row for accountID from an engine asset.
func AssetFromEngine(accountID string, a engine.Asset) Asset {
	return Asset{
		Base:         Base{ID: a.ID},
		AccountID:    accountID,
		Code:         a.Code,
		Type:         a.Type,
		Units:        a.Units.Float(),
		Cost:         a.Cost.Float(),
		CurrentValue: a.CurrentValue.Float(),
		Currency:     a.Currency,
	}
}

// ToEngine converts the account and its preloaded assets.
func (a *AssetAccount) ToEngine() engine.Account {
	assets := make([]engine.Asset, len(a.Assets))
	for i := range a.Assets {
		assets[i] = a.Assets[i].ToEngine()
	}
	return engine.Account{ID: a.ID, Name: a.Name, Assets: assets}
}
