package models

import "fintrack/internal/engine"

// CashflowRecord is an income or expense entry. Date is stored as YYYY-MM-DD
// so month filters are prefix matches.
type CashflowRecord struct {
	Base
	UserID        string              `gorm:"type:uuid;not null;index:idx_cashflow_user_date" json:"user_id"`
	AccountID     *string             `gorm:"type:uuid" json:"account_id,omitempty"`
	Date          string              `gorm:"type:varchar(10);not null;index:idx_cashflow_user_date" json:"date"`
	Type          engine.CashflowType `gorm:"not null" json:"type"`
	Category      string              `gorm:"not null" json:"category"`
	Amount        float64             `gorm:"not null;default:0" json:"amount"`
	Currency      engine.Currency     `gorm:"not null;default:'TWD'" json:"currency"`
	Description   string              `json:"description"`
	IsRecurring   bool                `gorm:"not null;default:false" json:"is_recurring"`
	RecurrenceDay int                 `gorm:"not null;default:0" json:"recurrence_day,omitempty"`
	SourceID      *string             `gorm:"type:uuid;index" json:"source_id,omitempty"`

	Account *AssetAccount `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// ToEngine converts the row, taking the account name from the preloaded account.
func (r *CashflowRecord) ToEngine() engine.CashflowRecord {
	out := engine.CashflowRecord{
		ID:            r.ID,
		Date:          r.Date,
		Type:          r.Type,
		Category:      r.Category,
		Amount:        engine.Number(r.Amount),
		Currency:      r.Currency,
		Description:   r.Description,
		Recurring:     r.IsRecurring,
		RecurrenceDay: r.RecurrenceDay,
	}
	if r.AccountID != nil {
		out.AccountID = *r.AccountID
	}
	if r.Account != nil {
		out.AccountName = r.Account.Name
	}
	if r.SourceID != nil {
		out.SourceID = *r.SourceID
	}
	return out
}

// CashflowRecordFromEngine builds a row for userID from an engine record.
func CashflowRecordFromEngine(userID string, r engine.CashflowRecord) CashflowRecord {
	row := CashflowRecord{
		Base:          Base{ID: r.ID},
		UserID:        userID,
		Date:          r.Date,
		Type:          r.Type,
		Category:      r.Category,
		Amount:        r.Amount.Float(),
		Currency:      r.Currency,
		Description:   r.Description,
		IsRecurring:   r.Recurring,
		RecurrenceDay: r.RecurrenceDay,
	}
	if row.Currency == "" {
		row.Currency = engine.CurrencyTWD
	}
	if r.AccountID != "" {
		id := r.AccountID
		row.AccountID = &id
	}
	if r.SourceID != "" {
		id := r.SourceID
		row.SourceID = &id
	}
	return row
}
