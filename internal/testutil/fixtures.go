package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/engine"
	"fintrack/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email and password "password123".
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates an asset account holding the given assets.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string, assets ...models.Asset) *models.AssetAccount {
	t.Helper()

	account := &models.AssetAccount{
		UserID: userID,
		Name:   fmt.Sprintf("Test Account %d", nextID()),
		Assets: assets,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CashAsset returns an unsaved TWD cash holding worth value.
func CashAsset(value float64) models.Asset {
	return models.Asset{
		Code:         fmt.Sprintf("CASH%d", nextID()),
		Type:         engine.AssetTypeCash,
		Units:        1,
		CurrentValue: value,
		Cost:         value,
		Currency:     engine.CurrencyTWD,
	}
}

// StockAsset returns an unsaved TWD stock holding.
func StockAsset(code string, units, cost, price float64) models.Asset {
	return models.Asset{
		Code:         code,
		Type:         engine.AssetTypeStock,
		Units:        units,
		Cost:         cost,
		CurrentValue: price,
		Currency:     engine.CurrencyTWD,
	}
}

// CreateTestRecord creates a cashflow record on date (YYYY-MM-DD).
func CreateTestRecord(t *testing.T, db *gorm.DB, userID string, typ engine.CashflowType, category string, amount float64, date string) *models.CashflowRecord {
	t.Helper()

	record := &models.CashflowRecord{
		UserID:   userID,
		Date:     date,
		Type:     typ,
		Category: category,
		Amount:   amount,
		Currency: engine.CurrencyTWD,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create test record: %v", err)
	}
	return record
}

// CreateTestBudget creates a budget for category in month (YYYY-MM).
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, month, category string, amount float64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:   userID,
		Month:    month,
		Category: category,
		Amount:   amount,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestGoal creates a goal linked to the given accounts.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID string, target float64, accountIDs ...string) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:       userID,
		Name:         fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount: target,
	}
	for _, id := range accountIDs {
		goal.Links = append(goal.Links, models.GoalAccountLink{AccountID: id})
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestFXRate records a USD/TWD rate observed at recordedAt.
func CreateTestFXRate(t *testing.T, db *gorm.DB, rate float64, recordedAt time.Time) *models.FXRate {
	t.Helper()

	fx := &models.FXRate{
		Pair:       models.PairUSDTWD,
		Rate:       rate,
		Source:     "test",
		RecordedAt: recordedAt,
	}
	if err := db.Create(fx).Error; err != nil {
		t.Fatalf("failed to create test fx rate: %v", err)
	}
	return fx
}

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
