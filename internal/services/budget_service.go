package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/engine"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// budgetService handles monthly category budgets.
type budgetService struct {
	db       *gorm.DB
	settings SettingsServicer
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, settings SettingsServicer) BudgetServicer {
	return &budgetService{db: db, settings: settings}
}

func (s *budgetService) find(tx *gorm.DB, userID, month, category string) (*models.Budget, error) {
	var budget models.Budget
	err := tx.Unscoped().
		Where("user_id = ? AND month = ? AND category = ?", userID, month, category).
		First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

func (s *budgetService) upsert(tx *gorm.DB, userID, month, category string, amount float64) (*models.Budget, error) {
	existing, err := s.find(tx, userID, month, category)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := tx.Model(existing).Update("amount", amount).Error; err != nil {
			return nil, err
		}
		existing.Amount = amount
		return existing, nil
	}

	budget := &models.Budget{UserID: userID, Month: month, Category: category, Amount: amount}
	if err := tx.Create(budget).Error; err != nil {
		return nil, err
	}
	return budget, nil
}

// SetBudget creates or replaces the budget for a category in month. A zero
// or negative amount removes the budget and returns nil.
func (s *budgetService) SetBudget(userID, month, category string, amount float64) (*models.Budget, error) {
	if !validMonth(month) {
		return nil, apperrors.ErrInvalidMonth
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}

	if amount <= 0 {
		if err := s.db.Unscoped().
			Where("user_id = ? AND month = ? AND category = ?", userID, month, category).
			Delete(&models.Budget{}).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, nil
	}

	budget, err := s.upsert(s.db, userID, month, category, amount)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// GetMonthBudgets lists the budgets of month ordered by category.
func (s *budgetService) GetMonthBudgets(userID, month string) ([]models.Budget, error) {
	if !validMonth(month) {
		return nil, apperrors.ErrInvalidMonth
	}

	var budgets []models.Budget
	if err := s.db.Where("user_id = ? AND month = ?", userID, month).
		Order("category ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// DeleteBudget removes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrBudgetNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Unscoped().Delete(&budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CopyPreviousMonth copies last month's budgets into month, leaving
// categories that already have a budget untouched. It returns the number of
// budgets copied.
func (s *budgetService) CopyPreviousMonth(userID, month string) (int, error) {
	prev, ok := engine.PreviousMonth(month)
	if !ok {
		return 0, apperrors.ErrInvalidMonth
	}

	source, err := s.GetMonthBudgets(userID, prev)
	if err != nil {
		return 0, err
	}
	if len(source) == 0 {
		return 0, apperrors.ErrNothingToCopy
	}

	copied := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, b := range source {
			existing, err := s.find(tx, userID, month, b.Category)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			if _, err := s.upsert(tx, userID, month, b.Category, b.Amount); err != nil {
				return err
			}
			copied++
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return copied, nil
}

// GetBudgetReport compares budgets with actual spending for month, one line
// per expense category.
func (s *budgetService) GetBudgetReport(userID, month string) ([]engine.BudgetLine, error) {
	start, err := time.Parse(monthLayout, month)
	if err != nil {
		return nil, apperrors.ErrInvalidMonth
	}
	settings, err := s.settings.EngineSettings(userID)
	if err != nil {
		return nil, err
	}

	budgets, err := s.GetMonthBudgets(userID, month)
	if err != nil {
		return nil, err
	}

	from := start.AddDate(0, -engine.BudgetAverageMonths, 0).Format(monthLayout)
	to := start.AddDate(0, 1, 0).Format(monthLayout)
	var records []models.CashflowRecord
	if err := s.db.Where("user_id = ? AND type = ? AND date >= ? AND date < ?",
		userID, engine.CashflowExpense, from, to).
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	eb := make([]engine.Budget, len(budgets))
	for i := range budgets {
		eb[i] = budgets[i].ToEngine()
	}
	er := make([]engine.CashflowRecord, len(records))
	for i := range records {
		er[i] = records[i].ToEngine()
	}
	return engine.BudgetReport(eb, er, month, settings.ExpenseCategories()), nil
}
