package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// goalService handles savings goals.
type goalService struct {
	db *gorm.DB
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db}
}

func (s *goalService) validate(userID string, in GoalInput) ([]string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal name is required")
	}
	if in.TargetAmount < 0 || in.CurrentAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amounts cannot be negative")
	}
	if in.TargetDate != "" {
		if _, err := time.Parse(dateLayout, in.TargetDate); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target date must be formatted as YYYY-MM-DD")
		}
	}

	ids := make([]string, 0, len(in.LinkedAccountIDs))
	seen := make(map[string]bool, len(in.LinkedAccountIDs))
	for _, id := range in.LinkedAccountIDs {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) > 0 {
		var count int64
		if err := s.db.Model(&models.AssetAccount{}).
			Where("user_id = ? AND id IN ?", userID, ids).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if int(count) != len(ids) {
			return nil, apperrors.ErrAccountNotFound
		}
	}
	return ids, nil
}

func replaceLinks(tx *gorm.DB, goalID string, accountIDs []string) error {
	if err := tx.Where("goal_id = ?", goalID).Delete(&models.GoalAccountLink{}).Error; err != nil {
		return err
	}
	for _, id := range accountIDs {
		if err := tx.Create(&models.GoalAccountLink{GoalID: goalID, AccountID: id}).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateGoal stores a new goal and its account links.
func (s *goalService) CreateGoal(userID string, in GoalInput) (*models.Goal, error) {
	ids, err := s.validate(userID, in)
	if err != nil {
		return nil, err
	}

	goal := &models.Goal{
		UserID:        userID,
		Name:          strings.TrimSpace(in.Name),
		TargetAmount:  in.TargetAmount,
		TargetDate:    in.TargetDate,
		CurrentAmount: in.CurrentAmount,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Links").Create(goal).Error; err != nil {
			return err
		}
		return replaceLinks(tx, goal.ID, ids)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetGoalByID(userID, goal.ID)
}

// GetUserGoals lists the user's goals, oldest first.
func (s *goalService) GetUserGoals(userID string) ([]models.Goal, error) {
	var goals []models.Goal
	if err := s.db.Where("user_id = ?", userID).
		Preload("Links").
		Order("created_at ASC").
		Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goals, nil
}

// GetGoalByID retrieves one of the user's goals.
func (s *goalService) GetGoalByID(userID, goalID string) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.Where("id = ? AND user_id = ?", goalID, userID).
		Preload("Links").
		First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// UpdateGoal replaces the goal's fields and account links.
func (s *goalService) UpdateGoal(userID, goalID string, in GoalInput) (*models.Goal, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}
	ids, err := s.validate(userID, in)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(goal).Updates(map[string]any{
			"name":           strings.TrimSpace(in.Name),
			"target_amount":  in.TargetAmount,
			"target_date":    in.TargetDate,
			"current_amount": in.CurrentAmount,
		}).Error; err != nil {
			return err
		}
		return replaceLinks(tx, goal.ID, ids)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetGoalByID(userID, goalID)
}

// DeleteGoal removes a goal and its links.
func (s *goalService) DeleteGoal(userID, goalID string) error {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", goal.ID).Delete(&models.GoalAccountLink{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Omit("Links").Delete(goal).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
