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

// settingsService handles user preferences and the exchange rate in use.
type settingsService struct {
	db          *gorm.DB
	defaultRate float64
}

// NewSettingsService creates a new SettingsServicer. defaultRate is used when
// a user has no manual override and no rate has been fetched yet.
func NewSettingsService(db *gorm.DB, defaultRate float64) SettingsServicer {
	if defaultRate <= 0 {
		defaultRate = engine.DefaultUSDRate
	}
	return &settingsService{db: db, defaultRate: defaultRate}
}

// GetSettings returns the user's settings row, creating it on first use.
func (s *settingsService) GetSettings(userID string) (*models.Settings, error) {
	var settings models.Settings
	if err := s.db.Where(models.Settings{UserID: userID}).FirstOrCreate(&settings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &settings, nil
}

// SetManualRate overrides the USD/TWD rate for the user. A nil rate clears
// the override.
func (s *settingsService) SetManualRate(userID string, rate *float64) (*models.Settings, error) {
	if rate != nil && *rate <= 0 {
		return nil, apperrors.ErrInvalidRate
	}
	settings, err := s.GetSettings(userID)
	if err != nil {
		return nil, err
	}

	var value any
	if rate != nil {
		value = *rate
	}
	if err := s.db.Model(settings).Update("manual_rate", value).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetSettings(userID)
}

func cleanCategories(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// SetCustomCategories replaces the user's custom categories of one type.
func (s *settingsService) SetCustomCategories(userID string, typ engine.CashflowType, categories []string) (*models.Settings, error) {
	if !typ.Valid() {
		return nil, apperrors.ErrInvalidCashflowType
	}
	settings, err := s.GetSettings(userID)
	if err != nil {
		return nil, err
	}

	cleaned := cleanCategories(categories)
	if typ == engine.CashflowIncome {
		settings.CustomIncome = cleaned
	} else {
		settings.CustomExpense = cleaned
	}
	if err := s.db.Save(settings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return settings, nil
}

// MarkRecurringChecked stores the date (YYYY-MM-DD) recurring records were
// last materialized for the user.
func (s *settingsService) MarkRecurringChecked(userID, date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be formatted as YYYY-MM-DD")
	}
	settings, err := s.GetSettings(userID)
	if err != nil {
		return err
	}
	if err := s.db.Model(settings).Update("last_recurring_check", date).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RecordFetchedRate appends an observed USD/TWD rate.
func (s *settingsService) RecordFetchedRate(rate float64, source string, at time.Time) (*models.FXRate, error) {
	if rate <= 0 {
		return nil, apperrors.ErrInvalidRate
	}
	if source == "" {
		source = "manual"
	}

	fx := &models.FXRate{
		Pair:       models.PairUSDTWD,
		Rate:       rate,
		Source:     source,
		RecordedAt: at.UTC(),
	}
	if err := s.db.Create(fx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return fx, nil
}

// LatestFetchedRate returns the most recent observed rate, or nil when none
// has been recorded.
func (s *settingsService) LatestFetchedRate() (*models.FXRate, error) {
	var fx models.FXRate
	err := s.db.Where("pair = ?", models.PairUSDTWD).
		Order("recorded_at DESC").
		First(&fx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &fx, nil
}

// GetRateInfo reports the effective rate for the user and where it came from.
func (s *settingsService) GetRateInfo(userID string) (*RateInfo, error) {
	settings, err := s.GetSettings(userID)
	if err != nil {
		return nil, err
	}
	fetched, err := s.LatestFetchedRate()
	if err != nil {
		return nil, err
	}

	info := &RateInfo{
		ManualRate: settings.ManualRate,
		Fetched:    fetched,
		Default:    s.defaultRate,
	}
	switch {
	case settings.ManualRate != nil && *settings.ManualRate > 0:
		info.Effective = *settings.ManualRate
		info.Source = RateSourceManual
	case fetched != nil && fetched.Rate > 0:
		info.Effective = fetched.Rate
		info.Source = RateSourceFetched
	default:
		info.Effective = s.defaultRate
		info.Source = RateSourceDefault
	}
	return info, nil
}

// EngineSettings returns the user's settings in engine form, including the
// latest fetched rate.
func (s *settingsService) EngineSettings(userID string) (engine.Settings, error) {
	settings, err := s.GetSettings(userID)
	if err != nil {
		return engine.Settings{}, err
	}
	fetched, err := s.LatestFetchedRate()
	if err != nil {
		return engine.Settings{}, err
	}

	var rate *float64
	if fetched != nil {
		rate = &fetched.Rate
	}
	return settings.ToEngine(rate), nil
}
