package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/engine"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

func validMonth(month string) bool {
	_, err := time.Parse(monthLayout, month)
	return err == nil
}

// cashflowService handles income and expense records.
type cashflowService struct {
	db       *gorm.DB
	settings SettingsServicer
}

// NewCashflowService creates a new CashflowServicer.
func NewCashflowService(db *gorm.DB, settings SettingsServicer) CashflowServicer {
	return &cashflowService{db: db, settings: settings}
}

func (s *cashflowService) buildRecord(userID string, in RecordInput) (*models.CashflowRecord, error) {
	if !in.Type.Valid() {
		return nil, apperrors.ErrInvalidCashflowType
	}
	date, err := time.Parse(dateLayout, in.Date)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be formatted as YYYY-MM-DD")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if in.Amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be negative")
	}

	record := &models.CashflowRecord{
		UserID:      userID,
		Date:        in.Date,
		Type:        in.Type,
		Category:    category,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Description: strings.TrimSpace(in.Description),
		IsRecurring: in.IsRecurring,
	}
	if record.Currency == "" {
		record.Currency = engine.CurrencyTWD
	}

	if in.IsRecurring {
		day := in.RecurrenceDay
		if day == 0 {
			day = date.Day()
		}
		if day < 1 || day > 31 {
			return nil, apperrors.ErrInvalidRecurrenceDay
		}
		record.RecurrenceDay = day
	}

	if in.AccountID != "" {
		var count int64
		if err := s.db.Model(&models.AssetAccount{}).
			Where("id = ? AND user_id = ?", in.AccountID, userID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrAccountNotFound
		}
		id := in.AccountID
		record.AccountID = &id
	}
	return record, nil
}

// CreateRecord stores a new income or expense record.
func (s *cashflowService) CreateRecord(userID string, in RecordInput) (*models.CashflowRecord, error) {
	record, err := s.buildRecord(userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetRecordByID(userID, record.ID)
}

// GetRecordByID retrieves one of the user's records.
func (s *cashflowService) GetRecordByID(userID, recordID string) (*models.CashflowRecord, error) {
	var record models.CashflowRecord
	if err := s.db.Where("id = ? AND user_id = ?", recordID, userID).
		Preload("Account").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &record, nil
}

// UpdateRecord replaces the editable fields of a record.
func (s *cashflowService) UpdateRecord(userID, recordID string, in RecordInput) (*models.CashflowRecord, error) {
	existing, err := s.GetRecordByID(userID, recordID)
	if err != nil {
		return nil, err
	}
	updated, err := s.buildRecord(userID, in)
	if err != nil {
		return nil, err
	}
	updated.Base = existing.Base
	updated.SourceID = existing.SourceID

	if err := s.db.Omit("Account").Save(updated).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetRecordByID(userID, recordID)
}

// DeleteRecord removes a record. Copies generated from a recurring record
// are kept.
func (s *cashflowService) DeleteRecord(userID, recordID string) error {
	record, err := s.GetRecordByID(userID, recordID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(record).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *cashflowService) filtered(userID string, filter CashflowFilter) *gorm.DB {
	query := s.db.Model(&models.CashflowRecord{}).Where("user_id = ?", userID)
	if filter.Month != "" {
		query = query.Where("date LIKE ?", filter.Month+"-%")
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.AccountID != "" {
		query = query.Where("account_id = ?", filter.AccountID)
	}
	return query
}

// ListRecords retrieves a paginated, filtered list of records, newest first.
// The free-text search also matches account names and amounts.
func (s *cashflowService) ListRecords(userID string, page pagination.PageRequest, filter CashflowFilter) (*pagination.PageResponse[models.CashflowRecord], error) {
	page.Defaults()
	if filter.Month != "" && !validMonth(filter.Month) {
		return nil, apperrors.ErrInvalidMonth
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, apperrors.ErrInvalidCashflowType
	}

	if strings.TrimSpace(filter.Search) != "" {
		var all []models.CashflowRecord
		if err := s.filtered(userID, filter).
			Preload("Account").
			Order("date DESC, created_at DESC").
			Find(&all).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		rows := make(map[string]models.CashflowRecord, len(all))
		converted := make([]engine.CashflowRecord, len(all))
		for i := range all {
			rows[all[i].ID] = all[i]
			converted[i] = all[i].ToEngine()
		}
		matches := engine.FilterRecords(converted, filter.Search)

		start := page.Offset()
		if start > len(matches) {
			start = len(matches)
		}
		end := start + page.PageSize
		if end > len(matches) {
			end = len(matches)
		}
		data := make([]models.CashflowRecord, 0, end-start)
		for _, m := range matches[start:end] {
			data = append(data, rows[m.ID])
		}

		result := pagination.NewPageResponse(data, page.Page, page.PageSize, int64(len(matches)))
		return &result, nil
	}

	var totalItems int64
	if err := s.filtered(userID, filter).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var records []models.CashflowRecord
	if err := s.filtered(userID, filter).
		Preload("Account").
		Order("date DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(records, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAllRecords returns every record of the user, oldest first.
func (s *cashflowService) GetAllRecords(userID string) ([]models.CashflowRecord, error) {
	var records []models.CashflowRecord
	if err := s.db.Where("user_id = ?", userID).
		Preload("Account").
		Order("date ASC, created_at ASC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return records, nil
}

// GetMonthlySummary totals income and expense for month (YYYY-MM).
func (s *cashflowService) GetMonthlySummary(userID, month string) (*engine.MonthSummary, error) {
	if !validMonth(month) {
		return nil, apperrors.ErrInvalidMonth
	}

	var records []models.CashflowRecord
	if err := s.filtered(userID, CashflowFilter{Month: month}).Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	converted := make([]engine.CashflowRecord, len(records))
	for i := range records {
		converted[i] = records[i].ToEngine()
	}
	summary := engine.MonthlySummary(converted, month)
	return &summary, nil
}

// MaterializeRecurring creates the monthly copies that the user's recurring
// records owe up to today and advances the user's last check date.
func (s *cashflowService) MaterializeRecurring(userID string, today time.Time) (int, error) {
	settings, err := s.settings.GetSettings(userID)
	if err != nil {
		return 0, err
	}

	var records []models.CashflowRecord
	if err := s.db.Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	converted := make([]engine.CashflowRecord, len(records))
	for i := range records {
		converted[i] = records[i].ToEngine()
	}

	due := engine.DueRecurring(converted, settings.LastRecurringCheck, today)
	if len(due) > 0 {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			for _, r := range due {
				row := models.CashflowRecordFromEngine(userID, r)
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	if err := s.settings.MarkRecurringChecked(userID, today.Format(dateLayout)); err != nil {
		return len(due), err
	}
	return len(due), nil
}

// MaterializeAllRecurring runs MaterializeRecurring for every user that owns
// a recurring record. A failing user is logged and skipped.
func (s *cashflowService) MaterializeAllRecurring(today time.Time) (int, error) {
	var userIDs []string
	if err := s.db.Model(&models.CashflowRecord{}).
		Where("is_recurring = ?", true).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := 0
	var firstErr error
	for _, userID := range userIDs {
		n, err := s.MaterializeRecurring(userID, today)
		total += n
		if err != nil {
			logger.Get().Errorw("failed to materialize recurring records", "user_id", userID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return total, firstErr
}
