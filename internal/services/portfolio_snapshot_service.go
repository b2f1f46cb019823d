package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/engine"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// portfolioSnapshotService records daily net-worth history.
type portfolioSnapshotService struct {
	db        *gorm.DB
	dashboard DashboardServicer
}

// NewPortfolioSnapshotService creates a new PortfolioSnapshotServicer.
func NewPortfolioSnapshotService(db *gorm.DB, dashboard DashboardServicer) PortfolioSnapshotServicer {
	return &portfolioSnapshotService{db: db, dashboard: dashboard}
}

// snapshotDay truncates t to midnight UTC. One snapshot is kept per user per day.
func snapshotDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ComputeAndRecordSnapshots computes and stores a snapshot for every user
// that owns an account. Running it twice on the same day overwrites the
// day's snapshot.
func (s *portfolioSnapshotService) ComputeAndRecordSnapshots(recordedAt time.Time) (int, error) {
	day := snapshotDay(recordedAt)

	var userIDs []string
	if err := s.db.Model(&models.AssetAccount{}).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	count := 0
	for _, userID := range userIDs {
		d, err := s.dashboard.GetDashboard(userID, recordedAt)
		if err != nil {
			return count, err
		}
		snapshot := snapshotFromDashboard(userID, day, d)

		var existing models.PortfolioSnapshot
		result := s.db.Where("user_id = ? AND recorded_at = ?", userID, day).First(&existing)
		switch {
		case result.Error == nil:
			snapshot.ID = existing.ID
			if err := s.db.Save(snapshot).Error; err != nil {
				return count, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			if err := s.db.Create(snapshot).Error; err != nil {
				return count, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		default:
			return count, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		count++
	}

	return count, nil
}

func snapshotFromDashboard(userID string, day time.Time, d *engine.Dashboard) *models.PortfolioSnapshot {
	return &models.PortfolioSnapshot{
		UserID:          userID,
		RecordedAt:      day,
		USDRate:         d.Rate,
		TotalNetWorth:   d.Summary.Total,
		CashValue:       d.Summary.ValueOf(engine.AssetTypeCash),
		ETFValue:        d.Summary.ValueOf(engine.AssetTypeETF),
		StockValue:      d.Summary.ValueOf(engine.AssetTypeStock),
		RealEstateValue: d.Summary.ValueOf(engine.AssetTypeRealEstate),
		USDOtherValue:   d.Summary.ValueOf(engine.AssetTypeUSDOther),
		ForeignValue:    d.Summary.TotalForeignInLocal,
		InvestmentPNL:   d.PNL.TotalPNL,
		HealthScore:     d.Health.Score,
	}
}

// GetSnapshots returns paginated snapshots for a user within a date range.
func (s *portfolioSnapshotService) GetSnapshots(
	userID string,
	from, to time.Time,
	page pagination.PageRequest,
) (*pagination.PageResponse[models.PortfolioSnapshot], error) {
	page.Defaults()

	inRange := func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND recorded_at >= ? AND recorded_at <= ?", userID, from.UTC(), to.UTC())
	}

	var totalItems int64
	if err := s.db.Model(&models.PortfolioSnapshot{}).Scopes(inRange).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var snapshots []models.PortfolioSnapshot
	if err := s.db.Scopes(inRange).Order("recorded_at DESC").Scopes(pagination.Paginate(page)).Find(&snapshots).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(snapshots, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetLatestSnapshot returns the user's most recent snapshot.
func (s *portfolioSnapshotService) GetLatestSnapshot(userID string) (*models.PortfolioSnapshot, error) {
	var snapshot models.PortfolioSnapshot
	if err := s.db.Where("user_id = ?", userID).Order("recorded_at DESC").First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSnapshotNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &snapshot, nil
}
