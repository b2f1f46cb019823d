package services

import (
	"context"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/fxrate"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

type fxService struct {
	provider fxrate.Provider
	source   string
	settings SettingsServicer
	now      func() time.Time
}

// NewFXService creates an FXServicer that records rates from provider under
// the given source label.
func NewFXService(provider fxrate.Provider, source string, settings SettingsServicer) FXServicer {
	return &fxService{provider: provider, source: source, settings: settings, now: time.Now}
}

// Refresh asks the provider for the current rate and records it. A quote the
// provider served from its cache is recorded only if the history does not
// already hold it.
func (s *fxService) Refresh(ctx context.Context) (*models.FXRate, error) {
	if s.provider == nil {
		return nil, apperrors.ErrRateUnavailable
	}

	q, err := s.provider.USDToTWD(ctx)
	if err != nil {
		logger.Named("fx").Warnw("rate fetch failed", "source", s.source, "error", err)
		return nil, apperrors.Wrap(apperrors.ErrRateUnavailable, err)
	}

	at := q.FetchedAt
	if at.IsZero() {
		at = s.now()
	}
	if q.Cached {
		latest, err := s.settings.LatestFetchedRate()
		if err != nil {
			return nil, err
		}
		if latest != nil && latest.Source == s.source && latest.Rate == q.Rate &&
			!latest.RecordedAt.Before(at.Add(-time.Second)) {
			return latest, nil
		}
	}
	return s.settings.RecordFetchedRate(q.Rate, s.source, at)
}
