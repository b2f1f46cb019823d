package services

import (
	"time"

	"fintrack/internal/engine"
)

// dashboardService runs the engine over the snapshot of a user's stored data.
type dashboardService struct {
	backup      BackupServicer
	cfg         engine.HealthConfig
	defaultRate float64
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(backup BackupServicer, cfg engine.HealthConfig, defaultRate float64) DashboardServicer {
	return &dashboardService{backup: backup, cfg: cfg, defaultRate: defaultRate}
}

func (s *dashboardService) load(userID string) (*engine.Snapshot, float64, []engine.ValuedAccount, error) {
	snap, err := s.backup.Export(userID)
	if err != nil {
		return nil, 0, nil, err
	}
	rate := snap.Settings.EffectiveRate(s.defaultRate)
	return snap, rate, engine.Normalize(snap.Accounts, rate), nil
}

// GetDashboard computes every derived view for the month containing now.
func (s *dashboardService) GetDashboard(userID string, now time.Time) (*engine.Dashboard, error) {
	snap, err := s.backup.Export(userID)
	if err != nil {
		return nil, err
	}
	d := engine.Analyze(*snap, s.defaultRate, s.cfg, now)
	return &d, nil
}

func (s *dashboardService) GetSummary(userID string) (*SummaryView, error) {
	_, rate, valued, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	return &SummaryView{Rate: rate, Summary: engine.Summarize(valued)}, nil
}

func (s *dashboardService) GetHealth(userID string) (*engine.HealthScore, error) {
	snap, _, valued, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	score := engine.ScoreHealth(valued, snap.Records, s.cfg)
	return &score, nil
}

// GetPNL returns the investment statement with rows sorted by key, or by
// engine.DefaultPNLSort when key is empty.
func (s *dashboardService) GetPNL(userID string, key engine.PNLSortKey, dir engine.SortDirection) (*engine.PNLReport, error) {
	_, _, valued, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	report := engine.ComputePNL(valued)
	if key == "" {
		key = engine.DefaultPNLSort
	}
	if dir == "" {
		dir = engine.SortDesc
	}
	report.Rows = engine.SortPNLRows(report.Rows, key, dir)
	return &report, nil
}

func (s *dashboardService) GetGoalProgress(userID string, now time.Time) ([]engine.GoalProgress, error) {
	snap, _, valued, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	avg := engine.AverageMonthlySavings(snap.Records, now, engine.SavingsWindowMonths)
	return engine.TrackGoals(snap.Goals, valued, avg, now), nil
}
