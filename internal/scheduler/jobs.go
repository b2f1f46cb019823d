package scheduler

import (
	"context"
	"time"

	"fintrack/internal/logger"
	"fintrack/internal/services"
)

// RecurringJob copies due recurring cashflow records for every user.
type RecurringJob struct {
	Cashflow services.CashflowServicer
	Now      func() time.Time
}

func (j *RecurringJob) Name() string { return "recurring" }

func (j *RecurringJob) Run(context.Context) error {
	created, err := j.Cashflow.MaterializeAllRecurring(nowOf(j.Now))
	if err != nil {
		return err
	}
	if created > 0 {
		logger.Named("scheduler").Infow("Recurring records created", "count", created)
	}
	return nil
}

// FXRefreshJob pulls a fresh USD/TWD quote.
type FXRefreshJob struct {
	FX services.FXServicer
}

func (j *FXRefreshJob) Name() string { return "fx_refresh" }

func (j *FXRefreshJob) Run(ctx context.Context) error {
	_, err := j.FX.Refresh(ctx)
	return err
}

// SnapshotJob records the daily net-worth snapshot for every user.
type SnapshotJob struct {
	Snapshots services.PortfolioSnapshotServicer
	Now       func() time.Time
}

func (j *SnapshotJob) Name() string { return "snapshot" }

func (j *SnapshotJob) Run(context.Context) error {
	n, err := j.Snapshots.ComputeAndRecordSnapshots(nowOf(j.Now))
	if err != nil {
		return err
	}
	logger.Named("scheduler").Infow("Snapshots recorded", "count", n)
	return nil
}

func nowOf(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now()
	}
	return fn()
}
