package utils

import (
	"context"
	"coursehub/logger"
	"coursehub/metrics"
	"coursehub/services/leaderboard"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	leaderboardLockKey = "leaderboard:refresh"
	leaderboardLockTTL = 2 * time.Minute
)

// Recomputer is satisfied by *leaderboard.Engine.
type Recomputer interface {
	Recompute(ctx context.Context) (leaderboard.Result, error)
}

// RunScheduledRefresh recomputes the leaderboard unless another instance holds the lock.
// It returns ran=false when the run was skipped.
func RunScheduledRefresh(ctx context.Context, engine Recomputer, locker Locker) (bool, error) {
	return runLeased(ctx, engine, locker, leaderboardLockTTL)
}

// runLeased holds the lock for ttl and renews it every ttl/3 while the
// recompute runs. A lost lease cancels the run so it rolls back.
func runLeased(ctx context.Context, engine Recomputer, locker Locker, ttl time.Duration) (bool, error) {
	log := logger.Log.WithField("job", "leaderboard-refresh")

	lease, ok, err := locker.TryLock(ctx, leaderboardLockKey, ttl)
	if err != nil {
		log.WithError(err).Error("could not take scheduler lock")
		metrics.LeaderboardRuns.WithLabelValues("scheduled", "error").Inc()
		return false, err
	}
	if !ok {
		log.Info("refresh already running elsewhere, skipping")
		metrics.LeaderboardRuns.WithLabelValues("scheduled", "skipped").Inc()
		return false, nil
	}
	defer func() {
		if err := lease.Release(context.Background()); err != nil {
			log.WithError(err).Warn("failed to release scheduler lock")
		}
	}()

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	renewed := make(chan struct{})
	go func() {
		defer close(renewed)
		renewLease(runCtx, lease, ttl, cancel)
	}()

	res, err := engine.Recompute(runCtx)
	cancel(nil)
	<-renewed
	if cause := context.Cause(runCtx); err != nil && errors.Is(cause, ErrLeaseLost) {
		err = cause
	}
	if err != nil {
		metrics.LeaderboardRuns.WithLabelValues("scheduled", "error").Inc()
		return true, err
	}

	metrics.LeaderboardRuns.WithLabelValues("scheduled", "success").Inc()
	log.WithField("users_processed", res.UsersProcessed).Info("scheduled leaderboard refresh done")
	return true, nil
}

func renewLease(ctx context.Context, lease Lease, ttl time.Duration, cancel context.CancelCauseFunc) {
	ticker := time.NewTicker(ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := lease.Extend(ctx, ttl); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Log.WithError(err).Error("scheduler lock renewal failed, aborting refresh")
				cancel(ErrLeaseLost)
				return
			}
		}
	}
}

// InitializeLeaderboardScheduler starts the recurring leaderboard refresh.
// Runs never overlap within a process and the lock keeps them single across the fleet.
func InitializeLeaderboardScheduler(engine Recomputer, locker Locker, spec string) (*cron.Cron, error) {
	cronLogger := cron.PrintfLogger(logger.Log)
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	_, err := c.AddFunc(spec, func() {
		_, _ = RunScheduledRefresh(context.Background(), engine, locker)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Log.WithField("schedule", spec).Info("leaderboard scheduler started")
	return c, nil
}
