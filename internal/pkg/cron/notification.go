package cron

import (
	"context"
	"log/slog"
	"time"
)

type notificationSweeper interface {
	DispatchDue(ctx context.Context) (int, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type revokedTokenPurger interface {
	PurgeRevoked(now time.Time) int
}

// NotificationJobs holds the periodic notification sweeps.
type NotificationJobs struct {
	notifications notificationSweeper
	tokens        revokedTokenPurger
	sweepEvery    time.Duration
	expireEvery   time.Duration
}

func NewNotificationJobs(notifications notificationSweeper, tokens revokedTokenPurger, sweepEvery, expireEvery time.Duration) *NotificationJobs {
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	if expireEvery <= 0 {
		expireEvery = 24 * time.Hour
	}
	return &NotificationJobs{
		notifications: notifications,
		tokens:        tokens,
		sweepEvery:    sweepEvery,
		expireEvery:   expireEvery,
	}
}

func (j *NotificationJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("dispatch_scheduled_notifications", j.sweepEvery, j.DispatchScheduled)
	scheduler.AddJob("expire_notifications", j.expireEvery, j.ExpireNotifications)
	scheduler.AddJob("purge_revoked_tokens", time.Hour, j.PurgeRevokedTokens)
}

func (j *NotificationJobs) DispatchScheduled(ctx context.Context) error {
	sent, err := j.notifications.DispatchDue(ctx)
	if err != nil {
		return err
	}
	if sent > 0 {
		slog.Info("Cron: dispatched scheduled notifications", "count", sent)
	}
	return nil
}

func (j *NotificationJobs) ExpireNotifications(ctx context.Context) error {
	expired, err := j.notifications.ExpireStale(ctx)
	if err != nil {
		return err
	}
	slog.Info("Cron: expired notifications", "count", expired)
	return nil
}

func (j *NotificationJobs) PurgeRevokedTokens(ctx context.Context) error {
	if purged := j.tokens.PurgeRevoked(time.Now()); purged > 0 {
		slog.Info("Cron: purged revoked tokens", "count", purged)
	}
	return nil
}
