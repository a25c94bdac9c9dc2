package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/fms-support/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartReminderWorker runs the overdue-stage sweep on a fixed interval
// until the context is cancelled. One sweep runs immediately at startup.
func StartReminderWorker(ctx context.Context, reminders *service.ReminderService, interval time.Duration, logger *zap.Logger) {
	if reminders == nil {
		return
	}
	go func() {
		runSweep(ctx, reminders, logger)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runSweep(ctx, reminders, logger)
			}
		}
	}()
}

func runSweep(ctx context.Context, reminders *service.ReminderService, logger *zap.Logger) {
	if _, err := reminders.Sweep(ctx); err != nil {
		logger.Error("reminder sweep failed", zap.Error(err))
	}
}
