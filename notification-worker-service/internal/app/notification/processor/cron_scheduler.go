package processor

import (
	"context"

	"github.com/robfig/cron/v3"

	"texnomart/notification-worker-service/internal/app/notification/service"
	"texnomart/pkg/logger"
)

// CronScheduler периодически повторяет отправку неотправленных уведомлений
type CronScheduler struct {
	cron            *cron.Cron
	notificationSvc service.NotificationServiceInterface
}

func NewCronScheduler(notificationSvc service.NotificationServiceInterface) *CronScheduler {
	c := cron.New(
		cron.WithLogger(cron.PrintfLogger(logger.StdLogger{})),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &CronScheduler{
		cron:            c,
		notificationSvc: notificationSvc,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.retry(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("cron scheduler started")

	// очередь могла накопиться до перезапуска
	s.retry(ctx)

	return nil
}

func (s *CronScheduler) retry(ctx context.Context) {
	sent, err := s.notificationSvc.RetryPending(ctx)
	if err != nil {
		logger.Error().Err(err).Int("sent", sent).Msg("failed to retry pending notifications")
		return
	}
	if sent > 0 {
		logger.Info().Int("sent", sent).Msg("pending notifications sent")
	}
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
