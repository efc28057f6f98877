package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"texnomart/notification-worker-service/internal/app/notification/entity"
	"texnomart/notification-worker-service/internal/app/notification/repository"
	"texnomart/pkg/logger"
	"texnomart/pkg/metrics"
)

// ErrInvalidEvent - событие нельзя обработать, повторная доставка не поможет
var ErrInvalidEvent = errors.New("invalid change event")

// NotificationService отправляет письма оператору и ведет аудит удалений
type NotificationService struct {
	mailer      Mailer
	retryQueue  repository.RetryQueue
	sinks       []repository.AuditSink
	operator    string
	maxAttempts int
	sendTimeout time.Duration
	pushBackoff time.Duration // начальная пауза между попытками записи в очередь
}

const maxPushBackoff = 5 * time.Second

// NewNotificationService создает сервис уведомлений
func NewNotificationService(
	mailer Mailer,
	retryQueue repository.RetryQueue,
	sinks []repository.AuditSink,
	operator string,
	maxAttempts int,
	sendTimeout time.Duration,
) *NotificationService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &NotificationService{
		mailer:      mailer,
		retryQueue:  retryQueue,
		sinks:       sinks,
		operator:    operator,
		maxAttempts: maxAttempts,
		sendTimeout: sendTimeout,
		pushBackoff: 100 * time.Millisecond,
	}
}

// Handle обрабатывает событие изменения.
// Аудит удаления пишется до отправки письма и не зависит от ее результата,
// ошибки приемников аудита только логируются.
// Неудачная отправка письма не теряется: событие уходит в очередь повтора.
// Запись в очередь повторяется, пока не пройдет или не отменится ctx,
// поэтому ошибка возвращается только при остановке воркера.
func (s *NotificationService) Handle(ctx context.Context, event *entity.ChangeEvent) error {
	start := time.Now()
	defer func() {
		metrics.NotificationProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	log := logger.With().
		Str("event_id", event.EventID.String()).
		Str("model", event.Model).
		Str("action", event.Action).
		Uint("id", event.ID).
		Logger()

	if event.Action == entity.ActionDeleted {
		s.writeAudit(ctx, event)
	}

	if err := s.send(ctx, event); err != nil {
		log.Warn().Err(err).Msg("notification failed, scheduling retry")
		metrics.NotificationsSent.WithLabelValues("failed").Inc()

		item := &entity.PendingNotification{Event: *event, Attempts: 1, LastError: err.Error()}
		if s.maxAttempts <= 1 {
			log.Error().Err(err).Msg("notification dropped, no retries configured")
			metrics.NotificationsSent.WithLabelValues("dropped").Inc()
		} else if pushErr := s.pushWithBackoff(ctx, item); pushErr != nil {
			return fmt.Errorf("failed to schedule notification retry: %w", pushErr)
		}
	} else {
		log.Info().Msg("notification sent")
		metrics.NotificationsSent.WithLabelValues("success").Inc()
	}

	return nil
}

// pushWithBackoff кладет уведомление в очередь, повторяя попытки с растущей паузой
func (s *NotificationService) pushWithBackoff(ctx context.Context, item *entity.PendingNotification) error {
	backoff := s.pushBackoff
	for {
		err := s.retryQueue.Push(ctx, item)
		if err == nil {
			return nil
		}

		logger.Error().
			Err(err).
			Str("event_id", item.Event.EventID.String()).
			Dur("backoff", backoff).
			Msg("failed to queue notification, retrying")

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-time.After(backoff):
		}

		if backoff *= 2; backoff > maxPushBackoff {
			backoff = maxPushBackoff
		}
	}
}

// RetryPending проходит по очереди один раз.
// Элемент, исчерпавший попытки, удаляется с записью в лог.
func (s *NotificationService) RetryPending(ctx context.Context) (int, error) {
	pending, err := s.retryQueue.Len(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := int64(0); i < pending; i++ {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		item, err := s.retryQueue.Pop(ctx)
		if err != nil {
			return sent, err
		}
		if item == nil {
			break
		}

		if err := s.send(ctx, &item.Event); err != nil {
			item.Attempts++
			item.LastError = err.Error()

			if item.Attempts >= s.maxAttempts {
				logger.Error().
					Err(err).
					Str("event_id", item.Event.EventID.String()).
					Int("attempts", item.Attempts).
					Msg("notification dropped after max attempts")
				metrics.NotificationsSent.WithLabelValues("dropped").Inc()
				continue
			}

			if pushErr := s.retryQueue.Push(ctx, item); pushErr != nil {
				return sent, fmt.Errorf("failed to requeue notification: %w", pushErr)
			}
			continue
		}

		sent++
		metrics.NotificationsSent.WithLabelValues("retried").Inc()
	}

	return sent, nil
}

func (s *NotificationService) send(ctx context.Context, event *entity.ChangeEvent) error {
	sendCtx := ctx
	if s.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.sendTimeout)
		defer cancel()
	}
	return s.mailer.Send(sendCtx, s.operator, event.Subject(), event.Body())
}

func (s *NotificationService) writeAudit(ctx context.Context, event *entity.ChangeEvent) {
	record := entity.NewAuditRecord(event)

	for _, sink := range s.sinks {
		err := sink.Write(ctx, record)
		metrics.RecordAuditWrite(sink.Name(), err)
		if err != nil {
			logger.Error().
				Err(err).
				Str("sink", sink.Name()).
				Str("model", record.Model).
				Uint("id", record.ID).
				Msg("failed to write audit record")
		}
	}
}
