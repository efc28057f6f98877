package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"texnomart/notification-worker-service/internal/app/notification/entity"
	"texnomart/notification-worker-service/internal/app/notification/service"
	"texnomart/pkg/logger"
	"texnomart/pkg/metrics"
)

const serviceName = "notification-worker"

// errPoisonMessage - сообщение не разбирается, повторная доставка бесполезна
var errPoisonMessage = errors.New("poison message")

// KafkaConsumer обрабатывает события из топика catalog_events
type KafkaConsumer struct {
	reader          *kafka.Reader
	notificationSvc service.NotificationServiceInterface
	topic           string
	groupID         string
	retryBackoff    time.Duration
	stopChan        chan struct{}
	doneChan        chan struct{}
}

// NewKafkaConsumer создает новый Kafka consumer
func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	notificationSvc service.NotificationServiceInterface,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.FirstOffset, // новая группа получает и накопленные события
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:          reader,
		notificationSvc: notificationSvc,
		topic:           topic,
		groupID:         groupID,
		retryBackoff:    time.Second,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("starting kafka consumer")
	go c.consume(ctx)
}

// Stop останавливает consumer и дожидается завершения текущего сообщения
func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("stopping kafka consumer")
	close(c.stopChan)
	<-c.doneChan
	if err := c.reader.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close kafka reader")
	}
	logger.Info().Msg("kafka consumer stopped")
}

func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if errors.Is(err, context.DeadlineExceeded) {
					continue
				}

				logger.Error().Err(err).Msg("error fetching message")
				metrics.RecordKafkaError(serviceName, c.topic, "consume")
				time.Sleep(time.Second)
				continue
			}

			start := time.Now()
			if !c.processWithRetry(ctx, message) {
				// остановка до обработки: offset не коммитим, сообщение придет после рестарта
				return
			}

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				logger.Error().Err(err).Msg("error committing message")
				metrics.RecordKafkaError(serviceName, c.topic, "commit")
				continue
			}
			metrics.RecordKafkaMessageConsumed(serviceName, c.topic, c.groupID, time.Since(start))
		}
	}
}

// processWithRetry обрабатывает сообщение, повторяя временные ошибки на том же offset.
// Reader не читает дальше, пока сообщение не обработано.
// Возвращает false, если consumer остановлен раньше успешной обработки.
func (c *KafkaConsumer) processWithRetry(ctx context.Context, message kafka.Message) bool {
	for {
		err := c.processMessage(ctx, message)
		if err == nil {
			return true
		}
		if errors.Is(err, errPoisonMessage) {
			logger.Warn().Err(err).Int64("offset", message.Offset).Msg("skipping message")
			return true
		}

		logger.Error().Err(err).Int64("offset", message.Offset).Msg("error processing message, retrying")
		metrics.RecordKafkaError(serviceName, c.topic, "process")

		select {
		case <-ctx.Done():
			return false
		case <-c.stopChan:
			return false
		case <-time.After(c.retryBackoff):
		}
	}
}

// processMessage обрабатывает одно сообщение.
// Неразборчивые и невалидные события возвращаются как errPoisonMessage.
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.ChangeEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("%w: failed to unmarshal change event: %v", errPoisonMessage, err)
	}

	logger.Debug().
		Str("event_type", event.EventType).
		Int64("offset", message.Offset).
		Int("partition", message.Partition).
		Msg("received change event")

	if err := c.notificationSvc.Handle(ctx, &event); err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			return fmt.Errorf("%w: %v", errPoisonMessage, err)
		}
		return fmt.Errorf("failed to handle change event: %w", err)
	}

	return nil
}

// GetStats возвращает статистику consumer
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
