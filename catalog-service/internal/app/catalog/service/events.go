package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"texnomart/catalog-service/internal/app/catalog/entity"
	"texnomart/catalog-service/internal/app/catalog/util"
	"texnomart/pkg/logger"
	"texnomart/pkg/metrics"
)

const serviceName = "catalog"

// EventPublisher публикует события изменений каталога.
// Ошибки доставки логируются и никогда не влияют на результат записи.
type EventPublisher struct {
	producer util.MessagePublisher
	timeout  time.Duration
}

// NewEventPublisher создает публикатор, producer == nil отключает публикацию
func NewEventPublisher(producer util.MessagePublisher, timeout time.Duration) *EventPublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &EventPublisher{producer: producer, timeout: timeout}
}

// Publish отправляет событие model/action/id в Kafka
func (p *EventPublisher) Publish(ctx context.Context, model, action string, id uint) {
	metrics.RecordCatalogChange(model, action)

	if p == nil || p.producer == nil {
		return
	}

	event := entity.NewChangeEvent(model, action, id)
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("model", model).Uint("id", id).Msg("failed to marshal change event")
		metrics.CatalogEventsDropped.WithLabelValues(model).Inc()
		return
	}

	// Запрос клиента может завершиться раньше, чем Kafka подтвердит запись
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	timer := metrics.NewKafkaProduceTimer(serviceName, p.producer.Topic())
	key := fmt.Sprintf("%s:%d", model, id)
	if err := p.producer.PublishMessage(pubCtx, key, payload); err != nil {
		timer.Error()
		metrics.CatalogEventsDropped.WithLabelValues(model).Inc()
		logger.Warn().
			Err(err).
			Str("event_type", event.EventType).
			Uint("id", id).
			Msg("failed to publish change event")
		return
	}
	timer.Success()
}
