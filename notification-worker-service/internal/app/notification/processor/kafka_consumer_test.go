package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"texnomart/notification-worker-service/internal/app/notification/entity"
	"texnomart/notification-worker-service/internal/app/notification/service"
)

// ===================== NewKafkaConsumer Tests =====================

func TestNewKafkaConsumer(t *testing.T) {
	// Arrange
	svc := new(MockNotificationService)

	// Act
	consumer := NewKafkaConsumer([]string{"localhost:9092"}, "catalog_events", "test-group", 1, 10e6, svc)

	// Assert
	assert.NotNil(t, consumer)
	assert.NotNil(t, consumer.reader)
	assert.Equal(t, "catalog_events", consumer.topic)
	assert.NotNil(t, consumer.stopChan)
	assert.NotNil(t, consumer.doneChan)
	assert.Equal(t, time.Second, consumer.retryBackoff)

	// Cleanup
	consumer.reader.Close()
}

// ===================== processMessage Tests =====================

func changeMessage(t *testing.T, event entity.ChangeEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	assert.NoError(t, err)
	return kafka.Message{
		Topic:     "catalog_events",
		Partition: 0,
		Offset:    1,
		Key:       []byte(fmt.Sprintf("%s:%d", event.Model, event.ID)),
		Value:     value,
	}
}

func TestKafkaConsumer_ProcessMessage_Success(t *testing.T) {
	// Arrange
	svc := new(MockNotificationService)
	consumer := &KafkaConsumer{notificationSvc: svc}
	ctx := context.Background()

	event := entity.ChangeEvent{
		EventID:    uuid.New(),
		EventType:  "PRODUCT_DELETED",
		Model:      "Product",
		Action:     entity.ActionDeleted,
		ID:         12,
		OccurredAt: time.Now().UTC(),
	}

	svc.On("Handle", ctx, mock.MatchedBy(func(e *entity.ChangeEvent) bool {
		return e.EventID == event.EventID && e.Model == "Product" && e.ID == 12
	})).Return(nil)

	// Act
	err := consumer.processMessage(ctx, changeMessage(t, event))

	// Assert
	assert.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestKafkaConsumer_ProcessMessage_InvalidJSON(t *testing.T) {
	// Arrange
	svc := new(MockNotificationService)
	consumer := &KafkaConsumer{notificationSvc: svc}

	// Act
	err := consumer.processMessage(context.Background(), kafka.Message{Value: []byte("invalid json {{{")})

	// Assert
	assert.ErrorIs(t, err, errPoisonMessage)
	assert.Contains(t, err.Error(), "failed to unmarshal")
	svc.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestKafkaConsumer_ProcessMessage_InvalidEventIsSkipped(t *testing.T) {
	// Arrange
	svc := new(MockNotificationService)
	consumer := &KafkaConsumer{notificationSvc: svc}
	ctx := context.Background()

	svc.On("Handle", ctx, mock.Anything).Return(fmt.Errorf("%w: id is required", service.ErrInvalidEvent))

	// Act
	err := consumer.processMessage(ctx, changeMessage(t, entity.ChangeEvent{Model: "Product", Action: "created"}))

	// Assert
	assert.ErrorIs(t, err, errPoisonMessage)
}

func TestKafkaConsumer_ProcessMessage_ServiceError(t *testing.T) {
	// Arrange
	svc := new(MockNotificationService)
	consumer := &KafkaConsumer{notificationSvc: svc}
	ctx := context.Background()

	svc.On("Handle", ctx, mock.Anything).Return(errors.New("redis down"))

	// Act
	err := consumer.processMessage(ctx, changeMessage(t, entity.ChangeEvent{Model: "Product", Action: "created", ID: 1}))

	// Assert
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errPoisonMessage)
	assert.Contains(t, err.Error(), "failed to handle change event")
}

func TestKafkaConsumer_ProcessMessage_EmptyMessage(t *testing.T) {
	// Arrange
	svc := new(MockNotificationService)
	consumer := &KafkaConsumer{notificationSvc: svc}

	// Act
	err := consumer.processMessage(context.Background(), kafka.Message{Value: []byte{}})

	// Assert
	assert.ErrorIs(t, err, errPoisonMessage)
}

// ===================== processWithRetry Tests =====================

func TestKafkaConsumer_ProcessWithRetry_RetriesSameMessage(t *testing.T) {
	// Arrange
	svc := new(MockNotificationService)
	consumer := &KafkaConsumer{
		notificationSvc: svc,
		topic:           "catalog_events",
		retryBackoff:    time.Millisecond,
		stopChan:        make(chan struct{}),
	}
	message := changeMessage(t, entity.ChangeEvent{EventID: uuid.New(), Model: "Product", Action: "deleted", ID: 3})

	svc.On("Handle", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()
	svc.On("Handle", mock.Anything, mock.MatchedBy(func(e *entity.ChangeEvent) bool {
		return e.ID == 3
	})).Return(nil).Once()

	// Act
	processed := consumer.processWithRetry(context.Background(), message)

	// Assert
	assert.True(t, processed)
	svc.AssertNumberOfCalls(t, "Handle", 2)
}

func TestKafkaConsumer_ProcessWithRetry_PoisonIsCommitted(t *testing.T) {
	// Arrange
	svc := new(MockNotificationService)
	consumer := &KafkaConsumer{notificationSvc: svc, stopChan: make(chan struct{})}

	// Act
	processed := consumer.processWithRetry(context.Background(), kafka.Message{Value: []byte("{broken")})

	// Assert
	assert.True(t, processed)
	svc.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestKafkaConsumer_ProcessWithRetry_StopsOnCancel(t *testing.T) {
	// Arrange
	svc := new(MockNotificationService)
	consumer := &KafkaConsumer{
		notificationSvc: svc,
		topic:           "catalog_events",
		retryBackoff:    time.Hour,
		stopChan:        make(chan struct{}),
	}
	ctx, cancel := context.WithCancel(context.Background())

	svc.On("Handle", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(fmt.Errorf("schedule retry: %w", context.Canceled))

	// Act
	processed := consumer.processWithRetry(ctx, changeMessage(t, entity.ChangeEvent{Model: "Product", Action: "deleted", ID: 4}))

	// Assert
	// offset не коммитится, сообщение будет прочитано заново
	assert.False(t, processed)
	svc.AssertNumberOfCalls(t, "Handle", 1)
}

func TestKafkaConsumer_ProcessWithRetry_StopsOnStop(t *testing.T) {
	// Arrange
	svc := new(MockNotificationService)
	consumer := &KafkaConsumer{
		notificationSvc: svc,
		topic:           "catalog_events",
		retryBackoff:    time.Hour,
		stopChan:        make(chan struct{}),
	}
	close(consumer.stopChan)

	svc.On("Handle", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	// Act
	processed := consumer.processWithRetry(context.Background(), changeMessage(t, entity.ChangeEvent{Model: "Category", Action: "deleted", ID: 2}))

	// Assert
	assert.False(t, processed)
}
