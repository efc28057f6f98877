package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"texnomart/notification-worker-service/internal/app/notification/entity"
)

// RetryQueueTestSuite тестовый suite для очереди повторной отправки
type RetryQueueTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	queue     *RedisRetryQueue
}

func TestRetryQueueSuite(t *testing.T) {
	suite.Run(t, new(RetryQueueTestSuite))
}

func (s *RetryQueueTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	s.Require().NoError(err)

	s.client = redis.NewClient(&redis.Options{Addr: s.miniRedis.Addr()})
	s.queue = NewRedisRetryQueue(s.client)
}

func (s *RetryQueueTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func (s *RetryQueueTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func pending(id uint, attempts int) *entity.PendingNotification {
	return &entity.PendingNotification{
		Event: entity.ChangeEvent{
			EventID: uuid.New(),
			Model:   "Product",
			Action:  entity.ActionUpdated,
			ID:      id,
		},
		Attempts: attempts,
	}
}

func (s *RetryQueueTestSuite) TestPushPop_FIFO() {
	ctx := context.Background()

	// Arrange
	s.Require().NoError(s.queue.Push(ctx, pending(1, 1)))
	s.Require().NoError(s.queue.Push(ctx, pending(2, 1)))

	// Act
	first, err1 := s.queue.Pop(ctx)
	second, err2 := s.queue.Pop(ctx)

	// Assert
	s.NoError(err1)
	s.NoError(err2)
	s.Equal(uint(1), first.Event.ID)
	s.Equal(uint(2), second.Event.ID)
}

func (s *RetryQueueTestSuite) TestPop_EmptyQueue() {
	item, err := s.queue.Pop(context.Background())

	s.NoError(err)
	s.Nil(item)
}

func (s *RetryQueueTestSuite) TestLen() {
	ctx := context.Background()
	s.Require().NoError(s.queue.Push(ctx, pending(1, 2)))

	n, err := s.queue.Len(ctx)

	s.NoError(err)
	s.Equal(int64(1), n)
}

func (s *RetryQueueTestSuite) TestPop_CorruptedItem() {
	// Arrange
	s.miniRedis.Lpush(pendingQueueKey, "not-json")

	// Act
	item, err := s.queue.Pop(context.Background())

	// Assert
	s.Error(err)
	s.Nil(item)
}

func (s *RetryQueueTestSuite) TestPush_RedisDown() {
	// Arrange
	s.miniRedis.SetError("connection refused")
	defer s.miniRedis.SetError("")

	// Act
	err := s.queue.Push(context.Background(), pending(1, 1))

	// Assert
	s.Error(err)
}
