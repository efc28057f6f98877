package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"texnomart/notification-worker-service/internal/app/notification/entity"
	"texnomart/pkg/metrics"
)

const (
	pendingQueueKey = "notifications:pending"
	serviceName     = "notification-worker"
)

// RedisRetryQueue - FIFO очередь на списке Redis: LPUSH в голову, RPOP с хвоста
type RedisRetryQueue struct {
	client *redis.Client
}

func NewRedisRetryQueue(client *redis.Client) *RedisRetryQueue {
	return &RedisRetryQueue{client: client}
}

func (q *RedisRetryQueue) Push(ctx context.Context, item *entity.PendingNotification) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpLPush)
	defer timer.ObserveDuration()

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal pending notification: %w", err)
	}

	if err := q.client.LPush(ctx, pendingQueueKey, data).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpLPush)
		return fmt.Errorf("failed to push pending notification: %w", err)
	}
	return nil
}

func (q *RedisRetryQueue) Pop(ctx context.Context) (*entity.PendingNotification, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpRPop)
	defer timer.ObserveDuration()

	data, err := q.client.RPop(ctx, pendingQueueKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpRPop)
		return nil, fmt.Errorf("failed to pop pending notification: %w", err)
	}

	var item entity.PendingNotification
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending notification: %w", err)
	}
	return &item, nil
}

func (q *RedisRetryQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, pendingQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return n, nil
}
