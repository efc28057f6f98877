package util

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"texnomart/pkg/metrics"
)

const (
	pageCacheKeyPrefix = "page:"
	cacheServiceName   = "catalog-service"
)

// NewRedis подключается к Redis и проверяет соединение
func NewRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// RedisPageCache хранит отрендеренные ответы списков
type RedisPageCache struct {
	client *redis.Client
}

func NewRedisPageCache(client *redis.Client) *RedisPageCache {
	return &RedisPageCache{client: client}
}

// GetPage возвращает тело закешированного ответа, found=false при промахе
func (r *RedisPageCache) GetPage(ctx context.Context, key string) ([]byte, bool, error) {
	timer := metrics.NewRedisTimer(cacheServiceName, metrics.RedisOpGet)
	data, err := r.client.Get(ctx, pageCacheKeyPrefix+key).Bytes()
	timer.ObserveDuration()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(cacheServiceName, pageCacheKeyPrefix)
			return nil, false, nil
		}
		metrics.RecordRedisError(cacheServiceName, metrics.RedisOpGet)
		return nil, false, fmt.Errorf("failed to get page from cache: %w", err)
	}
	metrics.RecordCacheHit(cacheServiceName, pageCacheKeyPrefix)
	return data, true, nil
}

// SetPage сохраняет тело ответа на ttl
func (r *RedisPageCache) SetPage(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	timer := metrics.NewRedisTimer(cacheServiceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := r.client.Set(ctx, pageCacheKeyPrefix+key, body, ttl).Err(); err != nil {
		metrics.RecordRedisError(cacheServiceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set page in cache: %w", err)
	}
	return nil
}
