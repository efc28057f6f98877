package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Ключи Redis:
//
//	auth_token:<token>        -> user id
//	user_auth_token:<user id> -> token
const (
	tokenKeyPrefix     = "auth_token:"
	userTokenKeyPrefix = "user_auth_token:"
)

type redisTokenRepository struct {
	client *redis.Client
}

// NewRedisTokenRepository создает хранилище opaque токенов в Redis
func NewRedisTokenRepository(client *redis.Client) TokenRepository {
	return &redisTokenRepository{client: client}
}

func userTokenKey(userID uint) string {
	return userTokenKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// GetOrCreate возвращает существующий токен пользователя или сохраняет candidate.
// SETNX гарантирует, что параллельные входы получат один и тот же токен.
// Обратный индекс пишется до SETNX, поэтому выданный токен сразу валиден.
func (r *redisTokenRepository) GetOrCreate(ctx context.Context, userID uint, candidate string) (string, error) {
	userKey := userTokenKey(userID)

	if err := r.client.Set(ctx, tokenKeyPrefix+candidate, userID, 0).Err(); err != nil {
		return "", fmt.Errorf("failed to index auth token: %w", err)
	}

	created, err := r.client.SetNX(ctx, userKey, candidate, 0).Result()
	if err != nil {
		r.client.Del(ctx, tokenKeyPrefix+candidate)
		return "", fmt.Errorf("failed to save auth token: %w", err)
	}
	if created {
		return candidate, nil
	}

	// У пользователя уже есть токен, кандидат больше не нужен
	r.client.Del(ctx, tokenKeyPrefix+candidate)

	existing, err := r.client.Get(ctx, userKey).Result()
	if err != nil {
		return "", fmt.Errorf("failed to get auth token: %w", err)
	}
	return existing, nil
}

// GetUserID возвращает владельца токена или ErrNotFound
func (r *redisTokenRepository) GetUserID(ctx context.Context, token string) (uint, error) {
	value, err := r.client.Get(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get auth token: %w", err)
	}

	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID in Redis: %w", err)
	}
	return uint(id), nil
}

// DeleteForUser удаляет токен пользователя, отсутствие токена ошибкой не считается
func (r *redisTokenRepository) DeleteForUser(ctx context.Context, userID uint) error {
	userKey := userTokenKey(userID)

	token, err := r.client.Get(ctx, userKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get auth token: %w", err)
	}

	if err := r.client.Del(ctx, tokenKeyPrefix+token, userKey).Err(); err != nil {
		return fmt.Errorf("failed to delete auth token: %w", err)
	}
	return nil
}
