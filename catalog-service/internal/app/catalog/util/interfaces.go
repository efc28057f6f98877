package util

import (
	"context"
	"time"
)

// PageCache интерфейс кеша отрендеренных страниц
type PageCache interface {
	GetPage(ctx context.Context, key string) ([]byte, bool, error)
	SetPage(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Topic() string
	Close() error
}
