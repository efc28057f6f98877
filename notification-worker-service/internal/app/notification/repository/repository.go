package repository

import (
	"context"

	"texnomart/notification-worker-service/internal/app/notification/entity"
)

// AuditSink - приемник записей аудита удалений
type AuditSink interface {
	Name() string
	Write(ctx context.Context, record *entity.AuditRecord) error
}

// RetryQueue - очередь неотправленных уведомлений
type RetryQueue interface {
	Push(ctx context.Context, item *entity.PendingNotification) error
	// Pop возвращает nil, nil если очередь пуста
	Pop(ctx context.Context) (*entity.PendingNotification, error)
	Len(ctx context.Context) (int64, error)
}
