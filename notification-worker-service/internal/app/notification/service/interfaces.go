package service

import (
	"context"

	"texnomart/notification-worker-service/internal/app/notification/entity"
)

// NotificationServiceInterface определяет интерфейс обработки событий каталога
type NotificationServiceInterface interface {
	// Handle отправляет уведомление об изменении и пишет аудит удаления
	Handle(ctx context.Context, event *entity.ChangeEvent) error
	// RetryPending повторяет отправку уведомлений из очереди, возвращает число отправленных
	RetryPending(ctx context.Context) (int, error)
}

// Mailer отправляет письмо одному получателю
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
