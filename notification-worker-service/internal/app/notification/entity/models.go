package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Действия над моделями каталога
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent - событие изменения сущности каталога из топика catalog_events
type ChangeEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	Model      string    `json:"model"`
	Action     string    `json:"action"`
	ID         uint      `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Validate проверяет обязательные поля события
func (e *ChangeEvent) Validate() error {
	if e.Model == "" {
		return fmt.Errorf("model is required")
	}
	switch e.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return fmt.Errorf("unknown action %q", e.Action)
	}
	if e.ID == 0 {
		return fmt.Errorf("id is required")
	}
	return nil
}

// Subject возвращает тему письма, например "Product deleted"
func (e *ChangeEvent) Subject() string {
	return e.Model + " " + e.Action
}

// Body возвращает текст письма
func (e *ChangeEvent) Body() string {
	return fmt.Sprintf("%s with ID %d has been %s.", e.Model, e.ID, e.Action)
}

// AuditRecord - запись об удаленном экземпляре.
// В файл попадают только model и id.
type AuditRecord struct {
	Model     string    `json:"model" bson:"model"`
	ID        uint      `json:"id" bson:"id"`
	EventID   string    `json:"-" bson:"event_id"`
	DeletedAt time.Time `json:"-" bson:"deleted_at"`
}

// NewAuditRecord строит запись аудита по событию удаления
func NewAuditRecord(event *ChangeEvent) *AuditRecord {
	deletedAt := event.OccurredAt
	if deletedAt.IsZero() {
		deletedAt = time.Now().UTC()
	}
	return &AuditRecord{
		Model:     event.Model,
		ID:        event.ID,
		EventID:   event.EventID.String(),
		DeletedAt: deletedAt,
	}
}

// PendingNotification - уведомление, ожидающее повторной отправки
type PendingNotification struct {
	Event     ChangeEvent `json:"event"`
	Attempts  int         `json:"attempts"`
	LastError string      `json:"last_error"`
}
