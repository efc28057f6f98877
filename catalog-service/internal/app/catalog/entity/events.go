package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Модели, изменения которых публикуются в Kafka
const (
	ModelCategory = "Category"
	ModelProduct  = "Product"
	ModelComment  = "Comment"
)

// Действия над моделями
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent - событие изменения сущности каталога для Kafka
type ChangeEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"` // PRODUCT_CREATED, CATEGORY_DELETED, ...
	Model      string    `json:"model"`
	Action     string    `json:"action"`
	ID         uint      `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewChangeEvent создает событие с новым идентификатором
func NewChangeEvent(model, action string, id uint) ChangeEvent {
	return ChangeEvent{
		EventID:    uuid.New(),
		EventType:  strings.ToUpper(model) + "_" + strings.ToUpper(action),
		Model:      model,
		Action:     action,
		ID:         id,
		OccurredAt: time.Now().UTC(),
	}
}
