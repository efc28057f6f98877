package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"texnomart/notification-worker-service/internal/app/notification/entity"
)

// MongoAuditSink хранит записи об удалениях в коллекции MongoDB
type MongoAuditSink struct {
	collection *mongo.Collection
}

func NewMongoAuditSink(collection *mongo.Collection) *MongoAuditSink {
	return &MongoAuditSink{collection: collection}
}

func (s *MongoAuditSink) Name() string {
	return "mongo"
}

// EnsureIndexes создает уникальный индекс по event_id, повторная доставка события не дублирует запись
func (s *MongoAuditSink) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create audit index: %w", err)
	}
	return nil
}

func (s *MongoAuditSink) Write(ctx context.Context, record *entity.AuditRecord) error {
	_, err := s.collection.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}
