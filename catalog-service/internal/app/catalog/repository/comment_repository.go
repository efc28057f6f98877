package repository

import (
	"context"
	"fmt"

	"texnomart/catalog-service/internal/app/catalog/entity"

	"gorm.io/gorm"
)

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository создает новый репозиторий отзывов
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create сохраняет отзыв
func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	if err := r.db.WithContext(ctx).Omit("Product", "User").Create(comment).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// List возвращает страницу отзывов
func (r *commentRepository) List(ctx context.Context, q entity.ListQuery) ([]entity.Comment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Comment{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	var comments []entity.Comment
	if total > int64(q.Offset) {
		err := r.db.WithContext(ctx).
			Order("id ASC").
			Limit(q.Limit).
			Offset(q.Offset).
			Find(&comments).Error
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list comments: %w", err)
		}
	}

	return comments, total, nil
}
