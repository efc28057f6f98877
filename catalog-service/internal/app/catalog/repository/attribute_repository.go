package repository

import (
	"context"
	"fmt"

	"texnomart/catalog-service/internal/app/catalog/entity"

	"gorm.io/gorm"
)

type attributeRepository struct {
	db *gorm.DB
}

// NewAttributeRepository создает репозиторий справочников характеристик
func NewAttributeRepository(db *gorm.DB) AttributeRepository {
	return &attributeRepository{db: db}
}

// ListAttributes возвращает страницу имен характеристик
func (r *attributeRepository) ListAttributes(ctx context.Context, q entity.ListQuery) ([]entity.Attribute, int64, error) {
	var items []entity.Attribute
	total, err := r.page(ctx, &entity.Attribute{}, &items, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attributes: %w", err)
	}
	return items, total, nil
}

// ListValues возвращает страницу значений характеристик
func (r *attributeRepository) ListValues(ctx context.Context, q entity.ListQuery) ([]entity.AttributeValue, int64, error) {
	var items []entity.AttributeValue
	total, err := r.page(ctx, &entity.AttributeValue{}, &items, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attribute values: %w", err)
	}
	return items, total, nil
}

func (r *attributeRepository) page(ctx context.Context, model interface{}, dest interface{}, q entity.ListQuery) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(model).Count(&total).Error; err != nil {
		return 0, err
	}
	if total <= int64(q.Offset) {
		return total, nil
	}

	err := r.db.WithContext(ctx).Model(model).
		Order("id ASC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(dest).Error
	return total, err
}
