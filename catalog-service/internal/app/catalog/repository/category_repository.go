package repository

import (
	"context"
	"errors"
	"fmt"

	"texnomart/catalog-service/internal/app/catalog/entity"

	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create создает новую категорию
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetBySlug получает категорию вместе с товарами и их связями
func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	var category entity.Category

	query := r.db.WithContext(ctx).Preload("Products", byID("products"))
	err := withProductGraph(query, "Products.").
		Where("slug = ?", slug).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}

// List возвращает страницу категорий и общее количество с учетом поиска по имени
func (r *categoryRepository) List(ctx context.Context, q entity.ListQuery) ([]entity.Category, int64, error) {
	base := r.db.WithContext(ctx).Model(&entity.Category{})
	if q.Search != "" {
		base = base.Where("category_name ILIKE ?", likePattern(q.Search))
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	var categories []entity.Category
	if total > int64(q.Offset) {
		query := base.Session(&gorm.Session{}).Preload("Products", byID("products"))
		err := withProductGraph(query, "Products.").
			Order("id ASC").
			Limit(q.Limit).
			Offset(q.Offset).
			Find(&categories).Error
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list categories: %w", err)
		}
	}

	return categories, total, nil
}

// ExistsByID проверяет наличие категории
func (r *categoryRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	return count > 0, nil
}

// ExistsBySlug проверяет занятость slug
func (r *categoryRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Category{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category slug: %w", err)
	}
	return count > 0, nil
}

// Update обновляет имя категории, slug остается прежним
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Model(&entity.Category{}).Where("id = ?", category.ID).Updates(map[string]interface{}{
		"category_name": category.CategoryName,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет категорию, товары остаются без категории (ON DELETE SET NULL)
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Category{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
