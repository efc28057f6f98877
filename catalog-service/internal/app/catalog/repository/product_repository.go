package repository

import (
	"context"
	"errors"
	"fmt"

	"texnomart/catalog-service/internal/app/catalog/entity"

	"gorm.io/gorm"
)

// likesTable - join таблица many2many Product.LikedBy
const likesTable = "product_likes"

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create создает новый товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	if err := r.db.WithContext(ctx).Omit("Category", "LikedBy").Create(product).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID получает товар со всеми связями для сериализации
func (r *productRepository) GetByID(ctx context.Context, id uint) (*entity.Product, error) {
	var product entity.Product

	err := withProductGraph(r.db.WithContext(ctx), "").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// List возвращает страницу товаров. Поиск идет по названию и по цене как тексту.
func (r *productRepository) List(ctx context.Context, q entity.ListQuery) ([]entity.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&entity.Product{})
	if q.Search != "" {
		pattern := likePattern(q.Search)
		base = base.Where("product_name ILIKE ? OR CAST(price AS TEXT) ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []entity.Product
	if total > int64(q.Offset) {
		err := withProductGraph(base.Session(&gorm.Session{}), "").
			Order("id ASC").
			Limit(q.Limit).
			Offset(q.Offset).
			Find(&products).Error
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list products: %w", err)
		}
	}

	return products, total, nil
}

// ExistsBySlug проверяет занятость slug
func (r *productRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product slug: %w", err)
	}
	return count > 0, nil
}

// Update обновляет изменяемые поля товара
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"product_name": product.ProductName,
		"description":  product.Description,
		"price":        product.Price,
		"category_id":  product.CategoryID,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет товар
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LikedProductIDs одним запросом определяет, какие из товаров лайкнул пользователь
func (r *productRepository) LikedProductIDs(ctx context.Context, userID uint, productIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool, len(productIDs))
	if len(productIDs) == 0 {
		return liked, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).
		Table(likesTable).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}

	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// AddLike отмечает товар как понравившийся, повторный лайк игнорируется
func (r *productRepository) AddLike(ctx context.Context, productID, userID uint) error {
	err := r.db.WithContext(ctx).Exec(
		"INSERT INTO "+likesTable+" (product_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		productID, userID,
	).Error
	if err != nil {
		return fmt.Errorf("failed to like product: %w", err)
	}
	return nil
}

// RemoveLike снимает лайк
func (r *productRepository) RemoveLike(ctx context.Context, productID, userID uint) error {
	err := r.db.WithContext(ctx).Exec(
		"DELETE FROM "+likesTable+" WHERE product_id = ? AND user_id = ?",
		productID, userID,
	).Error
	if err != nil {
		return fmt.Errorf("failed to unlike product: %w", err)
	}
	return nil
}
