package service

import (
	"context"
	"errors"
	"fmt"

	"texnomart/catalog-service/internal/app/catalog/entity"
	"texnomart/catalog-service/internal/app/catalog/repository"
	"texnomart/catalog-service/internal/app/catalog/util"
	"texnomart/pkg/logger"
)

// CatalogService обрабатывает бизнес-логику каталога товаров.
// После каждой успешной записи Category, Product и Comment публикуется событие изменения.
type CatalogService struct {
	categoryRepo  repository.CategoryRepository
	productRepo   repository.ProductRepository
	commentRepo   repository.CommentRepository
	attributeRepo repository.AttributeRepository
	events        *EventPublisher
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	commentRepo repository.CommentRepository,
	attributeRepo repository.AttributeRepository,
	events *EventPublisher,
) *CatalogService {
	return &CatalogService{
		categoryRepo:  categoryRepo,
		productRepo:   productRepo,
		commentRepo:   commentRepo,
		attributeRepo: attributeRepo,
		events:        events,
	}
}

// === CATEGORIES ===

// ListCategories возвращает страницу категорий с товарами
func (s *CatalogService) ListCategories(ctx context.Context, q entity.ListQuery) ([]entity.Category, int64, error) {
	categories, total, err := s.categoryRepo.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, total, nil
}

// GetCategory получает категорию по slug
func (s *CatalogService) GetCategory(ctx context.Context, slug string) (*entity.Category, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// CreateCategory создает категорию. Slug выводится из имени и должен быть свободен.
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CategoryRequest) (*entity.Category, error) {
	slug := util.Slugify(req.CategoryName)
	if slug == "" {
		return nil, ErrEmptyCategorySlug
	}

	taken, err := s.categoryRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	if taken {
		return nil, ErrCategorySlugTaken
	}

	category := &entity.Category{
		CategoryName: req.CategoryName,
		Slug:         slug,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		// Параллельное создание с тем же slug ловится уникальным индексом
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrCategorySlugTaken
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.events.Publish(ctx, entity.ModelCategory, entity.ActionCreated, category.ID)
	return category, nil
}

// UpdateCategory применяет изменения к категории. Slug не меняется.
func (s *CatalogService) UpdateCategory(ctx context.Context, slug string, req *entity.PatchCategoryRequest) (*entity.Category, error) {
	category, err := s.GetCategory(ctx, slug)
	if err != nil {
		return nil, err
	}

	if req.CategoryName != nil {
		category.CategoryName = *req.CategoryName
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.events.Publish(ctx, entity.ModelCategory, entity.ActionUpdated, category.ID)
	return category, nil
}

// DeleteCategory удаляет категорию по slug
func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	category, err := s.GetCategory(ctx, slug)
	if err != nil {
		return err
	}

	if err := s.categoryRepo.Delete(ctx, category.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.events.Publish(ctx, entity.ModelCategory, entity.ActionDeleted, category.ID)
	return nil
}

// === PRODUCTS ===

// ListProducts возвращает страницу товаров
func (s *CatalogService) ListProducts(ctx context.Context, q entity.ListQuery) ([]entity.Product, int64, error) {
	products, total, err := s.productRepo.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// GetProduct получает товар со связями
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// CreateProduct создает товар в существующей категории
func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.ProductRequest) (*entity.Product, error) {
	slug := util.Slugify(req.ProductName)
	if slug == "" {
		return nil, ErrEmptyProductSlug
	}

	if err := s.ensureCategory(ctx, req.Category); err != nil {
		return nil, err
	}

	taken, err := s.productRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	if taken {
		return nil, ErrProductSlugTaken
	}

	product := &entity.Product{
		ProductName: req.ProductName,
		Slug:        slug,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.Category,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrProductSlugTaken
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.events.Publish(ctx, entity.ModelProduct, entity.ActionCreated, product.ID)
	return s.reloadProduct(ctx, product), nil
}

// UpdateProduct применяет изменения к товару, отсутствующие в запросе поля не трогаются
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req *entity.PatchProductRequest) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ProductName != nil {
		product.ProductName = *req.ProductName
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Category != nil {
		if err := s.ensureCategory(ctx, req.Category); err != nil {
			return nil, err
		}
		product.CategoryID = req.Category
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.events.Publish(ctx, entity.ModelProduct, entity.ActionUpdated, product.ID)
	return s.reloadProduct(ctx, product), nil
}

// DeleteProduct удаляет товар
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.events.Publish(ctx, entity.ModelProduct, entity.ActionDeleted, id)
	return nil
}

// LikedProducts одним запросом возвращает лайки пользователя для страницы товаров.
// Для анонимного запроса в базу не ходим.
func (s *CatalogService) LikedProducts(ctx context.Context, userID *uint, products []entity.Product) (map[uint]bool, error) {
	if userID == nil || len(products) == 0 {
		return map[uint]bool{}, nil
	}

	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	liked, err := s.productRepo.LikedProductIDs(ctx, *userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}
	return liked, nil
}

// LikeProduct добавляет пользователя в лайкнувших товар
func (s *CatalogService) LikeProduct(ctx context.Context, id, userID uint) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.AddLike(ctx, id, userID); err != nil {
		return fmt.Errorf("failed to like product: %w", err)
	}
	return nil
}

// UnlikeProduct убирает лайк пользователя
func (s *CatalogService) UnlikeProduct(ctx context.Context, id, userID uint) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.RemoveLike(ctx, id, userID); err != nil {
		return fmt.Errorf("failed to unlike product: %w", err)
	}
	return nil
}

func (s *CatalogService) ensureCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	exists, err := s.categoryRepo.ExistsByID(ctx, *id)
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !exists {
		return ErrUnknownCategory
	}
	return nil
}

// reloadProduct перечитывает товар со связями для ответа.
// Запись уже выполнена, поэтому при ошибке отдаем то, что есть.
func (s *CatalogService) reloadProduct(ctx context.Context, product *entity.Product) *entity.Product {
	fresh, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		logger.Warn().Err(err).Uint("product_id", product.ID).Msg("failed to reload product")
		return product
	}
	return fresh
}

// === ATTRIBUTES ===

// ListAttributes возвращает страницу имен характеристик
func (s *CatalogService) ListAttributes(ctx context.Context, q entity.ListQuery) ([]entity.Attribute, int64, error) {
	return s.attributeRepo.ListAttributes(ctx, q)
}

// ListAttributeValues возвращает страницу значений характеристик
func (s *CatalogService) ListAttributeValues(ctx context.Context, q entity.ListQuery) ([]entity.AttributeValue, int64, error) {
	return s.attributeRepo.ListValues(ctx, q)
}

// === COMMENTS ===

// ListComments возвращает страницу отзывов
func (s *CatalogService) ListComments(ctx context.Context, q entity.ListQuery) ([]entity.Comment, int64, error) {
	comments, total, err := s.commentRepo.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, total, nil
}

// CreateComment сохраняет отзыв от имени аутентифицированного пользователя
func (s *CatalogService) CreateComment(ctx context.Context, userID uint, req *entity.CommentRequest) (*entity.Comment, error) {
	if _, err := s.productRepo.GetByID(ctx, req.Product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownProduct
		}
		return nil, fmt.Errorf("failed to check product: %w", err)
	}

	comment := &entity.Comment{
		ProductID: req.Product,
		UserID:    userID,
		Rating:    req.Rating,
		Message:   req.Message,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.events.Publish(ctx, entity.ModelComment, entity.ActionCreated, comment.ID)
	return comment, nil
}
