package service

import (
	"context"

	"texnomart/catalog-service/internal/app/catalog/entity"
)

type CatalogServiceInterface interface {
	ListCategories(ctx context.Context, q entity.ListQuery) ([]entity.Category, int64, error)
	GetCategory(ctx context.Context, slug string) (*entity.Category, error)
	CreateCategory(ctx context.Context, req *entity.CategoryRequest) (*entity.Category, error)
	UpdateCategory(ctx context.Context, slug string, req *entity.PatchCategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, slug string) error

	ListProducts(ctx context.Context, q entity.ListQuery) ([]entity.Product, int64, error)
	GetProduct(ctx context.Context, id uint) (*entity.Product, error)
	CreateProduct(ctx context.Context, req *entity.ProductRequest) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id uint, req *entity.PatchProductRequest) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	LikedProducts(ctx context.Context, userID *uint, products []entity.Product) (map[uint]bool, error)
	LikeProduct(ctx context.Context, id, userID uint) error
	UnlikeProduct(ctx context.Context, id, userID uint) error

	ListAttributes(ctx context.Context, q entity.ListQuery) ([]entity.Attribute, int64, error)
	ListAttributeValues(ctx context.Context, q entity.ListQuery) ([]entity.AttributeValue, int64, error)

	ListComments(ctx context.Context, q entity.ListQuery) ([]entity.Comment, int64, error)
	CreateComment(ctx context.Context, userID uint, req *entity.CommentRequest) (*entity.Comment, error)
}

type AuthServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error)
	Login(ctx context.Context, req *entity.LoginRequest) (string, error)
	Logout(ctx context.Context, userID uint) error
	ObtainTokenPair(ctx context.Context, req *entity.LoginRequest) (*entity.TokenPair, error)
	RefreshAccessToken(ctx context.Context, refresh string) (string, error)
	AuthenticateToken(ctx context.Context, token string) (*entity.User, error)
	AuthenticateJWT(ctx context.Context, access string) (*entity.User, error)
}
