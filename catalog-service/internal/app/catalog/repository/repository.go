package repository

import (
	"context"
	"errors"
	"strings"

	"texnomart/catalog-service/internal/app/catalog/entity"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// pgUniqueViolation - код ошибки PostgreSQL для нарушения уникального индекса
const pgUniqueViolation = "23505"

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetBySlug(ctx context.Context, slug string) (*entity.Category, error)
	List(ctx context.Context, q entity.ListQuery) ([]entity.Category, int64, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uint) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uint) (*entity.Product, error)
	List(ctx context.Context, q entity.ListQuery) ([]entity.Product, int64, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uint) error
	LikedProductIDs(ctx context.Context, userID uint, productIDs []uint) (map[uint]bool, error)
	AddLike(ctx context.Context, productID, userID uint) error
	RemoveLike(ctx context.Context, productID, userID uint) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	List(ctx context.Context, q entity.ListQuery) ([]entity.Comment, int64, error)
}

type AttributeRepository interface {
	ListAttributes(ctx context.Context, q entity.ListQuery) ([]entity.Attribute, int64, error)
	ListValues(ctx context.Context, q entity.ListQuery) ([]entity.AttributeValue, int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// TokenRepository хранит opaque токены: один постоянный токен на пользователя
type TokenRepository interface {
	GetOrCreate(ctx context.Context, userID uint, candidate string) (string, error)
	GetUserID(ctx context.Context, token string) (uint, error)
	DeleteForUser(ctx context.Context, userID uint) error
}

// isUniqueViolation распознает нарушение уникального индекса
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// likePattern экранирует спецсимволы LIKE и оборачивает строку в %
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}

// byID сортирует связанные записи по возрастанию id
func byID(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".id ASC")
	}
}

// withProductGraph подгружает все связи товара, нужные для сериализации.
// prefix задает путь до товара, например "Products." для категории.
func withProductGraph(db *gorm.DB, prefix string) *gorm.DB {
	return db.
		Preload(prefix+"Category").
		Preload(prefix+"Images", byID("images")).
		Preload(prefix+"Comments", byID("comments")).
		Preload(prefix+"ProductAttributes", byID("product_attributes")).
		Preload(prefix + "ProductAttributes.Attribute").
		Preload(prefix + "ProductAttributes.Value")
}
