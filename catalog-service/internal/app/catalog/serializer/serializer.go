// Package serializer превращает загруженные графы сущностей в JSON ответы API.
// Функции чистые: все, что зависит от запроса, передается через Context.
package serializer

import (
	"math"
	"strings"
	"time"

	"texnomart/catalog-service/internal/app/catalog/entity"
)

// Context - данные запроса, нужные для вычисляемых полей
type Context struct {
	UserID   *uint         // nil для анонимного запроса
	BaseURL  string        // scheme://host запроса
	MediaURL string        // префикс путей изображений, например /media/
	Liked    map[uint]bool // id товаров, лайкнутых пользователем на текущей странице
}

// Authenticated сообщает, выполнен ли запрос от имени пользователя
func (c Context) Authenticated() bool {
	return c.UserID != nil
}

// AbsoluteMedia строит абсолютный URL изображения
func (c Context) AbsoluteMedia(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	media := "/" + strings.Trim(c.MediaURL, "/") + "/"
	if media == "//" {
		media = "/"
	}
	return strings.TrimRight(c.BaseURL, "/") + media + strings.TrimLeft(path, "/")
}

type CategoryJSON struct {
	ID           uint          `json:"id"`
	CategoryName string        `json:"category_name"`
	Slug         string        `json:"slug"`
	Products     []ProductJSON `json:"products"`
}

type ProductJSON struct {
	ID           uint              `json:"id"`
	ProductName  string            `json:"product_name"`
	Slug         string            `json:"slug"`
	Description  string            `json:"description"`
	Price        string            `json:"price"`
	Category     *uint             `json:"category"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Comments     []CommentJSON     `json:"comments"`
	CategoryName *string           `json:"category_name"`
	PrimaryImage *string           `json:"primary_image"`
	AllImages    []string          `json:"all_images"`
	Rating       int               `json:"rating"`
	IsLiked      bool              `json:"is_liked"`
	Attributes   map[string]string `json:"attributes"`
}

type ProductAttributesJSON struct {
	ID          uint              `json:"id"`
	ProductName string            `json:"product_name"`
	Attributes  map[string]string `json:"attributes"`
}

type CommentJSON struct {
	ID        uint      `json:"id"`
	Product   uint      `json:"product"`
	User      uint      `json:"user"`
	Rating    int       `json:"rating"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type ImageJSON struct {
	ID        uint   `json:"id"`
	Image     string `json:"image"`
	IsPrimary bool   `json:"is_primary"`
	Product   *uint  `json:"product"`
	Category  *uint  `json:"category"`
}

type UserJSON struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Category сериализует категорию вместе с вложенными товарами
func Category(c *entity.Category, ctx Context) CategoryJSON {
	return CategoryJSON{
		ID:           c.ID,
		CategoryName: c.CategoryName,
		Slug:         c.Slug,
		Products:     Products(c.Products, ctx),
	}
}

// Categories сериализует список категорий
func Categories(categories []entity.Category, ctx Context) []CategoryJSON {
	out := make([]CategoryJSON, 0, len(categories))
	for i := range categories {
		out = append(out, Category(&categories[i], ctx))
	}
	return out
}

// Product сериализует товар со всеми вычисляемыми полями
func Product(p *entity.Product, ctx Context) ProductJSON {
	out := ProductJSON{
		ID:          p.ID,
		ProductName: p.ProductName,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Category:    p.CategoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Comments:    Comments(p.Comments),
		Rating:      Rating(p.Comments),
		IsLiked:     ctx.Authenticated() && ctx.Liked[p.ID],
		Attributes:  AttributeMap(p.ProductAttributes),
		AllImages:   make([]string, 0, len(p.Images)),
	}

	if p.Category != nil {
		name := p.Category.CategoryName
		out.CategoryName = &name
	}

	for _, img := range p.Images {
		url := ctx.AbsoluteMedia(img.Image)
		out.AllImages = append(out.AllImages, url)
		if img.IsPrimary && out.PrimaryImage == nil {
			out.PrimaryImage = &url
		}
	}

	return out
}

// Products сериализует список товаров
func Products(products []entity.Product, ctx Context) []ProductJSON {
	out := make([]ProductJSON, 0, len(products))
	for i := range products {
		out = append(out, Product(&products[i], ctx))
	}
	return out
}

// ProductAttributes - проекция товара только с картой характеристик
func ProductAttributes(p *entity.Product) ProductAttributesJSON {
	return ProductAttributesJSON{
		ID:          p.ID,
		ProductName: p.ProductName,
		Attributes:  AttributeMap(p.ProductAttributes),
	}
}

// Rating - среднее оценок, округленное до целого (половина от нуля), 0 без отзывов
func Rating(comments []entity.Comment) int {
	if len(comments) == 0 {
		return 0
	}

	sum := 0
	for _, c := range comments {
		sum += c.Rating
	}
	return int(math.Round(float64(sum) / float64(len(comments))))
}

// AttributeMap строит карту имя -> значение. Строки ожидаются по возрастанию id,
// при повторе характеристики побеждает последняя.
func AttributeMap(rows []entity.ProductAttribute) map[string]string {
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Attribute == nil || row.Value == nil {
			continue
		}
		out[row.Attribute.AttributeName] = row.Value.AttributeValue
	}
	return out
}

// Comment сериализует отзыв как есть
func Comment(c *entity.Comment) CommentJSON {
	return CommentJSON{
		ID:        c.ID,
		Product:   c.ProductID,
		User:      c.UserID,
		Rating:    c.Rating,
		Message:   c.Message,
		CreatedAt: c.CreatedAt,
	}
}

// Comments сериализует список отзывов
func Comments(comments []entity.Comment) []CommentJSON {
	out := make([]CommentJSON, 0, len(comments))
	for i := range comments {
		out = append(out, Comment(&comments[i]))
	}
	return out
}

// Image сериализует изображение, путь отдается без преобразования
func Image(img *entity.Image) ImageJSON {
	return ImageJSON{
		ID:        img.ID,
		Image:     img.Image,
		IsPrimary: img.IsPrimary,
		Product:   img.ProductID,
		Category:  img.CategoryID,
	}
}

// User - публичные поля учетной записи, пароль не отдается никогда
func User(u *entity.User) UserJSON {
	return UserJSON{ID: u.ID, Username: u.Username, Email: u.Email}
}
