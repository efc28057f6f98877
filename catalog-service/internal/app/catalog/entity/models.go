package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category представляет категорию товаров
type Category struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CategoryName string    `json:"category_name" gorm:"type:varchar(255);not null"`
	Slug         string    `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	Products     []Product `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Images       []Image   `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Category) TableName() string {
	return "categories"
}

// Product представляет товар каталога.
// LikedBy наружу не сериализуется, признак лайка вычисляется отдельно.
// Правила ON DELETE задаются на стороне has-many: gorm пропускает ограничение belongs-to,
// если у связанной модели объявлена обратная связь.
type Product struct {
	ID                uint               `json:"id" gorm:"primaryKey"`
	ProductName       string             `json:"product_name" gorm:"type:varchar(255);not null"`
	Slug              string             `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description       string             `json:"description" gorm:"type:text"`
	Price             decimal.Decimal    `json:"price" gorm:"type:numeric(14,2);not null"`
	CategoryID        *uint              `json:"category" gorm:"index"`
	Category          *Category          `json:"-"`
	Images            []Image            `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Comments          []Comment          `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	ProductAttributes []ProductAttribute `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	LikedBy           []User             `json:"-" gorm:"many2many:product_likes;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

// Image - изображение товара или категории, Image хранит путь относительно MEDIA_URL
type Image struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Image      string    `json:"image" gorm:"type:varchar(500);not null"`
	IsPrimary  bool      `json:"is_primary" gorm:"not null;default:false"`
	ProductID  *uint     `json:"product" gorm:"index"`
	CategoryID *uint     `json:"category" gorm:"index"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Image) TableName() string {
	return "images"
}

// Attribute - имя характеристики (цвет, размер)
type Attribute struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	AttributeName string `json:"attribute_name" gorm:"type:varchar(255);not null"`
}

func (Attribute) TableName() string {
	return "attributes"
}

// AttributeValue - значение характеристики (red, M)
type AttributeValue struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	AttributeValue string `json:"attribute_value" gorm:"type:varchar(255);not null"`
}

func (AttributeValue) TableName() string {
	return "attribute_values"
}

// ProductAttribute связывает товар, характеристику и ее значение.
// Дубликаты по одной характеристике допускаются.
type ProductAttribute struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	ProductID   uint            `json:"product" gorm:"index;not null"`
	AttributeID uint            `json:"attribute" gorm:"not null"`
	ValueID     uint            `json:"value" gorm:"not null"`
	Attribute   *Attribute      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Value       *AttributeValue `json:"-" gorm:"foreignKey:ValueID;constraint:OnDelete:CASCADE"`
	Product     *Product        `json:"-"`
}

func (ProductAttribute) TableName() string {
	return "product_attributes"
}

// Comment - отзыв пользователя с оценкой
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"product" gorm:"index;not null"`
	UserID    uint      `json:"user" gorm:"index;not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Product   *Product  `json:"-"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Comment) TableName() string {
	return "comments"
}

// User - учетная запись
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"type:varchar(254)"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"` // не возвращаем в JSON
	IsStaff      bool      `json:"-" gorm:"not null;default:false"`
	IsSuperuser  bool      `json:"-" gorm:"not null;default:false"`
	IsActive     bool      `json:"-" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// AllModels перечисляет модели для AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&Image{},
		&Attribute{},
		&AttributeValue{},
		&ProductAttribute{},
		&Comment{},
	}
}
