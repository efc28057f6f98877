package entity

import "github.com/shopspring/decimal"

// --- Категории ---

// CategoryRequest - создание и полное обновление (PUT) категории
type CategoryRequest struct {
	CategoryName string `json:"category_name" validate:"required,min=2,max=255"`
}

// PatchCategoryRequest - частичное обновление (PATCH), отсутствующие поля не меняются
type PatchCategoryRequest struct {
	CategoryName *string `json:"category_name" validate:"omitempty,min=2,max=255"`
}

// --- Товары ---

// ProductRequest - создание и полное обновление (PUT) товара
type ProductRequest struct {
	ProductName string          `json:"product_name" validate:"required,min=2,max=255"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price" validate:"required,gt=0"`
	Category    *uint           `json:"category" validate:"required"`
}

// PatchProductRequest - частичное обновление (PATCH) товара
type PatchProductRequest struct {
	ProductName *string          `json:"product_name" validate:"omitempty,min=2,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
	Category    *uint            `json:"category" validate:"omitempty"`
}

// --- Комментарии ---

// CommentRequest - новый отзыв, автор берется из аутентификации
type CommentRequest struct {
	Product uint   `json:"product" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Message string `json:"message" validate:"required,min=1,max=2000"`
}

// --- Аутентификация ---

// RegisterRequest - запрос на регистрацию
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest - вход по логину и паролю (opaque токен и JWT)
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest - запрос на обновление access токена
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// TokenResponse - opaque токен
type TokenResponse struct {
	Token string `json:"token"`
}

// TokenPair - пара JWT
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AccessResponse - обновленный access токен
type AccessResponse struct {
	Access string `json:"access"`
}

// --- Общие ответы ---

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string `json:"message"`
}

// Page - конверт пагинированного списка
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// ListQuery - параметры выборки списка
type ListQuery struct {
	Search string
	Limit  int
	Offset int
}
