package service

import "texnomart/catalog-service/internal/app/catalog/apperror"

// Ошибки бизнес-логики. Handler отдает их клиенту по Kind.
var (
	ErrCategoryNotFound = apperror.New(apperror.KindNotFound, "category not found")
	ErrProductNotFound  = apperror.New(apperror.KindNotFound, "product not found")

	ErrCategorySlugTaken = apperror.Validation("slug", "category with this slug already exists")
	ErrProductSlugTaken  = apperror.Validation("slug", "product with this slug already exists")
	ErrEmptyCategorySlug = apperror.Validation("category_name", "name must contain at least one letter or digit")
	ErrEmptyProductSlug  = apperror.Validation("product_name", "name must contain at least one letter or digit")
	ErrUnknownCategory   = apperror.Validation("category", "category does not exist")
	ErrUnknownProduct    = apperror.Validation("product", "product does not exist")

	ErrUsernameTaken      = apperror.Validation("username", "a user with that username already exists")
	ErrInvalidCredentials = apperror.New(apperror.KindAuthentication, "Invalid credentials")
	ErrInvalidToken       = apperror.New(apperror.KindAuthentication, "invalid or expired token")
	ErrInactiveUser       = apperror.New(apperror.KindPermission, "user account is disabled")
)
