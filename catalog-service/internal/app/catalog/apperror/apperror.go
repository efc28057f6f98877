// Package apperror описывает таксономию ошибок API и их HTTP статусы.
package apperror

import (
	"errors"
	"net/http"
)

// Kind - категория ошибки, видимая клиенту
type Kind string

const (
	KindAuthentication Kind = "authentication_failed"
	KindPermission     Kind = "permission_denied"
	KindValidation     Kind = "validation_error"
	KindNotFound       Kind = "not_found"
	KindInternal       Kind = "internal"
)

// Status возвращает HTTP статус для категории
func (k Kind) Status() int {
	switch k {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error - ошибка с категорией, сообщением для клиента и ошибками по полям
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создает ошибку заданной категории
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation создает ошибку валидации одного поля
func Validation(field, reason string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "invalid request data",
		Fields:  map[string]string{field: reason},
	}
}

// ValidationFields создает ошибку валидации нескольких полей
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "invalid request data", Fields: fields}
}

// Internal оборачивает неожиданную ошибку. Причина пишется в лог, но не отдается клиенту.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// From приводит произвольную ошибку к *Error, неизвестные ошибки считаются внутренними
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
