package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"texnomart/catalog-service/internal/app/catalog/apperror"
	"texnomart/catalog-service/internal/app/catalog/entity"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// Цена хранится в numeric(14,2)
const (
	priceWholeDigits   = 12
	priceDecimalPlaces = 2
)

var priceLimit = decimal.New(1, priceWholeDigits)

// NewValidator настраивает validator: имена полей берутся из json тегов,
// decimal.Decimal сравнивается как число, добавлено правило username.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	// decimal до проверки полей превращается в float64, разрядность проверяем на уровне структуры
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		switch req := sl.Current().Interface().(type) {
		case entity.ProductRequest:
			validatePrice(sl, req.Price)
		case entity.PatchProductRequest:
			if req.Price != nil {
				validatePrice(sl, *req.Price)
			}
		}
	}, entity.ProductRequest{}, entity.PatchProductRequest{})

	return v
}

func validatePrice(sl validator.StructLevel, price decimal.Decimal) {
	switch {
	case price.Abs().GreaterThanOrEqual(priceLimit):
		sl.ReportError(price, "price", "Price", "max_whole_digits", fmt.Sprint(priceWholeDigits))
	case !price.Equal(price.Truncate(priceDecimalPlaces)):
		sl.ReportError(price, "price", "Price", "max_decimal_places", fmt.Sprint(priceDecimalPlaces))
	}
}

// bindJSON разбирает тело запроса и валидирует его, ошибки приводятся к ValidationError
func bindJSON(c *gin.Context, v *validator.Validate, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindError(err)
	}
	if err := v.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func bindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperror.Validation(typeErr.Field, fmt.Sprintf("expected %s", typeErr.Type.String()))
	}
	if errors.Is(err, io.EOF) {
		return apperror.New(apperror.KindValidation, "request body is empty")
	}
	return apperror.New(apperror.KindValidation, "malformed JSON body")
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.New(apperror.KindValidation, err.Error())
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return apperror.ValidationFields(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. Letters, digits and @/./+/-/_ only."
	case "max_whole_digits":
		return fmt.Sprintf("Ensure that there are no more than %s digits before the decimal point.", fe.Param())
	case "max_decimal_places":
		return fmt.Sprintf("Ensure that there are no more than %s decimal places.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}
