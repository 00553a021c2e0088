package validator

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// В ошибках используем имена полей из json-тегов, как их видит клиент
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validate - валидация структуры.
// Ошибки валидации возвращаются как errors.ErrValidation с описанием полей в details.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !stderrors.As(err, &validationErrs) {
		return errors.ErrInvalidRequest
	}

	details := make(map[string]interface{}, len(validationErrs))
	for _, fe := range validationErrs {
		details[fe.Field()] = describe(fe)
	}

	return errors.ErrValidation.WithDetails(details)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
