package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vendafacil/vendafacil/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validationError converte o primeiro erro do validator num domain.ValidationError.
func validationError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return domain.NewValidationError("", err)
	}
	fe := ves[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch {
	case fe.Field() == "items":
		return domain.NewValidationError(field, domain.ErrEmptyItems)
	case fe.Field() == "quantity":
		return domain.NewValidationError(field, domain.ErrInvalidQuantity)
	case fe.Tag() == "required":
		return domain.NewValidationError(field, domain.ErrRequired)
	}
	return domain.NewValidationError(field, fmt.Errorf("regra %q violada", fe.Tag()))
}
