package commerce

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
			return ValidSKU(fl.Field().String())
		})
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return ValidCategory(ProductCategory(fl.Field().String()))
		})
		_ = v.RegisterValidation("product_tag", func(fl validator.FieldLevel) bool {
			tag := fl.Field().String()
			for _, known := range ProductTags {
				if tag == known {
					return true
				}
			}
			return false
		})
		validate = v
	})
	return validate
}

// Validate runs struct tag validation and folds failures into a single validation error.
func Validate(op string, in any) error {
	err := validatorInstance().Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewError(CodeValidation, op, err.Error(), err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return NewError(CodeValidation, op, strings.Join(msgs, "; "), err)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
