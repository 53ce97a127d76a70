// Package validation wraps go-playground/validator with the conventions used
// by request types: JSON field names in messages and decimal money fields.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		// Decimals are validated through their exact string form with
		// the dgt/dgte tags; float conversion would round tiny amounts.
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})
		mustRegister(v, "dgt", decimalCompare(func(c int) bool { return c > 0 }))
		mustRegister(v, "dgte", decimalCompare(func(c int) bool { return c >= 0 }))

		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

// decimalCompare builds a rule comparing a decimal field with the tag
// parameter; ok receives the result of field.Cmp(param).
func decimalCompare(ok func(int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		field, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		param, err := decimal.NewFromString(fl.Param())
		if err != nil {
			panic(fmt.Sprintf("bad decimal parameter %q", fl.Param()))
		}
		return ok(field.Cmp(param))
	}
}

// Struct validates s and returns a single readable error describing the
// first failing fields, or nil.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt", "dgt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "dgte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
