package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var colorHexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// newValidator returns a validator that reports fields by their JSON names
// and knows the colorhex6 tag.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("colorhex6", func(fl validator.FieldLevel) bool {
		return colorHexPattern.MatchString(fl.Field().String())
	})
	return v
}

// validateInput runs struct validation and turns the first failure into a
// VALIDATION error naming the offending field path.
func validateInput(v *validator.Validate, input any) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return validationError("invalid input: %v", err)
	}
	fe := verrs[0]
	field := fe.Namespace()
	// Drop the root struct name, e.g. "CreatePlanInput.days[0].dayIndex".
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return validationError("%s %s", field, describeRule(fe))
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "colorhex6":
		return "must be a 6-digit hex color like #E53935"
	default:
		return "failed the " + fe.Tag() + " rule"
	}
}
