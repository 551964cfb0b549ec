// Package validate holds the shared validator instance and the custom
// rules used across services and bulk imports.
package validate

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Emails must have non-empty text before and after the '@', and the domain
// must contain a dot. The builtin "email" rule accepts addresses without a
// dot in the domain, so a custom rule is registered instead.
var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("taskemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Email checks that s looks like local@domain.tld.
func Email(s string) error {
	return validate.Var(s, "required,taskemail")
}

// Struct validates any struct carrying validate tags.
func Struct(s any) error {
	return validate.Struct(s)
}
