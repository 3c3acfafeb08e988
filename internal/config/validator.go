package config

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator reports field errors by their json names.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	return validate
}
