package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their koanf names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// hints tell the user where a required value usually comes from.
var hints = map[string]string{
	"completion.api_key":  "set CBORG_API_KEY or add it to ~/.config/cborg/secrets.json",
	"completion.base_url": "set CBORG_BASE_URL",
}

// Validate checks cfg and reports every invalid field in one error.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		key := configKey(e.Namespace())
		msg := fmt.Sprintf("%s %s", key, formatValidationError(e))
		if hint, ok := hints[key]; ok {
			msg += " (" + hint + ")"
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	default:
		return "is invalid"
	}
}

// configKey drops the root struct name from a validator namespace such as
// "Config.completion.api_key".
func configKey(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
