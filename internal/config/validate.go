package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/maadhav-codes/diff2commit/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field against its constraints and reports all
// violations at once.
func (c *Config) Validate() error {
	return c.validate(nil)
}

// validate reports problems found earlier, such as unparseable environment
// values, together with the constraint violations.
func (c *Config) validate(problems []string) error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errors.Mark(errors.Wrap(err, "validate config"), models.ErrConfiguration)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}
	if len(problems) == 0 {
		return nil
	}

	return errors.WithHintf(
		errors.Mark(errors.Newf("invalid configuration: %s", strings.Join(problems, "; ")), models.ErrConfiguration),
		"fix the values in %s or the matching D2C_* environment variables", c.Path())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of %s (got %q)",
			fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("%s must be at least %s (got %v)", fe.Field(), fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be at most %s (got %v)", fe.Field(), fe.Param(), fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL (got %q)", fe.Field(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
