package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Script genre validation
	validate.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		genre := fl.Field().String()
		validGenres := []string{"drama", "comedy", "thriller", "horror", "sci_fi", "fantasy", "action", "documentary", "other", ""}
		for _, g := range validGenres {
			if genre == g {
				return true
			}
		}
		return false
	})

	// Script format validation
	validate.RegisterValidation("format", func(fl validator.FieldLevel) bool {
		format := fl.Field().String()
		validFormats := []string{"feature", "pilot", "short", "stage_play", ""}
		for _, f := range validFormats {
			if format == f {
				return true
			}
		}
		return false
	})

	// Dispute resolution status validation
	validate.RegisterValidation("dispute_resolution", func(fl validator.FieldLevel) bool {
		status := fl.Field().String()
		return status == "upheld" || status == "dismissed"
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "uuid":
			errors[field] = "Must be a valid UUID"
		case "gte":
			errors[field] = "Value is too small"
		case "lte":
			errors[field] = "Value is too large"
		case "min":
			errors[field] = "Value is too short"
		case "max":
			errors[field] = "Value is too long"
		case "genre":
			errors[field] = "Invalid genre"
		case "format":
			errors[field] = "Invalid format"
		case "dispute_resolution":
			errors[field] = "Resolution must be upheld or dismissed"
		default:
			errors[field] = "Invalid value"
		}
	}
	return errors
}
