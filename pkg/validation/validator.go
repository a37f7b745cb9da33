package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/Additional-Code/bakery/pkg/errorbank"
)

// DateLayout is the ISO 8601 date-only layout accepted by the isodate tag.
const DateLayout = "2006-01-02"

// Validator checks tagged structs and reports failures as bad request errors
// keyed by the JSON field name.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the isodate and notblank rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &Validator{validate: v}
}

// Struct validates s. Nil means valid; otherwise the error is an
// *errorbank.AppError of kind bad_request with per-field details.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errorbank.BadRequest("invalid input", errorbank.WithCause(err))
	}

	details := make(map[string]any, len(fieldErrs))
	missing := false
	first := ""
	for _, fe := range fieldErrs {
		msg := describe(fe)
		details[fe.Field()] = msg
		if fe.Tag() == "required" {
			missing = true
		}
		if first == "" {
			first = fe.Field() + " " + msg
		}
	}

	message := first
	if missing {
		message = "missing required fields"
	}
	return errorbank.BadRequest(message, errorbank.WithDetails(details))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "notblank":
		return "must not be blank"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return "is invalid"
	}
}
