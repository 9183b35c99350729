package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// FieldError is the client-facing shape of a single failed rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// RuleFormat is reported for input that could not be converted to the field's type.
const RuleFormat = "format"

// Errors is a list of field failures found outside the validator, such as form values
// that do not parse.
type Errors []FieldError

func (e Errors) Error() string {
	names := make([]string, len(e))
	for i, f := range e {
		names[i] = f.Field + ": " + f.Rule
	}
	return "invalid fields: " + strings.Join(names, ", ")
}

// Validator returns the shared validator. Field names are reported by their json tag.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
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
	})
	return validate
}

// Struct validates a struct (or pointer to struct) against its `validate` tags.
func Struct(v any) error {
	return Validator().Struct(v)
}

// IsRequestValid validates req and returns the field errors when it fails.
func IsRequestValid(req any) (bool, []FieldError) {
	if err := Struct(req); err != nil {
		return false, FieldErrors(err)
	}
	return true, nil
}

// FieldErrors flattens validator errors and Errors. Other errors yield nil.
func FieldErrors(err error) []FieldError {
	var list Errors
	if errors.As(err, &list) {
		return list
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}
