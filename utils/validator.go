package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by the names clients send.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs the `validate` tags of s and turns failures into a
// ValidationError keyed by JSON field name.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(FieldErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, seen := fields[field]; seen {
			continue
		}
		label := Label(field)
		param := fe.Param()

		switch fe.Tag() {
		case "required":
			fields[field] = ErrorDetail{String: label + " cannot be empty.", Code: CodeBlank}
		case "min":
			fields[field] = ErrorDetail{String: label + " must be at least " + param + " characters long.", Code: CodeMinLength}
		case "max":
			fields[field] = ErrorDetail{String: label + " cannot be longer than " + param + " characters.", Code: CodeMaxLength}
		case "alphanum":
			fields[field] = ErrorDetail{String: label + " can only contain letters and digits.", Code: CodeInvalid}
		case "eqfield":
			fields[field] = ErrorDetail{String: label + " does not match.", Code: CodeMismatch}
		default:
			fields[field] = ErrorDetail{String: label + " is invalid.", Code: CodeInvalid}
		}
	}
	return &ValidationError{Fields: fields}
}

// Label turns a JSON field name like "team_id" into "Team ID". Only the last
// segment of a dotted path such as "data.title" is used.
func Label(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	words := strings.Split(field, "_")
	for i, w := range words {
		switch {
		case w == "id":
			words[i] = "ID"
		case i == 0 && w != "":
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
