package apperror

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// formatFieldName turns json names into labels: startDate -> Start Date,
// contact_number -> Contact Number.
func formatFieldName(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r == '_' {
			b.WriteRune(' ')
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	caser := cases.Title(language.English)
	return caser.String(b.String())
}

// MapValidationError converts binding errors into a single aggregated
// ValidationError. overrides are keyed by "<json field>.<tag>".
func MapValidationError(err error, overrides ...map[string]string) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return Validation([]string{"Invalid request body"})
	}

	messages := make([]string, 0, len(errs))
	seen := make(map[string]bool, len(errs))
	for _, e := range errs {
		msg := fieldMessage(e, overrides)
		if seen[msg] {
			continue
		}
		seen[msg] = true
		messages = append(messages, msg)
	}
	return Validation(messages)
}

func fieldMessage(e validator.FieldError, overrides []map[string]string) string {
	key := e.Field() + "." + e.Tag()
	for _, o := range overrides {
		if msg, ok := o[key]; ok {
			return msg
		}
	}

	field := formatFieldName(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please provide a valid email"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(oneOfValues(e.Param()), ", "))
	case "uuid", "uuid4":
		return field + " must be a valid id"
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	default:
		return field + " is invalid"
	}
}

func oneOfValues(param string) []string {
	var values []string
	for len(param) > 0 {
		param = strings.TrimLeft(param, " ")
		if param == "" {
			break
		}
		if param[0] == '\'' {
			end := strings.IndexByte(param[1:], '\'')
			if end < 0 {
				values = append(values, param[1:])
				break
			}
			values = append(values, param[1:end+1])
			param = param[end+2:]
			continue
		}
		end := strings.IndexByte(param, ' ')
		if end < 0 {
			values = append(values, param)
			break
		}
		values = append(values, param[:end])
		param = param[end:]
	}
	return values
}
