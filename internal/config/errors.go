package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError lists every invalid config field.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config error: " + strings.Join(e.Problems, "; ")
}

func newValidationError(errs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{Problems: make([]string, 0, len(errs))}
	for _, fe := range errs {
		out.Problems = append(out.Problems, describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("'%s' must be at least %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("'%s' must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s]", field, fe.Param())
	case "url":
		return fmt.Sprintf("'%s' must be a URL", field)
	case "hostname_port":
		return fmt.Sprintf("'%s' must be host:port", field)
	default:
		return fmt.Sprintf("'%s' failed %s", field, fe.Tag())
	}
}
