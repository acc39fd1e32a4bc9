package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// sourceNamePattern matches the {source} segment of /webhook/{source}
var sourceNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,31}$`)

var (
	validatorOnce sync.Once
	requestRules  *validator.Validate
)

// requestValidator returns the shared validator with the bingo rules registered
func requestValidator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldName)
		if err := v.RegisterValidation("source", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || sourceNamePattern.MatchString(s)
		}); err != nil {
			panic(err)
		}
		requestRules = v
	})
	return requestRules
}

// fieldName reports fields by their json name, falling back to lower case
func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return strings.ToLower(f.Name)
	}
	return name
}

// ValidateStruct checks s against its validate tags
func ValidateStruct(s interface{}) error {
	return requestValidator().Struct(s)
}

var ruleMessages = map[string]string{
	"required": "This field is required",
	"source":   "Invalid source name",
	"gt":       "Must be greater than %s",
	"min":      "Must be at least %s characters",
	"max":      "Must be at most %s characters",
	"oneof":    "Must be one of: %s",
}

// FormatValidationError maps each failing field to a client-safe message.
// Struct names never appear in the output.
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"error": "Invalid request format"}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := ruleMessages[fe.Tag()]
		switch {
		case !ok:
			msg = "Invalid value"
		case strings.Contains(msg, "%s"):
			msg = fmt.Sprintf(msg, fe.Param())
		}
		out[fe.Field()] = msg
	}
	return out
}
