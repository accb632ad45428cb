package suite

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidationError reports an invalid field value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidateRequired checks that a required string field is not empty.
func ValidateRequired(field, value, entityType string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("is required for %s", entityType),
		}
	}
	return nil
}

// ValidateOneOf checks that value is in the allowed list.
func ValidateOneOf(field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateEntityName checks that name is a usable identifier.
func ValidateEntityName(name, entityType string) error {
	if err := ValidateRequired("name", name, entityType); err != nil {
		return err
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return ValidationError{
				Field:   "name",
				Value:   name,
				Message: fmt.Sprintf("contains invalid character %q", r),
			}
		}
	}
	if unicode.IsDigit(rune(name[0])) {
		return ValidationError{Field: "name", Value: name, Message: "cannot start with a digit"}
	}
	return nil
}
