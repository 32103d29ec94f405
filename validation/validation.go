// Package validation contains custom validation functions for the application to use for input validation.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"KanbanService/models"

	"github.com/go-playground/validator/v10"
)

// DateLayouts are the accepted layouts for date fields, tried in order.
var DateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// New returns a validator with the custom validators registered and field
// names reported by their json tag.
func New() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	validate.RegisterValidation("fieldValidator", FieldValidator)
	validate.RegisterValidation("statusValidator", StatusValidator)
	validate.RegisterValidation("priorityValidator", PriorityValidator)
	validate.RegisterValidation("dateValidator", DateValidator)
	return validate
}

// StatusValidator accepts only the four board statuses.
func StatusValidator(fl validator.FieldLevel) bool {
	return models.Status(fl.Field().String()).Valid()
}

// PriorityValidator accepts only the four priority labels.
func PriorityValidator(fl validator.FieldLevel) bool {
	return models.Priority(fl.Field().String()).Valid()
}

// FieldValidator is a validation function that checks if the field value is blank.
// It returns true if the field value is not blank, and false otherwise.
func FieldValidator(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// DateValidator checks that the field parses with one of DateLayouts.
func DateValidator(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// ParseDate parses an optional date. An empty value yields nil.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", value)
}

// Describe turns a validation error into a message suitable for a 400 response.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "fieldValidator":
		return fmt.Sprintf("%s is required", fe.Field())
	case "statusValidator":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), joinStatuses())
	case "priorityValidator":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), joinPriorities())
	case "dateValidator":
		return fmt.Sprintf("%s must be a date", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func joinStatuses() string {
	names := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func joinPriorities() string {
	names := make([]string, len(models.Priorities))
	for i, p := range models.Priorities {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
