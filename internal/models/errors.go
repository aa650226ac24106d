package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation marks input rejected before any persistence call
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a mutation that targets an unknown task id
	ErrNotFound = errors.New("task not found")
	// ErrPersistence marks a failed persistence gateway call
	ErrPersistence = errors.New("persistence failed")
)

// validate is shared by every model; custom rules are registered in init.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("notblank", validateNotBlank)
}

// validateNotBlank rejects empty and whitespace-only strings
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Validate checks a task record before it is persisted
func (t Task) Validate() error {
	return wrapValidation(validate.Struct(t))
}

// Validate checks the fields of a new task
func (in TaskInput) Validate() error {
	return wrapValidation(validate.Struct(in))
}

// ValidateStruct runs the shared validator against any tagged struct
func ValidateStruct(v any) error {
	return wrapValidation(validate.Struct(v))
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%w: %s failed %q", ErrValidation, fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
