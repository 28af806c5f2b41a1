// Package validation wires go-playground/validator with BlockFlow tags
package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance with custom validations
// registered.
var Validate *validator.Validate

var (
	blockTypeRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
	portNameRE  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,49}$`)
	elementIDRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
	semverRE    = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)
)

func init() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("block_type", validateBlockType)
	_ = Validate.RegisterValidation("port_name", validatePortName)
	_ = Validate.RegisterValidation("element_id", validateElementID)
	_ = Validate.RegisterValidation("block_category", validateBlockCategory)
	_ = Validate.RegisterValidation("semver", validateSemVer)

	// Use JSON tags for field names in error messages
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// Struct validates a struct using the shared validator and converts failures
// into ValidationErrors.
func Struct(s interface{}) error {
	if err := Validate.Struct(s); err != nil {
		return formatValidationErrors(err)
	}
	if v, ok := s.(Validator); ok {
		return v.Validate()
	}
	return nil
}

func validateBlockType(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	return len(v) <= 50 && blockTypeRE.MatchString(v)
}

func validatePortName(fl validator.FieldLevel) bool {
	return portNameRE.MatchString(fl.Field().String())
}

func validateElementID(fl validator.FieldLevel) bool {
	return elementIDRE.MatchString(fl.Field().String())
}

func validateBlockCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "data", "control", "math", "io", "logic":
		return true
	}
	return false
}

func validateSemVer(fl validator.FieldLevel) bool {
	return semverRE.MatchString(fl.Field().String())
}

// formatValidationErrors converts validator errors to our custom format.
func formatValidationErrors(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var errs ValidationErrors
	for _, fieldError := range validationErrors {
		errs = append(errs, ValidationError{
			Field:   fieldError.Field(),
			Value:   fieldError.Value(),
			Message: messageFor(fieldError),
		})
	}
	return errs
}

// messageFor returns a human-readable error message for a field error.
func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return "minimum value/length is " + fe.Param()
	case "max":
		return "maximum value/length is " + fe.Param()
	case "block_type":
		return "must start with a letter and contain only letters, digits, '_' or '-' (max 50 chars)"
	case "port_name":
		return "must be a valid port name (max 50 chars)"
	case "element_id":
		return "must be a valid element ID"
	case "block_category":
		return "must be one of: data, control, math, io, logic"
	case "semver":
		return "must be a semantic version (e.g. 1.0.0)"
	default:
		return "failed validation: " + fe.Tag()
	}
}
