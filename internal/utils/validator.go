// internal/utils/validator.go
package utils

import (
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/scholarship-escrow/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("address", validateAddress)
	validate.RegisterValidation("gpa", validateGPA)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateAddress(fl validator.FieldLevel) bool {
	return models.IsHexAddress(fl.Field().String())
}

// A GPA must fit the fixed-point scale once multiplied by models.GPAScale.
func validateGPA(fl validator.FieldLevel) bool {
	gpa := fl.Field().Float()
	return gpa >= 0 && math.Round(gpa*models.GPAScale) <= math.MaxUint16
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must have at least " + e.Param() + " entries"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "address":
		return e.Field() + " must be a 20-byte hex address"
	case "gpa":
		return "GPA must be between 0 and 655.35"
	default:
		return e.Field() + " is invalid"
	}
}
