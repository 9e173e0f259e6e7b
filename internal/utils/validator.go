// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sipeka/sipeka-backend/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("calendar_date", validateCalendarDate)
	validate.RegisterValidation("plate_number", validatePlateNumber)
	validate.RegisterValidation("roadworthiness", validateRoadworthiness)
	validate.RegisterValidation("cleanliness", validateCleanliness)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}

// Indonesian civil plates: area code, number, optional suffix letters.
func validatePlateNumber(fl validator.FieldLevel) bool {
	plate := strings.ToUpper(strings.TrimSpace(fl.Field().String()))
	matched, _ := regexp.MatchString(`^[A-Z]{1,2} ?[0-9]{1,4} ?[A-Z]{0,3}$`, plate)
	return matched
}

func validateRoadworthiness(fl validator.FieldLevel) bool {
	_, err := models.ParseRoadworthiness(fl.Field().String())
	return err == nil
}

func validateCleanliness(fl validator.FieldLevel) bool {
	_, err := models.ParseCleanliness(fl.Field().String())
	return err == nil
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
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "calendar_date":
		return e.Field() + " must be a date in YYYY-MM-DD format"
	case "plate_number":
		return e.Field() + " must be a valid plate number"
	case "roadworthiness":
		return e.Field() + " must be 'Layak' or 'Tidak Layak'"
	case "cleanliness":
		return e.Field() + " must be 'Bersih' or 'Perlu Dibersihkan'"
	case "gte":
		return e.Field() + " must not be negative"
	default:
		return e.Field() + " is invalid"
	}
}
