// internal/utils/validator.go
package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/larderline/larder-backend/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterValidation("notblank", validators.NotBlank)
	validate.RegisterValidation("tracking_unit", validateTrackingUnit)
	validate.RegisterValidation("strategy", validateStrategy)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ValidateCommand validates a request struct and reports the first failure as a domain.ValidationError.
func ValidateCommand(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return domain.NewValidationError(first.Field(), getValidationMessage(first))
	}
	return domain.NewValidationError("", err.Error())
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func validateTrackingUnit(fl validator.FieldLevel) bool {
	_, err := domain.ParseTrackingUnit(fl.Field().String())
	return err == nil
}

func validateStrategy(fl validator.FieldLevel) bool {
	return domain.SelectionStrategy(fl.Field().String()).IsValid()
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, e := range fieldErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   e.Field(),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "cannot be empty"
	case "min", "gte":
		if e.Param() == "0" {
			return "cannot be negative"
		}
		return "must be at least " + e.Param()
	case "max", "lte":
		return "must be at most " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "tracking_unit":
		return "must be one of each, pound, gallon, dozen, case, box, bag, bottle"
	case "strategy":
		return "must be one of lowest_price, best_value, preferred_vendor, delivery_optimization"
	default:
		return "is invalid"
	}
}
