package shopping

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"philcali.me/groceries/internal/exceptions"
)

var validate = validator.New()

func invalid(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return exceptions.InvalidInput(err.Error())
	}
	messages := make([]string, 0, len(validationErrors))
	for _, ve := range validationErrors {
		field := strings.ToLower(ve.Field())
		switch ve.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", field, ve.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, ve.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s", field, ve.Tag()))
		}
	}
	sort.Strings(messages)
	return exceptions.InvalidInput(strings.Join(messages, "; "))
}

// ValidateItem rejects items that must never reach the store: blank names,
// non-positive price or quantity, unknown types and fractional unit counts.
func ValidateItem(item Item) error {
	if !finite(item.Price) || !finite(item.Quantity) {
		return exceptions.InvalidInput("price and quantity must be finite numbers")
	}
	if err := validate.Struct(item); err != nil {
		return invalid(err)
	}
	if strings.TrimSpace(item.Name) == "" {
		return exceptions.InvalidInput("name is required")
	}
	if item.Type == Unit && item.Quantity != math.Trunc(item.Quantity) {
		return exceptions.InvalidInput("quantity of a unit item must be a whole number")
	}
	return nil
}

func finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func ValidateBudget(value float64) error {
	if !finite(value) {
		return exceptions.InvalidInput("budget must be a number")
	}
	if err := validate.Var(value, "gt=0"); err != nil {
		return exceptions.InvalidInput("budget must be greater than 0")
	}
	return nil
}

func ValidateProduct(product Product) error {
	if err := validate.Struct(product); err != nil {
		return invalid(err)
	}
	if strings.TrimSpace(product.Name) == "" {
		return exceptions.InvalidInput("name is required")
	}
	return nil
}
