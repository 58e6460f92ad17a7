package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		validationErrors := wrapValidationErrors(errs)

		ctx.StopWithProblem(
			iris.StatusBadRequest,
			iris.NewProblem().
				Title("Validation error").
				Detail("One or more fields failed to be validated").
				Key("errors", validationErrors))
		return
	}

	CreateInternalServerError(ctx)
}

type validationError struct {
	ActualTag string `json:"tag"`
	Namespace string `json:"namespace"`
	Kind      string `json:"kind"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	Param     string `json:"param"`
}

func wrapValidationErrors(errs validator.ValidationErrors) []validationError {
	validationErrors := make([]validationError, 0, len(errs))
	for _, validationErr := range errs {
		validationErrors = append(validationErrors, validationError{
			ActualTag: validationErr.ActualTag(),
			Namespace: validationErr.Namespace(),
			Kind:      validationErr.Kind().String(),
			Type:      validationErr.Type().String(),
			Value:     strings.TrimSpace(validationErr.Param()),
			Param:     validationErr.Param(),
		})
	}
	return validationErrors
}

var phoneDigits = regexp.MustCompile(`[^0-9+]`)

// NormalizePhoneNumber strips separators and rewrites a leading 0 to the
// Zimbabwean country code so lookups match regardless of entry format.
func NormalizePhoneNumber(phone string) string {
	cleaned := phoneDigits.ReplaceAllString(phone, "")
	if strings.HasPrefix(cleaned, "0") {
		cleaned = "+263" + cleaned[1:]
	}
	return cleaned
}

func ValidatePhoneNumber(phone string) bool {
	cleaned := NormalizePhoneNumber(phone)
	return len(cleaned) >= 10 && len(cleaned) <= 14
}
