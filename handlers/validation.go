package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validationMessageKey picks the translation key for the first failed field.
func validationMessageKey(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "InvalidRequestBody"
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Email":
		return "InvalidEmail"
	case "Password":
		if fe.Tag() == "required" {
			return "MissingFields"
		}
		return "PasswordTooShort"
	case "Latitude", "Longitude":
		if fe.Tag() == "required" {
			return "MissingFields"
		}
		return "InvalidCoordinates"
	case "Description":
		return "MissingFields"
	}
	return "InvalidRequestBody"
}
