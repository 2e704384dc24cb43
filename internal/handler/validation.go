package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// validationMessage translates a validator.ValidationErrors into the
// user-facing message for the first failing field.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch {
		case fe.Field() == "Username" && fe.Tag() == "required":
			return "Please provide your username."
		case fe.Field() == "Password" && fe.Tag() == "min":
			return "Your password needs to be at least 8 characters long."
		}
	}
	return "Invalid form submission."
}
