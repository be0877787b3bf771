package services

import (
	"direct-chat/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateEmail only checks the shape of the address; existence is the
// repository's concern.
func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: %q is not a valid email", errors.ErrValidation, email)
	}
	return nil
}
