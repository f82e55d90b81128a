// api/util/validation_util.go

package util

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
)

type ValidationUtil struct {
	validate *validator.Validate
}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{validate: validator.New()}
}

func (v *ValidationUtil) ValidateUser(user model.User) error {
	if err := v.validate.Var(user.UserID, "required,max=128"); err != nil {
		return fmt.Errorf("user key is invalid: %w", err)
	}
	// Keys travel in URL paths, so path-significant characters are out
	if strings.ContainsAny(user.UserID, " /") {
		return fmt.Errorf("user key must not contain spaces or slashes")
	}
	for key := range user.Attributes {
		if err := v.validate.Var(key, "required,max=256"); err != nil {
			return fmt.Errorf("attribute name %q is invalid: %w", key, err)
		}
	}
	return nil
}
