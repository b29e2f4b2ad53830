package types

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// illegalIDChars lists the characters no caller-supplied identifier may
// contain. 0x7C is the validator escape for '|'.
const illegalIDChars = `@_!#$%^&*()<>?/\0x7C}{~:`

const idTag = "required,excludesall=" + illegalIDChars

// ValidateID rejects empty identifiers and ones carrying illegal characters
// with ErrInvalidID. Backends may refuse further identifiers on Save.
func ValidateID(id string) error {
	err := configValidate.Var(id, idTag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidID)
	}
	return fmt.Errorf("%w: illegal characters in %q", ErrInvalidID, id)
}
