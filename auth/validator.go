package auth

import (
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"

	"chat-pulse/errors"
)

var validate = validator.New()

// RegisterRequest carries the fields checked before creating an account.
// Password is optional, guests register with a username only.
type RegisterRequest struct {
	Username string `validate:"required,min=3,max=24"`
	Password string `validate:"omitempty,min=12,max=72"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrInvalidPayload, err)
	}

	if !isUsernameClean(req.Username) {
		return errors.ErrInvalidUsername
	}
	if req.Password != "" && !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

// isUsernameClean restricts usernames to letters, digits, underscore and dot.
func isUsernameClean(s string) bool {
	for _, char := range s {
		if unicode.IsLetter(char) || unicode.IsDigit(char) || char == '_' || char == '.' {
			continue
		}
		return false
	}
	return true
}

func isPasswordComplex(s string) bool {
	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
