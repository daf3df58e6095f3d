package service

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/proyecto-caja/caja-server/internal/core/domain"
)

// PasswordCost is the bcrypt cost used for every stored password.
const PasswordCost = 10

// MinPasswordLength is the shortest password accepted on user creation.
const MinPasswordLength = 6

var validate = validator.New()

// dummyHash is compared against when the email is unknown so that both
// login failure paths spend one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("caja-unknown-user"), PasswordCost)
	return h
})

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// validateNewCredentials checks the inputs of a user creation. email must
// already be normalized.
func validateNewCredentials(email, password string) error {
	if email == "" || password == "" {
		return domain.Validation("email and password are required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return domain.Validation("email must be a valid email")
	}
	if len(password) < MinPasswordLength {
		return domain.Validation("password must be at least 6 characters")
	}
	return nil
}
