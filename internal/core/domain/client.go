package domain

import (
	"strings"
	"time"
)

const (
	PersonaJuridica = "JURIDICA"
	PersonaFisica   = "FISICA"
)

// CuitLength is the number of digits of a normalized CUIT.
const CuitLength = 11

// Client is a business contact owned by exactly one user.
type Client struct {
	ID          string
	UserID      string
	RazonSocial string
	Cuit        *string // nil or exactly CuitLength digits
	TipoPersona *string // nil, PersonaJuridica or PersonaFisica
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidTipoPersona reports whether t is an accepted persona kind.
func ValidTipoPersona(t string) bool {
	return t == PersonaJuridica || t == PersonaFisica
}

// Digits strips every non-digit character from s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeCUIT strips separators from raw. Blank input (or input without
// any digit) normalizes to nil; anything else must leave exactly
// CuitLength digits.
func NormalizeCUIT(raw string) (*string, error) {
	digits := Digits(strings.TrimSpace(raw))
	if digits == "" {
		return nil, nil
	}
	if len(digits) != CuitLength {
		return nil, Validation("cuit must have 11 digits")
	}
	return &digits, nil
}
