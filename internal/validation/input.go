package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Límites de los campos de entrada.
const (
	MinNameLength        = 2
	MaxNameLength        = 100
	MaxAddressLength     = 300
	MinDescriptionLength = 10
	MaxDescriptionLength = 3000
	MaxCommentLength     = 2000
	MaxMotiveLength      = 120
	MaxListingTitle      = 200
	MaxSpecializations   = 10
	MaxYearsExperience   = 80
	MinPasswordLength    = 8
	MaxPasswordLength    = 72 // límite de bcrypt
)

// ValidateLength verifica la longitud en runas de un campo de texto.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s debe tener al menos %d caracteres", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s debe tener como máximo %d caracteres", fieldName, max)
	}
	return nil
}

// ValidateRequired verifica que el campo no esté vacío.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s es obligatorio", fieldName)
	}
	return nil
}

// ValidateEmail verifica el formato del correo.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("el correo es obligatorio")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("el formato del correo no es válido")
	}
	return nil
}

// NormalizeEmail deja el correo en minúsculas y sin espacios.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword verifica los requisitos mínimos de la contraseña.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("la contraseña debe tener al menos %d caracteres", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("la contraseña debe tener como máximo %d caracteres", MaxPasswordLength)
	}
	return nil
}

// ValidateScore verifica que la calificación esté en el rango admitido.
func ValidateScore(fieldName string, score, min, max int) error {
	if score < min || score > max {
		return fmt.Errorf("%s debe estar entre %d y %d", fieldName, min, max)
	}
	return nil
}
