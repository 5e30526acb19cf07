package utils

import (
	"net/mail"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used by HashPassword. Tests lower it to
// bcrypt.MinCost.
var PasswordCost = bcrypt.DefaultCost

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var (
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{9,14}$`)
	cpfPattern   = regexp.MustCompile(`^\d{3}\.?\d{3}\.?\d{3}-?\d{2}$`)
)

// HashPassword hashes a plain password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsEmail returns true if the string is a valid email address.
func IsEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// IsPhone returns true for E.164-like phone numbers.
func IsPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// IsCPF returns true when s is shaped like a Brazilian tax id, with or without
// punctuation. Check digits are not verified.
func IsCPF(s string) bool {
	return cpfPattern.MatchString(s)
}
