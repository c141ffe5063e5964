package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordSymbols is the set a password must draw at least one symbol from.
const PasswordSymbols = "@$!%*?&"

const minPasswordLength = 8

// PasswordPolicyMessage is returned to clients when a password is rejected.
const PasswordPolicyMessage = "Password must be at least 8 characters with uppercase, lowercase, number, and special character"

// dummyHash is compared against when a login names an unknown email so both
// failure paths spend the same bcrypt work.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("order-tracking-dummy-P4ss!"), bcrypt.DefaultCost)

// HashPassword returns a salted bcrypt hash at the default cost (10).
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword reports whether password matches hash. An empty hash is
// checked against a dummy so the call costs the same either way.
func ComparePassword(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidPassword reports whether password has at least 8 characters, one
// upper-case letter, one lower-case letter, one digit and one symbol from
// PasswordSymbols, and contains nothing outside those classes.
func ValidPassword(password string) bool {
	if len(password) < minPasswordLength {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r > unicode.MaxASCII:
			return false
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return upper && lower && digit && symbol
}
