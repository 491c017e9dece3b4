package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrHashMalformed indicates the stored hash could not be parsed. Callers
// must surface this as an internal error, never as a bad-password result.
var ErrHashMalformed = errors.New("stored password hash is malformed")

// HashPassword derives a salted one-way hash from a plaintext password.
// The output embeds the algorithm parameters and a fresh random salt, so
// two calls on the same password yield different strings.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against a stored hash. The
// comparison runs in constant time. A false return with a nil error means
// the password simply does not match; a non-nil error means the stored
// value itself is unusable.
func VerifyPassword(password, stored string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrHashMalformed, err)
	}
}
