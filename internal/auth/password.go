package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/parley-ai/chat-broker/internal/apperr"
)

// bcryptCost matches the cost the original deployment used.
const bcryptCost = 10

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the candidate matches the stored hash.
func CheckPassword(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
