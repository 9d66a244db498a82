package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"budget-tracker/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// HashPassword returns the bcrypt hash of password. Passwords longer than MaxPasswordBytes
// are rejected with a *models.ValidationError.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", &models.ValidationError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes),
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateSessionToken returns a random 64 character hex token.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
