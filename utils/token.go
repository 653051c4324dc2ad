package utils

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost used for passwords and login tokens.
var HashCost = bcrypt.DefaultCost

// MaxSecretBytes is the longest input bcrypt accepts.
const MaxSecretBytes = 72

// HashSecret returns the bcrypt hash of secret.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), HashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CompareSecret reports whether secret matches hash. An empty secret or hash
// never matches.
func CompareSecret(hash, secret string) bool {
	if hash == "" || secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// NewToken returns a fresh opaque login token.
func NewToken() string {
	return uuid.NewString()
}
