package password

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12

	// MinKeyLength is the shortest scanner key accepted on registration
	MinKeyLength = 16
)

// Hash hashes a scanner key using bcrypt
func Hash(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a key with a hash
func Verify(key, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
	return err == nil
}

// GenerateKey returns a random hex key of 2*n characters
func GenerateKey(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ValidateKey checks if a key meets the length requirement
func ValidateKey(key string) bool {
	return len(key) >= MinKeyLength
}
