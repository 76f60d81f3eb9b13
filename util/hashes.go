package util

import (
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
	"lukechampine.com/blake3"
)

// GetTokenHash returns the blake3 hash of a bearer token as a hex string.
// Tokens are matched by hash at rest so a leaked table does not leak keys.
func GetTokenHash(token string) string {
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func GetPasswordHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
