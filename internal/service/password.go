package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashPassword hashes a plain-text password with bcrypt at the default cost.
func hashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("service.hashPassword: %w", err)
	}
	return string(hashed), nil
}

// checkPassword reports whether plain matches the stored bcrypt hash.
func checkPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// tempPassword returns "devpw-" followed by 8 URL-safe random characters.
func tempPassword() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("service.tempPassword: %w", err)
	}
	return "devpw-" + base64.RawURLEncoding.EncodeToString(b), nil
}
