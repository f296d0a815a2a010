package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashCredentials hashes an admin phone+dob pair for storage
func HashCredentials(phone, dob string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(credentialBytes(phone, dob), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash credentials: %w", err)
	}
	return string(hash), nil
}

// CheckCredentials reports whether phone+dob match the stored hash
func CheckCredentials(hash, phone, dob string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), credentialBytes(phone, dob)) == nil
}

func credentialBytes(phone, dob string) []byte {
	return []byte(phone + "\x00" + dob)
}
