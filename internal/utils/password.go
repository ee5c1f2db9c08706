package utils

import "golang.org/x/crypto/bcrypt"

// HashSecret returns a bcrypt hash of a shared secret using the given cost.
// Operators store the hash (IDENTITY_WEBHOOK_SECRET_HASH), never the secret.
func HashSecret(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifySecret safely compares a bcrypt hash and a presented secret.
func VerifySecret(hash, plain string) bool {
	if hash == "" || plain == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
