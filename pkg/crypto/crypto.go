package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of the supplied password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares the hashed password with the plaintext candidate.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// NumericCode returns a uniformly random numeric string of the requested
// length. Leading zeros are allowed, so a 4-digit code ranges 0000-9999.
func NumericCode(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("crypto: code length must be positive")
	}

	const digits = "0123456789"
	code := make([]byte, length)
	max := big.NewInt(int64(len(digits)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = digits[n.Int64()]
	}
	return string(code), nil
}
