package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

// bcryptCost is the work factor applied when hashing new passwords.
// Existing hashes keep whatever cost they were created with.
const bcryptCost = bcrypt.DefaultCost

// HashPassword derives a bcrypt hash from a plaintext password.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", errors.New(errors.CodeInvalidParam, "password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to hash password")
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
