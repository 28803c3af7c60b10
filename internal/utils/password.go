package utils

// Admin passwords are stored as bcrypt hashes; the seed cost comes from
// BCRYPT_COST.

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash of an admin password at the given
// cost.  Used when seeding the configured admin account.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored admin hash.
// Login treats a mismatch and an unknown username the same way.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
