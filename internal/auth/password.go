// Package auth provides credential hashing, the dual-token session scheme,
// session cookies, and the optional token denylist.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a bcrypt digest of the plaintext password.
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether the plaintext matches the stored digest.
// It returns false for any mismatch or malformed digest; the caller cannot
// distinguish a wrong password from a corrupt record.
func VerifyPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
