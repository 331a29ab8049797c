package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted anywhere.
const MinPasswordLength = 6

// HashPassword returns a bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compares pw against a stored value. Stored values without a
// "$" predate hashing and are compared as plaintext; a match reports
// needsRehash so the caller can upgrade the record.
func CheckPassword(stored, pw string) (ok bool, needsRehash bool) {
	if stored == "" {
		return false, false
	}
	if !strings.Contains(stored, "$") {
		if subtle.ConstantTimeCompare([]byte(stored), []byte(pw)) == 1 {
			return true, true
		}
		return false, false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(pw)) == nil, false
}

// RandomToken returns n random bytes encoded as unpadded base64url.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RandomPassword returns an unguessable password for accounts created through OAuth.
func RandomPassword() (string, error) {
	return RandomToken(32)
}
