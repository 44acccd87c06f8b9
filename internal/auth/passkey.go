// Package auth handles profile passkeys and the device-local session that
// a successful verification opens.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrIncorrectPasskey is the only detail ever reported for a failed
	// verification; which part was wrong is deliberately not revealed.
	ErrIncorrectPasskey = errors.New("incorrect passkey")

	// ErrWeakPasskey is returned when a new passkey is too short.
	ErrWeakPasskey = errors.New("passkey must be at least 4 characters")
)

// ValidatePasskey checks a new passkey against the minimum requirements.
func ValidatePasskey(passkey string) error {
	if len(passkey) < 4 {
		return ErrWeakPasskey
	}
	return nil
}

// HashPasskey hashes a passkey with bcrypt for storage.
func HashPasskey(passkey string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(passkey), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing passkey: %w", err)
	}
	return string(hashed), nil
}

// VerifyPasskey reports whether the supplied passkey matches the stored
// credential. Stored credentials come in three forms: bcrypt hashes written
// by this program, SHA-256 hex digests from legacy exports, and plaintext
// passkeys from the oldest export format. All three verify; none of them
// leak which comparison failed.
func VerifyPasskey(stored, supplied string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	if isHexDigest(stored) {
		sum := sha256.Sum256([]byte(supplied))
		digest := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(stored), []byte(digest)) == 1
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

func isHexDigest(s string) bool {
	if len(s) != hex.EncodedLen(sha256.Size) {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
