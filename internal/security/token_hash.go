package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// oneTimeTokenBytes is the entropy of raw one-time tokens (email verification,
// password reset).
const oneTimeTokenBytes = 32

// NewOneTimeToken returns an opaque random token string with 32 bytes of
// entropy, base64url-encoded. The raw value is delivered to the user out of
// band; only its hash is ever persisted.
func NewOneTimeToken() (string, error) {
	b := make([]byte, oneTimeTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken returns the SHA-256 hash of a token string, hex-encoded. Used for
// storing and looking up refresh and one-time tokens without storing the raw
// secret.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// TokenHashEqual performs constant-time comparison of the provided token's
// hash with the stored hash.
func TokenHashEqual(providedToken, storedHash string) bool {
	providedHash := HashToken(providedToken)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHash)) == 1
}
