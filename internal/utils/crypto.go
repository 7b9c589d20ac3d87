package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashSHA256 produces a deterministic digest used as a lookup key
// (e.g. password-reset codes consumed without knowing the email).
// Secrets that are only ever compared, never looked up, use bcrypt instead.
func HashSHA256(input string) string {
	input = strings.TrimSpace(input)

	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
