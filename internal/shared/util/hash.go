package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey maps a caller id to a fixed-length hex key. Distinct ids never
// share a key, which path sanitizing cannot promise.
func HashUserKey(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}
