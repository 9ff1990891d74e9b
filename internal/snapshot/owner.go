package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
)

// ScopedKey binds a client-visible snapshot key to its owner, so the same key
// presented by another visitor addresses a different snapshot. An empty owner
// leaves key unchanged.
func ScopedKey(key, owner string) string {
	if owner == "" {
		return key
	}
	sum := sha256.Sum256([]byte(owner))
	return key + ":" + hex.EncodeToString(sum[:8])
}
