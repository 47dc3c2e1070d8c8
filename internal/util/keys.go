package util

import (
	"crypto/sha256"
	"fmt"
)

// StorageKey returns prefix + ":" + the first 16 hex chars of sha256(id).
// ids are canonical key encodings and may hold arbitrary bytes.
func StorageKey(prefix, id string) string {
	sum := sha256.Sum256([]byte(id))
	return fmt.Sprintf("%s:%x", prefix, sum[:8])
}
