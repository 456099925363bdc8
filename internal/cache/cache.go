// Package cache stores serialized analysis results keyed by content hash.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// keyVersion changes whenever the cached result format or engine rules change
const keyVersion = "readscope:v1:"

// Key derives a cache key from a namespace and the exact content analyzed.
// Identical text always maps to the same key; a single byte difference does not.
func Key(namespace, content string) string {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return keyVersion + namespace + ":" + hex.EncodeToString(h.Sum(nil))
}
