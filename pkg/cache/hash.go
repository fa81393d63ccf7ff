package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds a "prefix:hash(parts...)" cache key. Parts are JSON
// encoded before hashing so option structs key by value.
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash computes the SHA-256 of the input as a 64-character hex string.
// The full hash is kept to rule out collisions between cache entries.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
