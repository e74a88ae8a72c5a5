// Package checksum produces the content digests used as version tokens
// by the filesystem backend.
package checksum

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Match reports whether token equals the digest of data, in constant time.
func Match(token string, data []byte) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(Sum(data))) == 1
}
