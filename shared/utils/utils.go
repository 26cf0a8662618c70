package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

func HashContent(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// ShortHash returns the first n hex characters of HashContent.
func ShortHash(content []byte, n int) string {
	h := HashContent(content)
	if n <= 0 || n >= len(h) {
		return h
	}
	return h[:n]
}
