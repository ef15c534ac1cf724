package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the SHA-256 hash of message.
func Digest(message []byte) [DigestSize]byte {
	return sha256.Sum256(message)
}

// DigestHex returns the SHA-256 hash of message as lowercase hex.
func DigestHex(message []byte) string {
	sum := Digest(message)
	return hex.EncodeToString(sum[:])
}
