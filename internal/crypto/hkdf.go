package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives a key using HKDF-SHA-512.
//
// Parameters:
//   - secret: the input key material (e.g., shared secret from a KEM)
//   - salt: optional salt value; if empty, a zero-filled salt is used
//   - info: context/application-specific info for domain separation
//   - length: desired output key length in bytes
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	if len(salt) == 0 {
		salt = make([]byte, sha512.Size)
	}

	reader := hkdf.New(sha512.New, secret, salt, info)
	key := make([]byte, length)

	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return key, nil
}

// deriveLayerKey derives the exchange-layer AES-256-GCM key.
//
// The key derivation uses:
//   - IKM: the KEM shared secret
//   - Salt: SHA-256 hash of the encapsulation
//   - Info: HKDFLayerContext
func deriveLayerKey(sharedSecret, encapsulation []byte) ([]byte, error) {
	salt := sha256.Sum256(encapsulation)
	return DeriveKey(sharedSecret, salt[:], []byte(HKDFLayerContext), LayerKeySize)
}

// frameMAC computes the HMAC-SHA-256 integrity tag over iv || ciphertext with
// a key derived from the session key. The IV doubles as the HKDF salt so each
// frame gets its own MAC key.
func frameMAC(sessionKey, iv, ciphertext []byte) ([]byte, error) {
	macKey, err := DeriveKey(sessionKey, iv, []byte(HKDFMACContext), sha256.Size)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, macKey)
	mac.Write(iv)
	mac.Write(ciphertext)
	return mac.Sum(nil), nil
}
