package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
	"io"
)

// EncryptCBC encrypts plaintext with AES-CBC under key and iv, applying PKCS#7
// padding. The result is always at least one block long, even for an empty
// plaintext.
func EncryptCBC(key, iv, plaintext []byte) ([]byte, error) {
	if len(key) != SessionKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), SessionKeySize)
	}

	if len(iv) != BlockSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIVSize, len(iv), BlockSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// DecryptCBC reverses EncryptCBC. A ciphertext that is not a positive multiple
// of the block size, or whose padding does not validate, yields
// ErrCorruptedPayload.
func DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	if len(key) != SessionKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), SessionKeySize)
	}

	if len(iv) != BlockSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIVSize, len(iv), BlockSize)
	}

	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a positive multiple of %d",
			ErrCorruptedPayload, len(ciphertext), BlockSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, BlockSize)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length", ErrCorruptedPayload)
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: invalid padding", ErrCorruptedPayload)
	}

	pad := data[len(data)-n:]
	for _, b := range pad {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", ErrCorruptedPayload)
		}
	}

	return data[:len(data)-n], nil
}

// sealGCM encrypts plaintext with AES-256-GCM under a fresh random nonce.
// Returns: nonce (12 bytes) || ciphertext || tag (16 bytes)
func sealGCM(key, plaintext, aad []byte) ([]byte, error) {
	if len(key) != LayerKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), LayerKeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, GCMNonceSize)
	if _, err := io.ReadFull(randSource(), nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, aad), nil
}

// openGCM reverses sealGCM.
func openGCM(key, sealed, aad []byte) ([]byte, error) {
	if len(key) != LayerKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), LayerKeySize)
	}

	if len(sealed) < GCMNonceSize+GCMTagSize {
		return nil, ErrDecryptionFailed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, sealed[:GCMNonceSize], sealed[GCMNonceSize:], aad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// equalMAC compares two MACs in constant time.
func equalMAC(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
