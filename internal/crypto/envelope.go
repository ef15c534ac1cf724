package crypto

import (
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"
)

// sealConfig holds per-call seal settings.
type sealConfig struct {
	integrity bool
	exchange  bool
}

// SealOption configures Seal.
type SealOption func(*sealConfig)

// WithIntegrity enables or disables the HMAC-SHA-256 frame tag. Enabled by default.
func WithIntegrity(enabled bool) SealOption {
	return func(c *sealConfig) {
		c.integrity = enabled
	}
}

// WithoutExchange skips the exchange layer even if the public key carries one.
func WithoutExchange() SealOption {
	return func(c *sealConfig) {
		c.exchange = false
	}
}

// Seal encrypts plaintext for the holder of pub.
//
// The sealing process:
//  1. A fresh 16-byte session key and IV are drawn.
//  2. The plaintext is encrypted with AES-128-CBC and PKCS#7 padding.
//  3. An HMAC-SHA-256 tag over IV || ciphertext is added (unless disabled).
//  4. If pub carries an exchange key, the session key is sealed with
//     AES-256-GCM under a KEM-derived key (the exchange layer).
//  5. The result of step 4 (or the bare session key) is wrapped with
//     RSA-OAEP-SHA256.
//
// Open removes the layers in reverse order.
func Seal(plaintext []byte, pub *PublicKey, opts ...SealOption) (*Frame, error) {
	if pub == nil || pub.RSA == nil {
		return nil, fmt.Errorf("%w: public key", ErrMissingKey)
	}

	cfg := &sealConfig{integrity: true, exchange: true}
	for _, opt := range opts {
		opt(cfg)
	}

	sessionKey := make([]byte, SessionKeySize)
	if _, err := io.ReadFull(randSource(), sessionKey); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	defer clear(sessionKey)

	iv := make([]byte, BlockSize)
	if _, err := io.ReadFull(randSource(), iv); err != nil {
		return nil, fmt.Errorf("generate IV: %w", err)
	}

	ciphertext, err := EncryptCBC(sessionKey, iv, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	frame := &Frame{IV: iv, Ciphertext: ciphertext}

	if cfg.integrity {
		frame.Tag, err = frameMAC(sessionKey, iv, ciphertext)
		if err != nil {
			return nil, fmt.Errorf("mac: %w", err)
		}
	}

	keyMaterial := sessionKey
	if cfg.exchange && pub.HasExchange() {
		enc, sealed, err := wrapLayer(pub.Scheme, pub.Exchange, sessionKey)
		if err != nil {
			return nil, fmt.Errorf("exchange layer: %w", err)
		}
		frame.Encapsulation = enc
		keyMaterial = sealed
	}

	frame.WrappedKey, err = rsa.EncryptOAEP(sha256.New(), randSource(), pub.RSA, keyMaterial, nil)
	if err != nil {
		return nil, fmt.Errorf("wrap session key: %w", err)
	}

	return frame, nil
}

// Open decrypts a frame sealed for priv.
//
// Failures are reported per layer:
//   - ErrKeyMismatch: RSA-OAEP unwrap failed (wrong or corrupted private key)
//   - ErrLayerMismatch: the exchange layer could not be removed
//   - ErrCorruptedPayload: the integrity tag or CBC padding did not validate
func Open(frame *Frame, priv *PrivateKey) ([]byte, error) {
	if priv == nil || priv.RSA == nil {
		return nil, fmt.Errorf("%w: private key", ErrMissingKey)
	}

	if err := frame.Validate(); err != nil {
		return nil, err
	}

	// 1. RSA-OAEP unwrap
	keyMaterial, err := rsa.DecryptOAEP(sha256.New(), nil, priv.RSA, frame.WrappedKey, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyMismatch, err)
	}

	// 2. Exchange layer
	sessionKey := keyMaterial
	if len(frame.Encapsulation) > 0 {
		if !priv.HasExchange() {
			return nil, fmt.Errorf("%w: frame carries an exchange layer but the key has none", ErrLayerMismatch)
		}
		if len(keyMaterial) != layeredKeySize {
			return nil, fmt.Errorf("%w: layered key size %d, want %d", ErrLayerMismatch, len(keyMaterial), layeredKeySize)
		}
		sessionKey, err = unwrapLayer(priv.Scheme, priv.Exchange, frame.Encapsulation, keyMaterial)
		if err != nil {
			return nil, err
		}
	}
	defer clear(sessionKey)

	if len(sessionKey) != SessionKeySize {
		return nil, fmt.Errorf("%w: session key size %d, want %d", ErrInvalidFrame, len(sessionKey), SessionKeySize)
	}

	// 3. Integrity tag
	if len(frame.Tag) > 0 {
		want, err := frameMAC(sessionKey, frame.IV, frame.Ciphertext)
		if err != nil {
			return nil, fmt.Errorf("mac: %w", err)
		}
		if !equalMAC(want, frame.Tag) {
			return nil, fmt.Errorf("%w: integrity tag mismatch", ErrCorruptedPayload)
		}
	}

	// 4. AES-128-CBC decryption
	plaintext, err := DecryptCBC(sessionKey, frame.IV, frame.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}

	return plaintext, nil
}
