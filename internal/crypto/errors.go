package crypto

import "errors"

var (
	// ErrKeyMismatch is returned when the RSA-OAEP unwrap of the session key
	// fails its padding check. It signals a wrong or corrupted private key.
	ErrKeyMismatch = errors.New("key mismatch: session key unwrap failed")

	// ErrLayerMismatch is returned when the key-exchange layer cannot be
	// removed, either because the exchange private key is wrong or missing or
	// because the layer ciphertext was altered.
	ErrLayerMismatch = errors.New("exchange layer mismatch")

	// ErrCorruptedPayload is returned when the symmetric ciphertext fails
	// integrity or padding validation after a successful key unwrap.
	ErrCorruptedPayload = errors.New("corrupted payload")

	// ErrKeyParse is returned when key text cannot be parsed.
	ErrKeyParse = errors.New("key parse failure")

	// ErrInvalidKeyRole is returned for a KeyRole other than RolePublic or RolePrivate.
	ErrInvalidKeyRole = errors.New("invalid key role")

	// ErrInvalidFrame is returned when a frame is structurally invalid.
	ErrInvalidFrame = errors.New("invalid frame")

	// ErrInvalidKeySize is returned when a symmetric key has the wrong size.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidIVSize is returned when the CBC IV has the wrong size.
	ErrInvalidIVSize = errors.New("invalid IV size")

	// ErrKeyTooSmall is returned when an RSA modulus below MinRSABits is requested.
	ErrKeyTooSmall = errors.New("RSA key size too small")

	// ErrUnsupportedScheme is returned for an unknown exchange scheme name.
	ErrUnsupportedScheme = errors.New("unsupported exchange scheme")

	// ErrMissingKey is returned when a seal or open call receives a nil key.
	ErrMissingKey = errors.New("missing key")

	// ErrDecryptionFailed is returned when AES-GCM authentication fails.
	ErrDecryptionFailed = errors.New("decryption failed")
)
