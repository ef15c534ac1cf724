package crypto

const (
	// HKDFLayerContext is the info string used when deriving the exchange-layer
	// wrapping key from a KEM shared secret.
	HKDFLayerContext = "kriptografi:layer:v1"

	// HKDFMACContext is the info string used when deriving the frame MAC key
	// from the session key.
	HKDFMACContext = "kriptografi:frame:v1:mac"

	// SessionKeySize is the size of the ephemeral AES-128 session key in bytes.
	SessionKeySize = 16
	// BlockSize is the AES block size in bytes. The CBC IV has this length and
	// every ciphertext is a multiple of it.
	BlockSize = 16

	// LayerKeySize is the size of the AES-256-GCM key used by the exchange layer.
	LayerKeySize = 32
	// GCMNonceSize is the size of an AES-GCM nonce in bytes.
	GCMNonceSize = 12
	// GCMTagSize is the size of an AES-GCM authentication tag in bytes.
	GCMTagSize = 16

	// MACSize is the size of the HMAC-SHA-256 frame integrity tag.
	MACSize = 32
	// DigestSize is the size of a Digest output in bytes.
	DigestSize = 32

	// DefaultRSABits is the default RSA modulus size.
	DefaultRSABits = 2048
	// MinRSABits is the smallest RSA modulus accepted for key generation.
	MinRSABits = 1024
)

// layeredKeySize is the length of a session key sealed by the exchange layer:
// nonce || ciphertext || tag.
const layeredKeySize = GCMNonceSize + SessionKeySize + GCMTagSize
