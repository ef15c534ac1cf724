package kriptografi

import (
	"github.com/Alfariz11/Kriptografi/internal/crypto"
	"github.com/Alfariz11/Kriptografi/internal/fec"
)

// Key material and envelope types.
type (
	// KeyPair holds the RSA key pair and, optionally, an exchange-layer key pair.
	KeyPair = crypto.KeyPair
	// PublicKey is what a sender needs to seal a payload.
	PublicKey = crypto.PublicKey
	// PrivateKey is what a recipient needs to open a payload.
	PrivateKey = crypto.PrivateKey
	// KeyRole selects the half of a key pair encoded in PEM text.
	KeyRole = crypto.KeyRole
	// Scheme names an exchange-layer mechanism.
	Scheme = crypto.Scheme
	// Frame is the sealed payload as embedded in the carrier.
	Frame = crypto.Frame
	// Corrector adds forward error correction around the framed payload.
	Corrector = fec.Corrector
)

// Key roles accepted by LoadKey.
const (
	// RolePublic marks PEM text holding the public half of a key pair.
	RolePublic = crypto.RolePublic
	// RolePrivate marks PEM text holding the private half of a key pair.
	RolePrivate = crypto.RolePrivate
)

// Exchange-layer schemes accepted by GenerateKeyPair and WithExchangeScheme.
const (
	// SchemeNone seals with RSA-OAEP only.
	SchemeNone = crypto.SchemeNone
	// SchemeX25519 adds an X25519 key exchange around the session key.
	SchemeX25519 = crypto.SchemeX25519
	// SchemeP256 adds a NIST P-256 key exchange around the session key.
	SchemeP256 = crypto.SchemeP256
	// SchemeMLKEM768 adds an ML-KEM-768 encapsulation around the session key.
	SchemeMLKEM768 = crypto.SchemeMLKEM768
	// SchemeSecp256k1 adds a secp256k1 ECDH exchange around the session key.
	SchemeSecp256k1 = crypto.SchemeSecp256k1
)

// GenerateKeyPair creates an RSA key pair of the given size with an optional
// exchange-layer key pair. Use SchemeNone for RSA only.
func GenerateKeyPair(bits int, scheme Scheme) (*KeyPair, error) {
	return crypto.GenerateKeyPair(bits, scheme)
}

// LoadKey parses PEM text holding a key of the given role. The role is never
// inferred from the text.
func LoadKey(text string, role KeyRole) (*KeyPair, error) {
	return crypto.LoadKey(text, role)
}

// ParseScheme converts a scheme name such as "X25519" into a Scheme.
func ParseScheme(name string) (Scheme, error) {
	return crypto.ParseScheme(name)
}

// Digest returns the SHA-256 hash of message, for integrity checks and
// avalanche measurements.
func Digest(message []byte) [32]byte {
	return crypto.Digest(message)
}

// DigestHex returns the SHA-256 hash of message as lowercase hex.
func DigestHex(message []byte) string {
	return crypto.DigestHex(message)
}

// NewRepetitionCorrector returns a repetition code that repeats every bit n
// times. n must be odd and at least 3.
func NewRepetitionCorrector(n int) (Corrector, error) {
	r, err := fec.NewRepetition(n)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NewReedSolomonCorrector returns a Reed-Solomon code that stripes the block
// across n shares, any k of which rebuild it. Up to (n-k)/2 corrupted shares
// per stripe are corrected. n must be at least k+2 and at most 256.
func NewReedSolomonCorrector(k, n int) (Corrector, error) {
	rs, err := fec.NewReedSolomon(k, n)
	if err != nil {
		return nil, err
	}
	return rs, nil
}
