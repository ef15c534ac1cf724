package crypto

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/cloudflare/circl/hpke"
	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// Scheme names a key-exchange mechanism for the optional second layer.
type Scheme string

const (
	// SchemeNone disables the exchange layer.
	SchemeNone Scheme = ""
	// SchemeX25519 is DHKEM(X25519, HKDF-SHA256).
	SchemeX25519 Scheme = "X25519"
	// SchemeP256 is DHKEM(P-256, HKDF-SHA256).
	SchemeP256 Scheme = "P256"
	// SchemeMLKEM768 is the ML-KEM-768 post-quantum KEM.
	SchemeMLKEM768 Scheme = "ML-KEM-768"
	// SchemeSecp256k1 is static-ephemeral ECDH over secp256k1.
	SchemeSecp256k1 Scheme = "secp256k1"
)

// Schemes lists every supported exchange scheme.
var Schemes = []Scheme{SchemeX25519, SchemeP256, SchemeMLKEM768, SchemeSecp256k1}

// Valid reports whether s is SchemeNone or a supported scheme.
func (s Scheme) Valid() bool {
	if s == SchemeNone {
		return true
	}
	_, err := exchangerFor(s)
	return err == nil
}

// ParseScheme converts a scheme name into a Scheme.
func ParseScheme(name string) (Scheme, error) {
	s := Scheme(name)
	if !s.Valid() {
		return SchemeNone, fmt.Errorf("%w: %q", ErrUnsupportedScheme, name)
	}
	return s, nil
}

// exchanger is a key encapsulation mechanism operating on packed keys.
type exchanger interface {
	generate() (pub, priv []byte, err error)
	publicFromPrivate(priv []byte) ([]byte, error)
	checkPublic(pub []byte) error
	encapsulate(pub []byte) (enc, shared []byte, err error)
	decapsulate(priv, enc []byte) ([]byte, error)
}

func exchangerFor(s Scheme) (exchanger, error) {
	switch s {
	case SchemeX25519:
		return kemExchanger{hpke.KEM_X25519_HKDF_SHA256.Scheme()}, nil
	case SchemeP256:
		return kemExchanger{hpke.KEM_P256_HKDF_SHA256.Scheme()}, nil
	case SchemeMLKEM768:
		return kemExchanger{mlkem768.Scheme()}, nil
	case SchemeSecp256k1:
		return secp256k1Exchanger{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, string(s))
	}
}

// kemExchanger adapts a circl KEM scheme.
type kemExchanger struct {
	scheme kem.Scheme
}

func (k kemExchanger) generate() ([]byte, []byte, error) {
	seed := make([]byte, k.scheme.SeedSize())
	if _, err := io.ReadFull(randSource(), seed); err != nil {
		return nil, nil, fmt.Errorf("failed to generate seed: %w", err)
	}

	pk, sk := k.scheme.DeriveKeyPair(seed)

	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	priv, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	return pub, priv, nil
}

func (k kemExchanger) publicFromPrivate(priv []byte) ([]byte, error) {
	sk, err := k.scheme.UnmarshalBinaryPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return sk.Public().MarshalBinary()
}

func (k kemExchanger) checkPublic(pub []byte) error {
	_, err := k.scheme.UnmarshalBinaryPublicKey(pub)
	return err
}

func (k kemExchanger) encapsulate(pub []byte) ([]byte, []byte, error) {
	pk, err := k.scheme.UnmarshalBinaryPublicKey(pub)
	if err != nil {
		return nil, nil, fmt.Errorf("unmarshal public key: %w", err)
	}

	seed := make([]byte, k.scheme.EncapsulationSeedSize())
	if _, err := io.ReadFull(randSource(), seed); err != nil {
		return nil, nil, fmt.Errorf("failed to generate seed: %w", err)
	}

	return k.scheme.EncapsulateDeterministically(pk, seed)
}

func (k kemExchanger) decapsulate(priv, enc []byte) ([]byte, error) {
	sk, err := k.scheme.UnmarshalBinaryPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("unmarshal private key: %w", err)
	}
	return k.scheme.Decapsulate(sk, enc)
}

// secp256k1Exchanger performs ECDH between an ephemeral key and the
// recipient's static key. The encapsulation is the compressed ephemeral
// public key.
type secp256k1Exchanger struct{}

const secp256k1PrivateKeySize = 32

func (secp256k1Exchanger) generate() ([]byte, []byte, error) {
	priv, err := newSecp256k1Key()
	if err != nil {
		return nil, nil, err
	}
	return priv.PubKey().SerializeCompressed(), priv.Serialize(), nil
}

func (secp256k1Exchanger) publicFromPrivate(priv []byte) ([]byte, error) {
	if len(priv) != secp256k1PrivateKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(priv), secp256k1PrivateKeySize)
	}
	_, pub := btcec.PrivKeyFromBytes(priv)
	return pub.SerializeCompressed(), nil
}

func (secp256k1Exchanger) checkPublic(pub []byte) error {
	_, err := btcec.ParsePubKey(pub)
	return err
}

func (secp256k1Exchanger) encapsulate(pub []byte) ([]byte, []byte, error) {
	recipient, err := btcec.ParsePubKey(pub)
	if err != nil {
		return nil, nil, fmt.Errorf("parse public key: %w", err)
	}

	ephemeral, err := newSecp256k1Key()
	if err != nil {
		return nil, nil, err
	}

	shared := btcec.GenerateSharedSecret(ephemeral, recipient)
	return ephemeral.PubKey().SerializeCompressed(), shared, nil
}

func (secp256k1Exchanger) decapsulate(priv, enc []byte) ([]byte, error) {
	if len(priv) != secp256k1PrivateKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(priv), secp256k1PrivateKeySize)
	}

	ephemeral, err := btcec.ParsePubKey(enc)
	if err != nil {
		return nil, fmt.Errorf("parse encapsulation: %w", err)
	}

	sk, _ := btcec.PrivKeyFromBytes(priv)
	return btcec.GenerateSharedSecret(sk, ephemeral), nil
}

func newSecp256k1Key() (*btcec.PrivateKey, error) {
	seed := make([]byte, secp256k1PrivateKeySize)
	if _, err := io.ReadFull(randSource(), seed); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	priv, _ := btcec.PrivKeyFromBytes(seed)
	return priv, nil
}

// wrapLayer seals the session key under a fresh encapsulation to pub.
// Returns the encapsulation and nonce || sealed key || tag.
func wrapLayer(s Scheme, pub, sessionKey []byte) ([]byte, []byte, error) {
	ex, err := exchangerFor(s)
	if err != nil {
		return nil, nil, err
	}

	enc, shared, err := ex.encapsulate(pub)
	if err != nil {
		return nil, nil, fmt.Errorf("encapsulate: %w", err)
	}

	key, err := deriveLayerKey(shared, enc)
	if err != nil {
		return nil, nil, fmt.Errorf("derive key: %w", err)
	}

	sealed, err := sealGCM(key, sessionKey, []byte(s))
	if err != nil {
		return nil, nil, err
	}
	return enc, sealed, nil
}

// unwrapLayer reverses wrapLayer. Every failure maps to ErrLayerMismatch.
func unwrapLayer(s Scheme, priv, enc, sealed []byte) ([]byte, error) {
	ex, err := exchangerFor(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayerMismatch, err)
	}

	shared, err := ex.decapsulate(priv, enc)
	if err != nil {
		return nil, fmt.Errorf("%w: decapsulate: %v", ErrLayerMismatch, err)
	}

	key, err := deriveLayerKey(shared, enc)
	if err != nil {
		return nil, fmt.Errorf("%w: derive key: %v", ErrLayerMismatch, err)
	}

	sessionKey, err := openGCM(key, sealed, []byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayerMismatch, err)
	}
	return sessionKey, nil
}
