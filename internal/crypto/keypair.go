package crypto

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"
)

// KeyRole selects which half of a key pair a textual key encodes.
type KeyRole int

const (
	// RolePublic marks a public key.
	RolePublic KeyRole = iota
	// RolePrivate marks a private key.
	RolePrivate
)

func (r KeyRole) String() string {
	switch r {
	case RolePublic:
		return "public"
	case RolePrivate:
		return "private"
	default:
		return fmt.Sprintf("KeyRole(%d)", int(r))
	}
}

// PEM block types.
const (
	pemRSAPrivate      = "RSA PRIVATE KEY"
	pemPKCS8Private    = "PRIVATE KEY"
	pemPKIXPublic      = "PUBLIC KEY"
	pemRSAPublic       = "RSA PUBLIC KEY"
	pemExchangePublic  = "EXCHANGE PUBLIC KEY"
	pemExchangePrivate = "EXCHANGE PRIVATE KEY"
	pemSchemeHeader    = "Scheme"
)

// PublicKey is the recipient material needed to seal a frame.
type PublicKey struct {
	// RSA wraps the session key.
	RSA *rsa.PublicKey
	// Scheme is the exchange-layer scheme, SchemeNone when disabled.
	Scheme Scheme
	// Exchange is the packed exchange-layer public key.
	Exchange []byte
}

// PrivateKey is the recipient material needed to open a frame.
type PrivateKey struct {
	// RSA unwraps the session key.
	RSA *rsa.PrivateKey
	// Scheme is the exchange-layer scheme, SchemeNone when disabled.
	Scheme Scheme
	// Exchange is the packed exchange-layer private key.
	Exchange []byte
}

// KeyPair holds the asymmetric key material of one cryptographic session.
// Private is nil for a pair loaded with RolePublic.
type KeyPair struct {
	Public  *PublicKey
	Private *PrivateKey
}

// HasExchange reports whether the public key carries an exchange-layer key.
func (p *PublicKey) HasExchange() bool {
	return p != nil && p.Scheme != SchemeNone && len(p.Exchange) > 0
}

// HasExchange reports whether the private key carries an exchange-layer key.
func (p *PrivateKey) HasExchange() bool {
	return p != nil && p.Scheme != SchemeNone && len(p.Exchange) > 0
}

// GenerateKeyPair creates an RSA key pair of the given modulus size and,
// unless scheme is SchemeNone, an exchange-layer key pair.
func GenerateKeyPair(bits int, scheme Scheme) (*KeyPair, error) {
	if bits < MinRSABits {
		return nil, fmt.Errorf("%w: %d bits, minimum %d", ErrKeyTooSmall, bits, MinRSABits)
	}

	rsaKey, err := rsa.GenerateKey(randSource(), bits)
	if err != nil {
		return nil, fmt.Errorf("generate RSA key: %w", err)
	}

	kp := &KeyPair{
		Public:  &PublicKey{RSA: &rsaKey.PublicKey},
		Private: &PrivateKey{RSA: rsaKey},
	}

	if scheme == SchemeNone {
		return kp, nil
	}

	ex, err := exchangerFor(scheme)
	if err != nil {
		return nil, err
	}

	pub, priv, err := ex.generate()
	if err != nil {
		return nil, fmt.Errorf("generate %s key: %w", scheme, err)
	}

	kp.Public.Scheme, kp.Public.Exchange = scheme, pub
	kp.Private.Scheme, kp.Private.Exchange = scheme, priv
	return kp, nil
}

// LoadKey parses PEM text holding an RSA key of the given role and, optionally,
// an exchange-layer key block of the same role. A failure returns ErrKeyParse
// and a nil pair; nothing is modified.
func LoadKey(text string, role KeyRole) (*KeyPair, error) {
	if role != RolePublic && role != RolePrivate {
		return nil, fmt.Errorf("%w: %w: %v", ErrKeyParse, ErrInvalidKeyRole, role)
	}

	var (
		kp       *KeyPair
		scheme   Scheme
		exchange []byte
		rest     = []byte(strings.TrimSpace(text))
	)

	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}

		switch block.Type {
		case pemRSAPrivate, pemPKCS8Private:
			if role != RolePrivate {
				return nil, fmt.Errorf("%w: found %s block, want %s key", ErrKeyParse, block.Type, role)
			}
			priv, err := parseRSAPrivate(block)
			if err != nil {
				return nil, err
			}
			kp = &KeyPair{
				Public:  &PublicKey{RSA: &priv.PublicKey},
				Private: &PrivateKey{RSA: priv},
			}

		case pemPKIXPublic, pemRSAPublic:
			if role != RolePublic {
				return nil, fmt.Errorf("%w: found %s block, want %s key", ErrKeyParse, block.Type, role)
			}
			pub, err := parseRSAPublic(block)
			if err != nil {
				return nil, err
			}
			kp = &KeyPair{Public: &PublicKey{RSA: pub}}

		case pemExchangePublic, pemExchangePrivate:
			want := pemExchangePublic
			if role == RolePrivate {
				want = pemExchangePrivate
			}
			if block.Type != want {
				return nil, fmt.Errorf("%w: found %s block, want %s", ErrKeyParse, block.Type, want)
			}
			s, err := ParseScheme(block.Headers[pemSchemeHeader])
			if err != nil || s == SchemeNone {
				return nil, fmt.Errorf("%w: exchange block has unsupported scheme %q", ErrKeyParse, block.Headers[pemSchemeHeader])
			}
			scheme, exchange = s, block.Bytes

		default:
			return nil, fmt.Errorf("%w: unexpected PEM block %q", ErrKeyParse, block.Type)
		}
	}

	if kp == nil {
		return nil, fmt.Errorf("%w: no RSA %s key found", ErrKeyParse, role)
	}

	if scheme == SchemeNone {
		return kp, nil
	}

	ex, err := exchangerFor(scheme)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyParse, err)
	}

	if role == RolePrivate {
		pub, err := ex.publicFromPrivate(exchange)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid %s private key: %v", ErrKeyParse, scheme, err)
		}
		kp.Private.Scheme, kp.Private.Exchange = scheme, exchange
		kp.Public.Scheme, kp.Public.Exchange = scheme, pub
		return kp, nil
	}

	if err := ex.checkPublic(exchange); err != nil {
		return nil, fmt.Errorf("%w: invalid %s public key: %v", ErrKeyParse, scheme, err)
	}
	kp.Public.Scheme, kp.Public.Exchange = scheme, exchange
	return kp, nil
}

func parseRSAPrivate(block *pem.Block) (*rsa.PrivateKey, error) {
	if block.Type == pemRSAPrivate {
		priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyParse, err)
		}
		return priv, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyParse, err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: PKCS#8 key is %T, not RSA", ErrKeyParse, key)
	}
	return priv, nil
}

func parseRSAPublic(block *pem.Block) (*rsa.PublicKey, error) {
	if block.Type == pemRSAPublic {
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyParse, err)
		}
		return pub, nil
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyParse, err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: PKIX key is %T, not RSA", ErrKeyParse, key)
	}
	return pub, nil
}

// ExportPublicPEM encodes the public half as PEM text accepted by LoadKey
// with RolePublic.
func (k *KeyPair) ExportPublicPEM() (string, error) {
	if k == nil || k.Public == nil || k.Public.RSA == nil {
		return "", ErrMissingKey
	}

	der, err := x509.MarshalPKIXPublicKey(k.Public.RSA)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}

	var sb strings.Builder
	if err := pem.Encode(&sb, &pem.Block{Type: pemPKIXPublic, Bytes: der}); err != nil {
		return "", err
	}

	if k.Public.HasExchange() {
		block := &pem.Block{
			Type:    pemExchangePublic,
			Headers: map[string]string{pemSchemeHeader: string(k.Public.Scheme)},
			Bytes:   k.Public.Exchange,
		}
		if err := pem.Encode(&sb, block); err != nil {
			return "", err
		}
	}

	return sb.String(), nil
}

// ExportPrivatePEM encodes the private half as PEM text accepted by LoadKey
// with RolePrivate. The result contains secret key material.
func (k *KeyPair) ExportPrivatePEM() (string, error) {
	if k == nil || k.Private == nil || k.Private.RSA == nil {
		return "", ErrMissingKey
	}

	var sb strings.Builder
	block := &pem.Block{Type: pemRSAPrivate, Bytes: x509.MarshalPKCS1PrivateKey(k.Private.RSA)}
	if err := pem.Encode(&sb, block); err != nil {
		return "", err
	}

	if k.Private.HasExchange() {
		block := &pem.Block{
			Type:    pemExchangePrivate,
			Headers: map[string]string{pemSchemeHeader: string(k.Private.Scheme)},
			Bytes:   k.Private.Exchange,
		}
		if err := pem.Encode(&sb, block); err != nil {
			return "", err
		}
	}

	return sb.String(), nil
}

// ValidateKeyPair validates that a keypair has a usable structure.
// Returns true if all validations pass, false otherwise.
func ValidateKeyPair(kp *KeyPair) bool {
	if kp == nil || kp.Public == nil || kp.Public.RSA == nil {
		return false
	}

	if kp.Public.RSA.N == nil || kp.Public.RSA.N.BitLen() < MinRSABits {
		return false
	}

	if kp.Public.Scheme != SchemeNone {
		ex, err := exchangerFor(kp.Public.Scheme)
		if err != nil || ex.checkPublic(kp.Public.Exchange) != nil {
			return false
		}
	}

	if kp.Private == nil {
		return true
	}

	if kp.Private.RSA == nil || kp.Private.RSA.Validate() != nil {
		return false
	}

	if !kp.Private.RSA.PublicKey.Equal(kp.Public.RSA) {
		return false
	}

	if kp.Private.Scheme != kp.Public.Scheme {
		return false
	}

	if kp.Private.Scheme != SchemeNone {
		ex, _ := exchangerFor(kp.Private.Scheme)
		pub, err := ex.publicFromPrivate(kp.Private.Exchange)
		if err != nil || string(pub) != string(kp.Public.Exchange) {
			return false
		}
	}

	return true
}

// ModulusSize returns the RSA modulus size in bytes, which is also the length
// of every wrapped session key.
func (p *PublicKey) ModulusSize() int {
	if p == nil || p.RSA == nil {
		return 0
	}
	return p.RSA.Size()
}
