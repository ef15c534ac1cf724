// Package crypto implements the layered hybrid envelope that protects a payload
// before it is embedded in audio.
//
// # Algorithm Suite
//
//   - AES-128-CBC with PKCS#7 padding: bulk encryption under a fresh 16-byte
//     session key and random IV for every Seal call.
//
//   - RSA-OAEP with SHA-256: wraps the session key for the recipient. The
//     wrapped key is exactly one RSA modulus long.
//
//   - HMAC-SHA-256 (optional, on by default): integrity tag over IV and
//     ciphertext, keyed by HKDF-SHA-512 of the session key.
//
//   - Exchange layer (optional): the session key is sealed with AES-256-GCM
//     under a key derived with HKDF-SHA-512 from a KEM shared secret before RSA
//     wrapping. Supported schemes are DHKEM(X25519), DHKEM(P-256), ML-KEM-768
//     and secp256k1 ECDH.
//
// # Failure Model
//
// Open reports each layer separately so callers can tell a wrong key from a
// damaged payload:
//
//	plaintext, err := crypto.Open(frame, keypair.Private)
//	switch {
//	case errors.Is(err, crypto.ErrKeyMismatch):      // RSA unwrap failed
//	case errors.Is(err, crypto.ErrLayerMismatch):    // exchange layer failed
//	case errors.Is(err, crypto.ErrCorruptedPayload): // tag or padding failed
//	}
//
// # Key Management
//
// Use [GenerateKeyPair] to create key material and [LoadKey] to parse PEM text.
// The caller states the expected [KeyRole]; it is never inferred. Key pairs are
// plain values passed to every [Seal] and [Open] call; the package holds no
// key state.
//
// # Frames
//
// A [Frame] serializes to a compact binary form ([Frame.MarshalBinary]) that
// the bit codec turns into the embedded bitstream, or to standard base64
// ([Frame.String]) for text transport.
package crypto
