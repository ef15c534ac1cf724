// Package kriptografi hides encrypted payloads in audio.
//
// A payload is sealed with a hybrid envelope (AES-128-CBC under a fresh
// session key, wrapped with RSA-OAEP and optionally with a second
// key-exchange layer), framed with a 32-bit length header and written into
// the finest wavelet detail coefficients of the first audio channel by
// quantization index modulation. Extraction mirrors each step.
//
// Basic usage:
//
//	p, err := kriptografi.New(kriptografi.WithAlpha(0.001))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	keys, err := p.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stego, receipt, err := p.EmbedPayload(carrier, []byte("secret"), keys.Public)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	payload, err := p.ExtractPayload(stego, keys.Private, receipt)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The [Receipt] returned by EmbedPayload carries the bit count and codec
// parameters needed for extraction and must travel with the stego audio.
// Failures are reported as [*StageError] values naming the stage that
// failed; the crypto sentinels [ErrKeyMismatch], [ErrLayerMismatch] and
// [ErrCorruptedPayload] stay distinguishable through errors.Is.
//
// Audio file I/O is left to callers through [AudioReader] and [AudioWriter].
package kriptografi
