package kriptografi

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Alfariz11/Kriptografi/internal/bits"
	"github.com/Alfariz11/Kriptografi/internal/crypto"
	"github.com/Alfariz11/Kriptografi/internal/fec"
	"github.com/Alfariz11/Kriptografi/internal/wavelet"
)

const (
	opEmbed   = "embed"
	opExtract = "extract"
)

// Pipeline seals payloads and hides them in audio, and reverses the process.
// A Pipeline is immutable after New and safe for concurrent use.
type Pipeline struct {
	cfg *pipelineConfig
}

// New creates a pipeline with the given options.
func New(opts ...Option) (*Pipeline, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Pipeline{cfg: cfg}, nil
}

// Wavelet returns the configured wavelet name.
func (p *Pipeline) Wavelet() string { return p.cfg.wavelet }

// Level returns the configured decomposition level.
func (p *Pipeline) Level() int { return p.cfg.level }

// Alpha returns the configured embedding strength.
func (p *Pipeline) Alpha() float64 { return p.cfg.alpha }

// GenerateKeyPair creates a key pair with the configured RSA size and
// exchange scheme.
func (p *Pipeline) GenerateKeyPair() (*KeyPair, error) {
	kp, err := crypto.GenerateKeyPair(p.cfg.keyBits, p.cfg.scheme)
	if err != nil {
		return nil, stageErr("generate", StageCrypto, err)
	}
	p.cfg.logger.Debug("generated key pair", "bits", p.cfg.keyBits, "scheme", string(p.cfg.scheme))
	return kp, nil
}

// Capacity returns the number of bits the carrier can hold with the
// configured wavelet and level, excluding the edge guard.
func (p *Pipeline) Capacity(carrier *Audio) (int, error) {
	if err := carrier.validate(); err != nil {
		return 0, stageErr("capacity", StageCodec, err)
	}
	coeffs, err := wavelet.Decompose(carrier.Samples, p.cfg.wavelet, p.cfg.level)
	if err != nil {
		return 0, stageErr("capacity", StageCodec, err)
	}
	guard, err := wavelet.EdgeGuard(p.cfg.wavelet)
	if err != nil {
		return 0, stageErr("capacity", StageCodec, err)
	}
	return usableCapacity(coeffs, guard), nil
}

// FrameCapacity returns the largest serialized frame, in bytes, that fits in
// the carrier once the length header and the parity of the configured
// corrector are added. It is 0 when not even an empty frame fits.
func (p *Pipeline) FrameCapacity(carrier *Audio) (int, error) {
	usable, err := p.Capacity(carrier)
	if err != nil {
		return 0, err
	}
	fits := func(frameBytes int) bool {
		block := headerSize + frameBytes
		if p.cfg.corrector != nil {
			block = p.cfg.corrector.Overhead(block)
		}
		return 8*block <= usable
	}
	return max(0, sort.Search(usable/8+1, func(n int) bool { return !fits(n) })-1), nil
}

// usableCapacity is the finest-band capacity left after reserving guard
// coefficients at both ends.
func usableCapacity(coeffs *wavelet.Coefficients, guard int) int {
	return max(0, coeffs.Capacity()-2*guard)
}

// EmbedPayload seals payload for pub and hides it in the first channel of
// carrier. The carrier is not modified. The returned receipt must accompany
// the stego audio for extraction.
//
// The embedding process:
//  1. Seal the payload into a frame.
//  2. Prefix the serialized frame with its 32-bit length in bits.
//  3. Apply error correction, if configured.
//  4. Expand to bits and write them into the finest detail band by QIM,
//     after a run of zero guard bits that keeps the block off the band edge.
//  5. Reconstruct the audio.
func (p *Pipeline) EmbedPayload(carrier *Audio, payload []byte, pub *PublicKey) (*Audio, *Receipt, error) {
	log := p.cfg.logger.With("op", opEmbed)

	if err := carrier.validate(); err != nil {
		return nil, nil, stageErr(opEmbed, StageCodec, err)
	}

	var sealOpts []crypto.SealOption
	if !p.cfg.integrity {
		sealOpts = append(sealOpts, crypto.WithIntegrity(false))
	}

	frame, err := crypto.Seal(payload, pub, sealOpts...)
	if err != nil {
		return nil, nil, stageErr(opEmbed, StageCrypto, err)
	}

	raw, err := frame.MarshalBinary()
	if err != nil {
		return nil, nil, stageErr(opEmbed, StageCrypto, err)
	}

	block, err := frameBlock(raw)
	if err != nil {
		return nil, nil, stageErr(opEmbed, StageFraming, err)
	}

	correctorName := ""
	if p.cfg.corrector != nil {
		block = p.cfg.corrector.Encode(block)
		correctorName = p.cfg.corrector.Name()
	}

	stream := bits.ToBits(block)
	log.Debug("sealed payload",
		"payload_bytes", len(payload),
		"frame_bytes", len(raw),
		"bits", len(stream),
		"corrector", correctorName,
	)

	coeffs, err := wavelet.Decompose(carrier.Samples, p.cfg.wavelet, p.cfg.level)
	if err != nil {
		return nil, nil, stageErr(opEmbed, StageCodec, err)
	}

	guard, err := wavelet.EdgeGuard(p.cfg.wavelet)
	if err != nil {
		return nil, nil, stageErr(opEmbed, StageCodec, err)
	}
	if usable := usableCapacity(coeffs, guard); len(stream) > usable {
		return nil, nil, stageErr(opEmbed, StageCapacity, &CapacityError{
			Capacity:  usable,
			Requested: len(stream),
		})
	}

	embedded, err := wavelet.Embed(coeffs, append(make([]byte, guard), stream...), p.cfg.alpha)
	if err != nil {
		if errors.Is(err, ErrCapacityExceeded) {
			return nil, nil, stageErr(opEmbed, StageCapacity, err)
		}
		return nil, nil, stageErr(opEmbed, StageCodec, err)
	}

	samples, err := wavelet.Reconstruct(embedded, carrier.Samples)
	if err != nil {
		return nil, nil, stageErr(opEmbed, StageCodec, err)
	}

	log.Debug("embedded bitstream",
		"wavelet", p.cfg.wavelet,
		"level", p.cfg.level,
		"capacity", usableCapacity(coeffs, guard),
		"frames", len(samples),
	)

	exchange := ""
	if len(frame.Encapsulation) > 0 {
		exchange = string(pub.Scheme)
	}

	receipt := &Receipt{
		Version:     ReceiptVersion,
		BitCount:    len(stream),
		Wavelet:     p.cfg.wavelet,
		Level:       p.cfg.level,
		Alpha:       p.cfg.alpha,
		Exchange:    exchange,
		Corrector:   correctorName,
		FrameDigest: crypto.DigestHex(raw),
		CreatedAt:   time.Now().UTC(),
	}

	return &Audio{Samples: samples, SampleRate: carrier.SampleRate}, receipt, nil
}

// ExtractPayload recovers the payload hidden by EmbedPayload. The wavelet,
// level, alpha, bit count and error correction are taken from receipt.
//
// Errors identify the failing stage (see StageError) and match the crypto
// sentinels: ErrKeyMismatch for a wrong private key, ErrLayerMismatch for a
// wrong or missing exchange key and ErrCorruptedPayload for damaged data.
func (p *Pipeline) ExtractPayload(stego *Audio, priv *PrivateKey, receipt *Receipt) ([]byte, error) {
	log := p.cfg.logger.With("op", opExtract)

	if err := receipt.Validate(); err != nil {
		return nil, stageErr(opExtract, StageFraming, err)
	}

	corrector, err := fec.Parse(receipt.Corrector)
	if err != nil {
		return nil, stageErr(opExtract, StageFraming, err)
	}

	if err := stego.validate(); err != nil {
		return nil, stageErr(opExtract, StageCodec, err)
	}

	coeffs, err := wavelet.Decompose(stego.Samples, receipt.Wavelet, receipt.Level)
	if err != nil {
		return nil, stageErr(opExtract, StageCodec, err)
	}

	guard, err := wavelet.EdgeGuard(receipt.Wavelet)
	if err != nil {
		return nil, stageErr(opExtract, StageCodec, err)
	}
	if usable := usableCapacity(coeffs, guard); usable < receipt.BitCount {
		return nil, stageErr(opExtract, StageCapacity, &CapacityError{
			Capacity:  usable,
			Requested: receipt.BitCount,
		})
	}

	stream, err := wavelet.Extract(coeffs, guard+receipt.BitCount, receipt.Alpha)
	if err != nil {
		return nil, stageErr(opExtract, StageCodec, err)
	}
	stream = stream[guard:]

	block, err := bits.ToBytes(stream)
	if err != nil {
		return nil, stageErr(opExtract, StageFraming, err)
	}

	if corrector != nil {
		block, err = corrector.Decode(block)
		if err != nil {
			return nil, stageErr(opExtract, StageFraming, err)
		}
	}

	raw, err := unframeBlock(block)
	if err != nil {
		return nil, stageErr(opExtract, StageFraming, err)
	}

	if receipt.FrameDigest != "" && crypto.DigestHex(raw) != receipt.FrameDigest {
		log.Warn("frame digest differs from receipt", "frame_bytes", len(raw))
	}

	var frame crypto.Frame
	if err := frame.UnmarshalBinary(raw); err != nil {
		return nil, stageErr(opExtract, StageFraming, err)
	}

	payload, err := crypto.Open(&frame, priv)
	if err != nil {
		return nil, stageErr(opExtract, StageCrypto, err)
	}

	log.Debug("extracted payload",
		"bits", receipt.BitCount,
		"payload_bytes", len(payload),
	)

	return payload, nil
}

// String describes the pipeline configuration.
func (p *Pipeline) String() string {
	corrector := "none"
	if p.cfg.corrector != nil {
		corrector = p.cfg.corrector.Name()
	}
	return fmt.Sprintf("Pipeline{wavelet=%s level=%d alpha=%g corrector=%s}",
		p.cfg.wavelet, p.cfg.level, p.cfg.alpha, corrector)
}
