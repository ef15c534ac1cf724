package kriptografi

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Alfariz11/Kriptografi/internal/crypto"
	"github.com/Alfariz11/Kriptografi/internal/fec"
	"github.com/Alfariz11/Kriptografi/internal/wavelet"
)

const (
	// DefaultWavelet is the wavelet used when none is configured.
	DefaultWavelet = "db2"
	// DefaultLevel is the default decomposition depth.
	DefaultLevel = 1
	// DefaultAlpha is the default QIM embedding strength.
	DefaultAlpha = 0.001
	// DefaultKeyBits is the default RSA modulus size for generated keys.
	DefaultKeyBits = crypto.DefaultRSABits
)

// pipelineConfig holds configuration for the pipeline.
type pipelineConfig struct {
	wavelet   string
	level     int
	alpha     float64
	keyBits   int
	scheme    crypto.Scheme
	integrity bool
	corrector fec.Corrector
	logger    *slog.Logger
}

func defaultConfig() *pipelineConfig {
	return &pipelineConfig{
		wavelet:   DefaultWavelet,
		level:     DefaultLevel,
		alpha:     DefaultAlpha,
		keyBits:   DefaultKeyBits,
		integrity: true,
	}
}

// Option configures the pipeline.
type Option func(*pipelineConfig)

// WithWavelet sets the wavelet basis: haar, db1, db2, db3 or db4.
// Default: db2
func WithWavelet(name string) Option {
	return func(c *pipelineConfig) {
		c.wavelet = name
	}
}

// WithLevel sets the decomposition level.
// Default: 1
func WithLevel(level int) Option {
	return func(c *pipelineConfig) {
		c.level = level
	}
}

// WithAlpha sets the QIM embedding strength. Larger values survive more
// distortion but are more audible.
// Default: 0.001
func WithAlpha(alpha float64) Option {
	return func(c *pipelineConfig) {
		c.alpha = alpha
	}
}

// WithKeyBits sets the RSA modulus size used by GenerateKeyPair.
// Default: 2048
func WithKeyBits(bits int) Option {
	return func(c *pipelineConfig) {
		c.keyBits = bits
	}
}

// WithExchangeScheme enables the exchange layer for keys generated by the
// pipeline. Sealing follows the recipient's public key: a key without an
// exchange part is sealed with RSA only.
// Default: SchemeNone
func WithExchangeScheme(scheme Scheme) Option {
	return func(c *pipelineConfig) {
		c.scheme = scheme
	}
}

// WithIntegrity enables or disables the HMAC-SHA-256 frame tag.
// Default: true
func WithIntegrity(enabled bool) Option {
	return func(c *pipelineConfig) {
		c.integrity = enabled
	}
}

// WithCorrector wraps the framed payload in forward error correction before
// embedding. nil disables correction.
// Default: none
func WithCorrector(corrector Corrector) Option {
	return func(c *pipelineConfig) {
		c.corrector = corrector
	}
}

// WithLogger sets the structured logger. Pipeline steps log at debug level.
// Default: logs are discarded
func WithLogger(logger *slog.Logger) Option {
	return func(c *pipelineConfig) {
		c.logger = logger
	}
}

func (c *pipelineConfig) validate() error {
	f, err := wavelet.Lookup(c.wavelet)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.wavelet = f.Name

	if c.level < 1 {
		return fmt.Errorf("%w: level must be >= 1, got %d", ErrInvalidConfig, c.level)
	}
	if !(c.alpha > 0) || math.IsInf(c.alpha, 0) {
		return fmt.Errorf("%w: %w: %v", ErrInvalidConfig, ErrInvalidAlpha, c.alpha)
	}
	if c.keyBits < crypto.MinRSABits {
		return fmt.Errorf("%w: key bits must be >= %d, got %d", ErrInvalidConfig, crypto.MinRSABits, c.keyBits)
	}
	if !c.scheme.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnsupportedScheme, string(c.scheme))
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return nil
}
