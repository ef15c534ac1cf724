package kriptografi

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Alfariz11/Kriptografi/internal/crypto"
	"github.com/Alfariz11/Kriptografi/internal/fec"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvWavelet   = "KRIPTOGRAFI_WAVELET"
	EnvLevel     = "KRIPTOGRAFI_LEVEL"
	EnvAlpha     = "KRIPTOGRAFI_ALPHA"
	EnvKeyBits   = "KRIPTOGRAFI_KEY_BITS"
	EnvExchange  = "KRIPTOGRAFI_EXCHANGE"
	EnvIntegrity = "KRIPTOGRAFI_INTEGRITY"
	EnvFEC       = "KRIPTOGRAFI_FEC"
	EnvLogLevel  = "KRIPTOGRAFI_LOG_LEVEL"
)

// ConfigFromEnv builds options from KRIPTOGRAFI_* variables. Values in the
// process environment win over values in the dotenv files; with no files,
// ".env" in the working directory is tried. Missing files are skipped.
//
// Example .env:
//
//	KRIPTOGRAFI_WAVELET=db2
//	KRIPTOGRAFI_ALPHA=0.002
//	KRIPTOGRAFI_EXCHANGE=X25519
//	KRIPTOGRAFI_FEC=repetition-3
//	KRIPTOGRAFI_LOG_LEVEL=debug
func ConfigFromEnv(files ...string) ([]Option, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	fileEnv := map[string]string{}
	for _, file := range files {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, file, err)
		}
		for k, v := range values {
			if _, seen := fileEnv[k]; !seen {
				fileEnv[k] = v
			}
		}
	}

	return optionsFromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	})
}

func optionsFromLookup(lookup func(string) (string, bool)) ([]Option, error) {
	var opts []Option

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvWavelet); ok {
		opts = append(opts, WithWavelet(v))
	}

	if v, ok := get(EnvLevel); ok {
		level, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvLevel, v, err)
		}
		opts = append(opts, WithLevel(level))
	}

	if v, ok := get(EnvAlpha); ok {
		alpha, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvAlpha, v, err)
		}
		opts = append(opts, WithAlpha(alpha))
	}

	if v, ok := get(EnvKeyBits); ok {
		keyBits, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvKeyBits, v, err)
		}
		opts = append(opts, WithKeyBits(keyBits))
	}

	if v, ok := get(EnvExchange); ok {
		scheme, err := crypto.ParseScheme(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvExchange, err)
		}
		opts = append(opts, WithExchangeScheme(scheme))
	}

	if v, ok := get(EnvIntegrity); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvIntegrity, v, err)
		}
		opts = append(opts, WithIntegrity(enabled))
	}

	if v, ok := get(EnvFEC); ok && v != "none" {
		corrector, err := fec.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvFEC, err)
		}
		opts = append(opts, WithCorrector(corrector))
	}

	if v, ok := get(EnvLogLevel); ok {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvLogLevel, v, err)
		}
		handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		opts = append(opts, WithLogger(slog.New(handler)))
	}

	return opts, nil
}
