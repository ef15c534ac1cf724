// Command testhelper exposes the envelope and receipt formats over JSON on
// stdin/stdout so other implementations can check interoperability.
//
// Commands:
//
//	testhelper generate-keys [scheme] [bits]  prints private/public PEM
//	testhelper seal                           {publicKey, payload} -> {frame, digest}
//	testhelper open                           {privateKey, frame} -> {payload}
//	testhelper inspect-receipt <path>         prints a validated receipt
//
// Payloads and frames are standard base64.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	kriptografi "github.com/Alfariz11/Kriptografi"
	"github.com/Alfariz11/Kriptografi/internal/crypto"
)

// Config holds the streams the helper talks to.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config bound to the process streams.
func DefaultConfig() Config {
	return Config{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

var errUsage = errors.New("usage: testhelper <generate-keys|seal|open|inspect-receipt> [args]")

// KeysOutput is printed by generate-keys.
type KeysOutput struct {
	Scheme     string `json:"scheme,omitempty"`
	Bits       int    `json:"bits"`
	PrivateKey string `json:"privateKey"`
	PublicKey  string `json:"publicKey"`
}

// SealInput is read by seal.
type SealInput struct {
	PublicKey string `json:"publicKey"`
	Payload   string `json:"payload"`
	Integrity *bool  `json:"integrity,omitempty"`
}

// FrameOutput is printed by seal.
type FrameOutput struct {
	Frame  string `json:"frame"`
	Digest string `json:"digest"`
}

// OpenInput is read by open.
type OpenInput struct {
	PrivateKey string `json:"privateKey"`
	Frame      string `json:"frame"`
}

// PayloadOutput is printed by open.
type PayloadOutput struct {
	Payload string `json:"payload"`
}

func run(args []string, cfg Config) error {
	if len(args) < 2 {
		return errUsage
	}

	switch args[1] {
	case "generate-keys":
		return generateKeys(args[2:], cfg)
	case "seal":
		return seal(cfg)
	case "open":
		return open(cfg)
	case "inspect-receipt":
		if len(args) < 3 {
			return errors.New("usage: testhelper inspect-receipt <path>")
		}
		return inspectReceipt(args[2], cfg)
	default:
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

func generateKeys(args []string, cfg Config) error {
	scheme := kriptografi.SchemeNone
	bits := kriptografi.DefaultKeyBits

	if len(args) > 0 {
		s, err := kriptografi.ParseScheme(args[0])
		if err != nil {
			return err
		}
		scheme = s
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid bits %q: %w", args[1], err)
		}
		bits = n
	}

	kp, err := kriptografi.GenerateKeyPair(bits, scheme)
	if err != nil {
		return fmt.Errorf("generate keys: %w", err)
	}

	privText, err := kp.ExportPrivatePEM()
	if err != nil {
		return err
	}
	pubText, err := kp.ExportPublicPEM()
	if err != nil {
		return err
	}

	return json.NewEncoder(cfg.Stdout).Encode(KeysOutput{
		Scheme:     string(scheme),
		Bits:       bits,
		PrivateKey: privText,
		PublicKey:  pubText,
	})
}

func seal(cfg Config) error {
	var in SealInput
	if err := decodeInput(cfg.Stdin, &in); err != nil {
		return err
	}

	kp, err := kriptografi.LoadKey(in.PublicKey, kriptografi.RolePublic)
	if err != nil {
		return fmt.Errorf("load public key: %w", err)
	}

	payload, err := crypto.FromBase64(in.Payload)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	var opts []crypto.SealOption
	if in.Integrity != nil {
		opts = append(opts, crypto.WithIntegrity(*in.Integrity))
	}

	frame, err := crypto.Seal(payload, kp.Public, opts...)
	if err != nil {
		return fmt.Errorf("seal: %w", err)
	}

	raw, err := frame.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	return json.NewEncoder(cfg.Stdout).Encode(FrameOutput{
		Frame:  frame.String(),
		Digest: kriptografi.DigestHex(raw),
	})
}

func open(cfg Config) error {
	var in OpenInput
	if err := decodeInput(cfg.Stdin, &in); err != nil {
		return err
	}

	kp, err := kriptografi.LoadKey(in.PrivateKey, kriptografi.RolePrivate)
	if err != nil {
		return fmt.Errorf("load private key: %w", err)
	}

	frame, err := crypto.ParseFrame(in.Frame)
	if err != nil {
		return fmt.Errorf("parse frame: %w", err)
	}

	payload, err := crypto.Open(frame, kp.Private)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	return json.NewEncoder(cfg.Stdout).Encode(PayloadOutput{Payload: crypto.ToBase64(payload)})
}

func inspectReceipt(path string, cfg Config) error {
	receipt, err := kriptografi.ReadReceiptFile(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cfg.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(receipt)
}

func decodeInput(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	return nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
