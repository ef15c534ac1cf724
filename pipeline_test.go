package kriptografi

import (
	"bytes"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
)

const testKeyBits = 1024

var (
	pipelineKeysMu sync.Mutex
	pipelineKeys   = map[Scheme]*KeyPair{}
)

// testKeys returns a small key pair for scheme, generated once per test binary.
func testKeys(t *testing.T, scheme Scheme) *KeyPair {
	t.Helper()

	pipelineKeysMu.Lock()
	defer pipelineKeysMu.Unlock()

	if kp, ok := pipelineKeys[scheme]; ok {
		return kp
	}
	kp, err := GenerateKeyPair(testKeyBits, scheme)
	if err != nil {
		t.Fatalf("GenerateKeyPair(%q) error = %v", scheme, err)
	}
	pipelineKeys[scheme] = kp
	return kp
}

// sineCarrier returns one second of a 440 Hz tone with the given channel count.
func sineCarrier(frames, channels int) *Audio {
	samples := make([][]float64, frames)
	for i := range samples {
		frame := make([]float64, channels)
		for ch := range frame {
			frame[ch] = 0.3 * math.Sin(2*math.Pi*440*float64(i)/44100+float64(ch))
		}
		samples[i] = frame
	}
	return &Audio{Samples: samples, SampleRate: 44100}
}

func newTestPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	p, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func roundTrip(t *testing.T, p *Pipeline, carrier *Audio, payload []byte, kp *KeyPair) ([]byte, *Receipt) {
	t.Helper()

	stego, receipt, err := p.EmbedPayload(carrier, payload, kp.Public)
	if err != nil {
		t.Fatalf("EmbedPayload() error = %v", err)
	}
	got, err := p.ExtractPayload(stego, kp.Private, receipt)
	if err != nil {
		t.Fatalf("ExtractPayload() error = %v", err)
	}
	return got, receipt
}

func TestPipeline_RoundTrip(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	payload := []byte("the quick brown fox jumps over the lazy dog")

	tests := []struct {
		name string
		opts []Option
	}{
		{"default", nil},
		{"haar", []Option{WithWavelet("haar")}},
		{"db1", []Option{WithWavelet("db1")}},
		{"db3", []Option{WithWavelet("db3")}},
		{"db4", []Option{WithWavelet("db4")}},
		{"db2 level 3", []Option{WithLevel(3)}},
		{"strong alpha", []Option{WithAlpha(0.01)}},
		{"without integrity", []Option{WithIntegrity(false)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(t, tt.opts...)
			got, receipt := roundTrip(t, p, sineCarrier(44100, 1), payload, kp)

			if !bytes.Equal(got, payload) {
				t.Errorf("payload = %q, want %q", got, payload)
			}
			if receipt.Wavelet != p.Wavelet() || receipt.Level != p.Level() || receipt.Alpha != p.Alpha() {
				t.Errorf("receipt codec = %s/%d/%v, pipeline = %s", receipt.Wavelet, receipt.Level, receipt.Alpha, p)
			}
		})
	}
}

func TestPipeline_EmptyPayload(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	p := newTestPipeline(t)

	got, _ := roundTrip(t, p, sineCarrier(44100, 1), nil, kp)
	if len(got) != 0 {
		t.Errorf("payload = %v, want empty", got)
	}
}

func TestPipeline_BinaryPayload(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	p := newTestPipeline(t)

	rng := rand.New(rand.NewPCG(7, 11))
	payload := make([]byte, 1024)
	for i := range payload {
		payload[i] = byte(rng.UintN(256))
	}

	got, _ := roundTrip(t, p, sineCarrier(44100, 1), payload, kp)
	if !bytes.Equal(got, payload) {
		t.Error("binary payload did not survive the round trip")
	}
}

func TestPipeline_Receipt(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	p := newTestPipeline(t)

	_, receipt, err := p.EmbedPayload(sineCarrier(44100, 1), []byte("receipt"), kp.Public)
	if err != nil {
		t.Fatal(err)
	}

	if err := receipt.Validate(); err != nil {
		t.Errorf("receipt.Validate() error = %v", err)
	}
	if receipt.Version != ReceiptVersion {
		t.Errorf("Version = %d, want %d", receipt.Version, ReceiptVersion)
	}
	if len(receipt.FrameDigest) != 64 {
		t.Errorf("FrameDigest length = %d, want 64", len(receipt.FrameDigest))
	}
	if receipt.Exchange != "" {
		t.Errorf("Exchange = %q, want empty for an RSA-only key", receipt.Exchange)
	}
	if receipt.Corrector != "" {
		t.Errorf("Corrector = %q, want empty", receipt.Corrector)
	}
	if receipt.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestPipeline_PreservesShape(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	p := newTestPipeline(t)
	carrier := sineCarrier(44100, 2)
	original := carrier.Clone()

	stego, _, err := p.EmbedPayload(carrier, []byte("stereo"), kp.Public)
	if err != nil {
		t.Fatal(err)
	}

	if stego.Frames() != carrier.Frames() {
		t.Errorf("Frames() = %d, want %d", stego.Frames(), carrier.Frames())
	}
	if stego.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", stego.Channels())
	}
	if stego.SampleRate != carrier.SampleRate {
		t.Errorf("SampleRate = %d, want %d", stego.SampleRate, carrier.SampleRate)
	}

	var maxDiff float64
	for i := range stego.Samples {
		if stego.Samples[i][1] != carrier.Samples[i][1] {
			t.Fatalf("channel 1 changed at frame %d", i)
		}
		maxDiff = max(maxDiff, math.Abs(stego.Samples[i][0]-carrier.Samples[i][0]))
	}
	// QIM moves each coefficient by at most 2α.
	if maxDiff > 4*p.Alpha() {
		t.Errorf("max sample change = %v, want <= %v", maxDiff, 4*p.Alpha())
	}

	for i := range carrier.Samples {
		if carrier.Samples[i][0] != original.Samples[i][0] {
			t.Fatal("EmbedPayload modified the carrier")
		}
	}
}

func TestPipeline_ExchangeSchemes(t *testing.T) {
	schemes := []Scheme{SchemeX25519, SchemeP256, SchemeMLKEM768, SchemeSecp256k1}

	for _, scheme := range schemes {
		t.Run(string(scheme), func(t *testing.T) {
			kp := testKeys(t, scheme)
			p := newTestPipeline(t, WithExchangeScheme(scheme))
			payload := []byte("layered " + string(scheme))

			got, receipt := roundTrip(t, p, sineCarrier(44100, 1), payload, kp)
			if !bytes.Equal(got, payload) {
				t.Errorf("payload = %q, want %q", got, payload)
			}
			if receipt.Exchange != string(scheme) {
				t.Errorf("receipt.Exchange = %q, want %q", receipt.Exchange, scheme)
			}
		})
	}
}

func TestPipeline_WrongKey(t *testing.T) {
	p := newTestPipeline(t)
	sender := testKeys(t, SchemeNone)
	other := testKeys(t, SchemeX25519)

	stego, receipt, err := p.EmbedPayload(sineCarrier(44100, 1), []byte("secret"), sender.Public)
	if err != nil {
		t.Fatal(err)
	}

	_, err = p.ExtractPayload(stego, other.Private, receipt)
	if !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}
	if stage := StageOf(err); stage != StageCrypto {
		t.Errorf("StageOf() = %q, want crypto", stage)
	}
}

func TestPipeline_MissingExchangeKey(t *testing.T) {
	p := newTestPipeline(t)
	kp := testKeys(t, SchemeX25519)

	stego, receipt, err := p.EmbedPayload(sineCarrier(44100, 1), []byte("secret"), kp.Public)
	if err != nil {
		t.Fatal(err)
	}

	rsaOnly := &PrivateKey{RSA: kp.Private.RSA}
	_, err = p.ExtractPayload(stego, rsaOnly, receipt)
	if !errors.Is(err, ErrLayerMismatch) {
		t.Errorf("expected ErrLayerMismatch, got %v", err)
	}
}

func TestPipeline_CapacityExceeded(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	p := newTestPipeline(t)
	carrier := sineCarrier(2000, 1)

	capacity, err := p.Capacity(carrier)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = p.EmbedPayload(carrier, make([]byte, 512), kp.Public)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected *CapacityError, got %T", err)
	}
	if capErr.Capacity != capacity {
		t.Errorf("Capacity = %d, want %d", capErr.Capacity, capacity)
	}
	if capErr.Requested <= capacity {
		t.Errorf("Requested = %d, should exceed %d", capErr.Requested, capacity)
	}
	if stage := StageOf(err); stage != StageCapacity {
		t.Errorf("stage = %q, want capacity", stage)
	}
}

func TestPipeline_Capacity(t *testing.T) {
	p := newTestPipeline(t)

	// db2 level 1 on 44100 samples: 22051 coefficients less 3 guard bits at each end.
	got, err := p.Capacity(sineCarrier(44100, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got != 22045 {
		t.Errorf("Capacity() = %d, want 22045", got)
	}

	if _, err := p.Capacity(&Audio{}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestPipeline_FrameCapacity(t *testing.T) {
	rep, _ := NewRepetitionCorrector(3)
	rs, _ := NewReedSolomonCorrector(4, 8)

	// haar level 1 on 8000 samples leaves 3998 usable bits.
	tests := []struct {
		name string
		opts []Option
		want int
	}{
		// 8*(4+495) = 3992
		{"plain", nil, 495},
		// 3*8*(4+162) = 3984
		{"repetition-3", []Option{WithCorrector(rep)}, 162},
		// 8 shares of (4+4+240)/4 = 62 bytes, 3968 bits
		{"reedsolomon-4-8", []Option{WithCorrector(rs)}, 240},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(t, append([]Option{WithWavelet("haar")}, tt.opts...)...)

			got, err := p.FrameCapacity(sineCarrier(8000, 1))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("FrameCapacity() = %d, want %d", got, tt.want)
			}
		})
	}

	p := newTestPipeline(t, WithWavelet("haar"))
	got, err := p.FrameCapacity(sineCarrier(8, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("FrameCapacity() on a tiny carrier = %d, want 0", got)
	}

	if _, err := p.FrameCapacity(&Audio{}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestPipeline_ExtractShortCarrier(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	p := newTestPipeline(t)

	stego, receipt, err := p.EmbedPayload(sineCarrier(44100, 1), []byte("secret"), kp.Public)
	if err != nil {
		t.Fatal(err)
	}

	truncated := &Audio{Samples: stego.Samples[:1000], SampleRate: stego.SampleRate}
	_, err = p.ExtractPayload(truncated, kp.Private, receipt)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestPipeline_Corrector(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	rep, err := NewRepetitionCorrector(3)
	if err != nil {
		t.Fatal(err)
	}

	plain := newTestPipeline(t)
	protected := newTestPipeline(t, WithCorrector(rep), WithWavelet("db4"))
	payload := []byte("redundant")

	got, receipt := roundTrip(t, protected, sineCarrier(44100, 1), payload, kp)
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %q, want %q", got, payload)
	}
	if receipt.Corrector != "repetition-3" {
		t.Errorf("receipt.Corrector = %q, want repetition-3", receipt.Corrector)
	}

	_, plainReceipt, err := plain.EmbedPayload(sineCarrier(44100, 1), payload, kp.Public)
	if err != nil {
		t.Fatal(err)
	}
	if receipt.BitCount != 3*plainReceipt.BitCount {
		t.Errorf("BitCount = %d, want %d", receipt.BitCount, 3*plainReceipt.BitCount)
	}
}

func TestPipeline_CorrectorSurvivesFlips(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	rep, _ := NewRepetitionCorrector(3)
	p := newTestPipeline(t, WithCorrector(rep), WithAlpha(0.01))

	stego, receipt, err := p.EmbedPayload(sineCarrier(44100, 1), []byte("noisy channel"), kp.Public)
	if err != nil {
		t.Fatal(err)
	}

	// A spike on one sample flips one detail coefficient, which the
	// repetition code absorbs.
	stego.Samples[101][0] += 1.5 * p.Alpha()

	got, err := p.ExtractPayload(stego, kp.Private, receipt)
	if err != nil {
		t.Fatalf("ExtractPayload() error = %v", err)
	}
	if string(got) != "noisy channel" {
		t.Errorf("payload = %q", got)
	}
}

func TestPipeline_ReedSolomonSurvivesFlips(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	rs, err := NewReedSolomonCorrector(4, 8)
	if err != nil {
		t.Fatal(err)
	}
	p := newTestPipeline(t, WithCorrector(rs), WithAlpha(0.01))

	stego, receipt, err := p.EmbedPayload(sineCarrier(44100, 1), []byte("noisy channel"), kp.Public)
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Corrector != "reedsolomon-4-8" {
		t.Errorf("receipt corrector = %q", receipt.Corrector)
	}

	// Each spike flips one detail coefficient, so one symbol in each of two
	// shares is wrong and Berlekamp-Welch has to locate it.
	stego.Samples[101][0] += 1.5 * p.Alpha()
	stego.Samples[1701][0] += 1.5 * p.Alpha()

	got, err := p.ExtractPayload(stego, kp.Private, receipt)
	if err != nil {
		t.Fatalf("ExtractPayload() error = %v", err)
	}
	if string(got) != "noisy channel" {
		t.Errorf("payload = %q", got)
	}
}

func TestPipeline_TamperedCarrier(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	p := newTestPipeline(t)

	stego, receipt, err := p.EmbedPayload(sineCarrier(44100, 1), []byte("fragile"), kp.Public)
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewPCG(1, 2))
	for i := range stego.Samples {
		stego.Samples[i][0] += (rng.Float64() - 0.5) * 4 * p.Alpha()
	}

	if _, err := p.ExtractPayload(stego, kp.Private, receipt); err == nil {
		t.Error("expected an error after heavy noise")
	}
}

func TestPipeline_ReceiptMismatch(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	p := newTestPipeline(t)

	stego, receipt, err := p.EmbedPayload(sineCarrier(44100, 1), []byte("secret"), kp.Public)
	if err != nil {
		t.Fatal(err)
	}

	invalid := *receipt
	invalid.BitCount = 0
	_, err = p.ExtractPayload(stego, kp.Private, &invalid)
	if !errors.Is(err, ErrInvalidReceipt) {
		t.Errorf("expected ErrInvalidReceipt, got %v", err)
	}
	if stage := StageOf(err); stage != StageFraming {
		t.Errorf("stage = %q, want framing", stage)
	}

	if _, err := p.ExtractPayload(stego, kp.Private, nil); !errors.Is(err, ErrInvalidReceipt) {
		t.Errorf("nil receipt: expected ErrInvalidReceipt, got %v", err)
	}
}

func TestPipeline_InvalidCarrier(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	p := newTestPipeline(t)

	tests := []struct {
		name    string
		carrier *Audio
	}{
		{"nil", nil},
		{"empty", &Audio{}},
		{"ragged", &Audio{Samples: [][]float64{{0.1, 0.2}, {0.3}}}},
		{"too short for db2", NewMonoAudio([]float64{0.1, 0.2}, 8000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := p.EmbedPayload(tt.carrier, []byte("x"), kp.Public)
			if !errors.Is(err, ErrShapeMismatch) {
				t.Errorf("expected ErrShapeMismatch, got %v", err)
			}
			if stage := StageOf(err); stage != StageCodec {
				t.Errorf("stage = %q, want codec", stage)
			}
		})
	}
}

func TestPipeline_MissingPublicKey(t *testing.T) {
	p := newTestPipeline(t)

	_, _, err := p.EmbedPayload(sineCarrier(44100, 1), []byte("x"), nil)
	if err == nil {
		t.Fatal("expected error for nil public key")
	}
	if stage := StageOf(err); stage != StageCrypto {
		t.Errorf("stage = %q, want crypto", stage)
	}
}

func TestPipeline_GenerateKeyPair(t *testing.T) {
	p := newTestPipeline(t, WithKeyBits(testKeyBits), WithExchangeScheme(SchemeX25519))

	kp, err := p.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	if kp.Public.RSA.N.BitLen() != testKeyBits {
		t.Errorf("modulus bits = %d, want %d", kp.Public.RSA.N.BitLen(), testKeyBits)
	}
	if kp.Public.Scheme != SchemeX25519 {
		t.Errorf("scheme = %q, want X25519", kp.Public.Scheme)
	}
}

func TestPipeline_ConcurrentUse(t *testing.T) {
	kp := testKeys(t, SchemeNone)
	p := newTestPipeline(t)
	carrier := sineCarrier(44100, 1)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := range 4 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := []byte(strings.Repeat("x", i+1))
			stego, receipt, err := p.EmbedPayload(carrier, payload, kp.Public)
			if err != nil {
				errs <- err
				return
			}
			got, err := p.ExtractPayload(stego, kp.Private, receipt)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(got, payload) {
				errs <- errors.New("payload mismatch")
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestPipeline_String(t *testing.T) {
	rep, _ := NewRepetitionCorrector(5)
	p := newTestPipeline(t, WithCorrector(rep), WithWavelet("haar"))

	want := "Pipeline{wavelet=haar level=1 alpha=0.001 corrector=repetition-5}"
	if p.String() != want {
		t.Errorf("String() = %s, want %s", p.String(), want)
	}
}

func BenchmarkPipeline_EmbedExtract(b *testing.B) {
	kp, err := GenerateKeyPair(testKeyBits, SchemeNone)
	if err != nil {
		b.Fatal(err)
	}
	p, _ := New()
	carrier := sineCarrier(44100, 1)
	payload := []byte("benchmark payload")

	b.ResetTimer()
	for b.Loop() {
		stego, receipt, _ := p.EmbedPayload(carrier, payload, kp.Public)
		p.ExtractPayload(stego, kp.Private, receipt)
	}
}
