package kriptografi

import (
	"fmt"
	"slices"
)

// Audio is an in-memory multichannel sample array. Samples are indexed
// [frame][channel]; every frame should have the same number of channels.
type Audio struct {
	Samples    [][]float64
	SampleRate int
}

// AudioReader loads audio from storage. Implementations live outside this
// package.
type AudioReader interface {
	Read(path string) (*Audio, error)
}

// AudioWriter persists audio to storage. Implementations live outside this
// package.
type AudioWriter interface {
	Write(path string, audio *Audio) error
}

// NewMonoAudio wraps a single-channel signal.
func NewMonoAudio(signal []float64, sampleRate int) *Audio {
	samples := make([][]float64, len(signal))
	for i, v := range signal {
		samples[i] = []float64{v}
	}
	return &Audio{Samples: samples, SampleRate: sampleRate}
}

// Frames returns the number of sample frames.
func (a *Audio) Frames() int {
	if a == nil {
		return 0
	}
	return len(a.Samples)
}

// Channels returns the channel count of the first frame.
func (a *Audio) Channels() int {
	if a == nil || len(a.Samples) == 0 {
		return 0
	}
	return len(a.Samples[0])
}

// Channel returns a copy of channel ch.
func (a *Audio) Channel(ch int) ([]float64, error) {
	if ch < 0 || ch >= a.Channels() {
		return nil, fmt.Errorf("%w: channel %d of %d", ErrShapeMismatch, ch, a.Channels())
	}
	out := make([]float64, len(a.Samples))
	for i, frame := range a.Samples {
		if ch >= len(frame) {
			return nil, fmt.Errorf("%w: frame %d has %d channels", ErrShapeMismatch, i, len(frame))
		}
		out[i] = frame[ch]
	}
	return out, nil
}

// Clone returns a deep copy of a.
func (a *Audio) Clone() *Audio {
	if a == nil {
		return nil
	}
	samples := make([][]float64, len(a.Samples))
	for i, frame := range a.Samples {
		samples[i] = slices.Clone(frame)
	}
	return &Audio{Samples: samples, SampleRate: a.SampleRate}
}

func (a *Audio) validate() error {
	if a == nil || len(a.Samples) == 0 {
		return fmt.Errorf("%w: empty audio", ErrShapeMismatch)
	}
	channels := len(a.Samples[0])
	if channels == 0 {
		return fmt.Errorf("%w: audio has no channels", ErrShapeMismatch)
	}
	for i, frame := range a.Samples {
		if len(frame) != channels {
			return fmt.Errorf("%w: frame %d has %d channels, want %d", ErrShapeMismatch, i, len(frame), channels)
		}
	}
	return nil
}
