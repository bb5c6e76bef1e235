package audio

import (
	"fmt"
	"time"
)

// Waveform is a decoded single-channel signal
// Samples are expected to be normalized to [-1, 1]
type Waveform struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
}

// NewWaveform validates the sample rate and wraps the samples.
// An empty sample slice is accepted; the analyzers fall back to defaults.
func NewWaveform(samples []float64, sampleRate int) (*Waveform, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	return &Waveform{
		Samples:    samples,
		SampleRate: sampleRate,
	}, nil
}

// Len returns the number of samples
func (w *Waveform) Len() int {
	return len(w.Samples)
}

// Seconds returns the waveform length in seconds
func (w *Waveform) Seconds() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Duration returns the waveform length as a time.Duration
func (w *Waveform) Duration() time.Duration {
	return time.Duration(w.Seconds() * float64(time.Second))
}

// Mono averages interleaved frames of numChannels channels into one channel
func Mono(interleaved []float64, numChannels int) []float64 {
	if numChannels <= 1 {
		out := make([]float64, len(interleaved))
		copy(out, interleaved)
		return out
	}

	frames := len(interleaved) / numChannels
	out := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for c := range numChannels {
			sum += interleaved[i*numChannels+c]
		}
		out[i] = sum / float64(numChannels)
	}
	return out
}
