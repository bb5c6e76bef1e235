package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWaveform(t *testing.T) {
	_, err := NewWaveform([]float64{0, 1}, 0)
	assert.Error(t, err)

	_, err = NewWaveform(nil, -8000)
	assert.Error(t, err)

	wf, err := NewWaveform(nil, 16000)
	require.NoError(t, err)
	assert.Equal(t, 0, wf.Len())
	assert.Equal(t, 0.0, wf.Seconds())
}

func TestWaveformDuration(t *testing.T) {
	wf, err := NewWaveform(make([]float64, 24000), 16000)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, wf.Seconds(), 1e-12)
	assert.Equal(t, 1500*time.Millisecond, wf.Duration())
}

func TestMono(t *testing.T) {
	stereo := []float64{1, 0, 0.5, 0.5, -1, 1}
	assert.Equal(t, []float64{0.5, 0.5, 0}, Mono(stereo, 2))

	mono := []float64{0.1, 0.2}
	out := Mono(mono, 1)
	assert.Equal(t, mono, out)
	out[0] = 9
	assert.Equal(t, 0.1, mono[0], "Mono must copy single-channel input")

	// trailing partial frame is dropped
	assert.Equal(t, []float64{0.5}, Mono([]float64{1, 0, 1}, 2))
}
