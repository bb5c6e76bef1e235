package analyzers

import (
	"math"

	"github.com/RyanBlaney/voice-detector/pkg/audio"
)

const (
	// EnergyFrameDuration is the length of an energy/ZCR analysis frame
	EnergyFrameDuration = 0.025

	// SilenceFraction of the mean frame RMS below which a frame is silent
	SilenceFraction = 0.1
)

// FrameStats holds short-time energy statistics of a waveform
type FrameStats struct {
	FrameSize        int       `json:"frame_size"`        // Samples per energy frame
	Energy           []float64 `json:"energy"`            // Per-frame RMS
	RMSEnergy        float64   `json:"rms_energy"`        // Mean of per-frame RMS
	EnergyVariance   float64   `json:"energy_variance"`   // Population variance of per-frame RMS
	SilenceThreshold float64   `json:"silence_threshold"` // 10% of RMSEnergy
	SilenceRatio     float64   `json:"silence_ratio"`     // Fraction of silent frames
	ZeroCrossingRate float64   `json:"zero_crossing_rate"`
}

// EnergyFrameSize returns the energy frame length in samples for sampleRate
func EnergyFrameSize(sampleRate int) int {
	return max(1, int(math.Round(float64(sampleRate)*EnergyFrameDuration)))
}

// ComputeFrameStats splits the waveform into contiguous 25 ms frames
// (trailing partial frame included) and computes energy statistics and the
// global zero-crossing rate.
func ComputeFrameStats(wf *audio.Waveform) *FrameStats {
	frameSize := EnergyFrameSize(wf.SampleRate)
	stats := &FrameStats{
		FrameSize:        frameSize,
		Energy:           FrameRMS(wf.Samples, frameSize),
		ZeroCrossingRate: ZeroCrossingRate(wf.Samples),
	}

	if len(stats.Energy) == 0 {
		return stats
	}

	stats.RMSEnergy = Mean(stats.Energy)
	stats.EnergyVariance = PopVariance(stats.Energy)
	stats.SilenceThreshold = stats.RMSEnergy * SilenceFraction

	silent := 0
	for _, e := range stats.Energy {
		if IsSilent(e, stats.SilenceThreshold) {
			silent++
		}
	}
	stats.SilenceRatio = float64(silent) / float64(len(stats.Energy))

	return stats
}

// IsSilent reports whether a frame energy is below the silence threshold.
// A zero-energy frame is always silent, so an all-zero signal (threshold 0)
// counts every frame.
func IsSilent(energy, threshold float64) bool {
	return energy < threshold || energy == 0
}

// FrameRMS returns the RMS of each contiguous frame of frameSize samples
func FrameRMS(samples []float64, frameSize int) []float64 {
	if frameSize <= 0 || len(samples) == 0 {
		return nil
	}

	out := make([]float64, 0, (len(samples)+frameSize-1)/frameSize)
	for start := 0; start < len(samples); start += frameSize {
		end := min(start+frameSize, len(samples))
		out = append(out, RMS(samples[start:end]))
	}
	return out
}

// RMS computes the root-mean-square of a frame
func RMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// ZeroCrossingRate counts sign changes between adjacent samples, divided by
// the total number of samples
func ZeroCrossingRate(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	return float64(countCrossings(samples)) / float64(len(samples))
}

func countCrossings(samples []float64) int {
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i] >= 0) != (samples[i-1] >= 0) {
			crossings++
		}
	}
	return crossings
}
