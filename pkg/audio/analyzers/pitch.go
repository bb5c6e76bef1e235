package analyzers

import (
	"context"

	"github.com/RyanBlaney/voice-detector/pkg/logging"
)

const (
	PitchFrameDuration = 0.03
	MinVoiceFrequency  = 50.0
	MaxVoiceFrequency  = 500.0
	DefaultPitchMean   = 150.0

	// frames quieter than this carry no pitch
	pitchEnergyFloor = 0.001
	// peak normalized autocorrelation needed to call a frame periodic
	minPeriodicity = 0.3
)

// PitchResult holds the pitch contour and its summary statistics
type PitchResult struct {
	Contour        []float64 `json:"contour"`         // Accepted per-frame F0 (Hz)
	Mean           float64   `json:"mean"`            // Defaults to 150 Hz when unvoiced
	Variance       float64   `json:"variance"`        // Population variance
	Range          float64   `json:"range"`           // max - min
	FramesAnalyzed int       `json:"frames_analyzed"` // Frames examined
}

// PitchEstimator tracks the fundamental frequency by autocorrelation over
// half-overlapping 30 ms frames
type PitchEstimator struct {
	sampleRate int
	frameSize  int
	hopSize    int
	minLag     int
	maxLag     int
	logger     logging.Logger
}

// NewPitchEstimator creates a pitch estimator for sampleRate
func NewPitchEstimator(sampleRate int) *PitchEstimator {
	frameSize := int(float64(sampleRate) * PitchFrameDuration)
	return &PitchEstimator{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		hopSize:    frameSize / 2,
		minLag:     int(float64(sampleRate) / MaxVoiceFrequency),
		maxLag:     int(float64(sampleRate) / MinVoiceFrequency),
		logger: logging.WithFields(logging.Fields{
			"component":   "pitch_estimator",
			"sample_rate": sampleRate,
		}),
	}
}

// Estimate builds the pitch contour of samples
func (pe *PitchEstimator) Estimate(ctx context.Context, samples []float64) (*PitchResult, error) {
	result := &PitchResult{Mean: DefaultPitchMean}

	if pe.frameSize > 0 && pe.hopSize > 0 {
		for start := 0; start < len(samples)-pe.frameSize; start += pe.hopSize {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			result.FramesAnalyzed++
			pitch, ok := pe.FramePitch(samples[start : start+pe.frameSize])
			if ok && pitch > MinVoiceFrequency && pitch < MaxVoiceFrequency {
				result.Contour = append(result.Contour, pitch)
			}
		}
	}

	if len(result.Contour) > 0 {
		result.Mean = Mean(result.Contour)
		result.Variance = PopVariance(result.Contour)
		result.Range = Span(result.Contour)
	}

	pe.logger.Debug("Pitch estimation completed", logging.Fields{
		"frames_analyzed": result.FramesAnalyzed,
		"frames_voiced":   len(result.Contour),
		"pitch_mean":      result.Mean,
	})

	return result, nil
}

// FramePitch returns the frequency of the strongest autocorrelation lag.
// ok is false for silent frames and frames that are not periodic enough.
func (pe *PitchEstimator) FramePitch(frame []float64) (pitch float64, ok bool) {
	energy := 0.0
	for _, s := range frame {
		energy += s * s
	}
	if energy < pitchEnergyFloor {
		return 0, false
	}

	maxCorrelation := 0.0
	bestLag := pe.minLag

	for lag := pe.minLag; lag < pe.maxLag && 2*lag < len(frame); lag++ {
		correlation := 0.0
		for i := 0; i < len(frame)-lag; i++ {
			correlation += frame[i] * frame[i+lag]
		}
		correlation /= energy

		if correlation > maxCorrelation {
			maxCorrelation = correlation
			bestLag = lag
		}
	}

	if maxCorrelation < minPeriodicity || bestLag <= 0 {
		return 0, false
	}
	return float64(pe.sampleRate) / float64(bestLag), true
}
