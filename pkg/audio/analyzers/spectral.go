package analyzers

import (
	"context"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/voice-detector/pkg/logging"
)

const (
	SpectralFrameSize = 2048
	SpectralBins      = 256
	RolloffFraction   = 0.85

	// returned when the signal is shorter than one spectral frame
	DefaultSpectralCentroid = 100.0
	DefaultSpectralFlatness = 0.2
	DefaultSpectralRolloff  = 0.5

	flatnessEpsilon = 1e-10
)

// SpectralFeatures holds frame-averaged spectral shape descriptors.
// Centroid and rolloff are expressed in bins, not Hz.
type SpectralFeatures struct {
	Centroid float64 `json:"centroid"` // Magnitude-weighted mean bin index
	Flatness float64 `json:"flatness"` // Geometric / arithmetic mean of magnitudes
	Rolloff  float64 `json:"rolloff"`  // 85% energy bin as a fraction of SpectralBins
	Frames   int     `json:"frames"`   // Full frames analyzed
}

// SpectralAnalyzer computes per-frame magnitude spectra over the low
// SpectralBins bins and summarizes them
type SpectralAnalyzer struct {
	sampleRate int
	directDFT  bool
	logger     logging.Logger
}

// NewSpectralAnalyzer creates a new spectral analyzer. With directDFT the
// magnitudes come from explicit DFT summation instead of the FFT.
func NewSpectralAnalyzer(sampleRate int, directDFT bool) *SpectralAnalyzer {
	return &SpectralAnalyzer{
		sampleRate: sampleRate,
		directDFT:  directDFT,
		logger: logging.WithFields(logging.Fields{
			"component":   "spectral_analyzer",
			"sample_rate": sampleRate,
		}),
	}
}

// Analyze splits samples into non-overlapping SpectralFrameSize frames,
// discards the trailing partial frame, and averages per-frame features
func (sa *SpectralAnalyzer) Analyze(ctx context.Context, samples []float64) (*SpectralFeatures, error) {
	numFrames := len(samples) / SpectralFrameSize
	if numFrames == 0 {
		sa.logger.Debug("Signal shorter than one spectral frame, using defaults", logging.Fields{
			"samples": len(samples),
		})
		return &SpectralFeatures{
			Centroid: DefaultSpectralCentroid,
			Flatness: DefaultSpectralFlatness,
			Rolloff:  DefaultSpectralRolloff,
		}, nil
	}

	var totalCentroid, totalFlatness, totalRolloff float64
	for f := range numFrames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame := samples[f*SpectralFrameSize : (f+1)*SpectralFrameSize]

		var magnitudes []float64
		if sa.directDFT {
			magnitudes = DirectMagnitudes(frame, SpectralBins)
		} else {
			magnitudes = FFTMagnitudes(frame, SpectralBins)
		}

		totalCentroid += calculateSpectralCentroid(magnitudes)
		totalFlatness += calculateSpectralFlatness(magnitudes)
		totalRolloff += calculateSpectralRolloff(magnitudes, RolloffFraction)
	}

	result := &SpectralFeatures{
		Centroid: totalCentroid / float64(numFrames),
		Flatness: totalFlatness / float64(numFrames),
		Rolloff:  totalRolloff / float64(numFrames),
		Frames:   numFrames,
	}

	sa.logger.Debug("Spectral analysis completed", logging.Fields{
		"frames":   numFrames,
		"centroid": result.Centroid,
		"flatness": result.Flatness,
		"rolloff":  result.Rolloff,
	})

	return result, nil
}

// FFTMagnitudes returns |X[k]| for k < bins using mjibson/go-dsp
func FFTMagnitudes(frame []float64, bins int) []float64 {
	spectrum := fft.FFTReal(frame)
	bins = min(bins, len(spectrum))

	magnitudes := make([]float64, bins)
	for k := range bins {
		magnitudes[k] = cmplx.Abs(spectrum[k])
	}
	return magnitudes
}

// DirectMagnitudes evaluates the DFT sum for the first bins bins.
// O(bins*len(frame)); kept as the reference for FFTMagnitudes.
func DirectMagnitudes(frame []float64, bins int) []float64 {
	n := len(frame)
	magnitudes := make([]float64, bins)
	for k := range bins {
		var re, im float64
		for i, x := range frame {
			angle := -2 * math.Pi * float64(k) * float64(i) / float64(n)
			re += x * math.Cos(angle)
			im += x * math.Sin(angle)
		}
		magnitudes[k] = math.Sqrt(re*re + im*im)
	}
	return magnitudes
}

// calculateSpectralCentroid returns the magnitude-weighted mean bin index
func calculateSpectralCentroid(spectrum []float64) float64 {
	numerator := 0.0
	denominator := 0.0
	for k, mag := range spectrum {
		numerator += float64(k) * mag
		denominator += mag
	}
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// calculateSpectralFlatness computes the Wiener entropy with an epsilon in
// the log so silent bins do not collapse the geometric mean to -Inf
func calculateSpectralFlatness(spectrum []float64) float64 {
	if len(spectrum) == 0 {
		return 0
	}

	logSum := 0.0
	sum := 0.0
	for _, mag := range spectrum {
		logSum += math.Log(mag + flatnessEpsilon)
		sum += mag
	}

	arithmeticMean := sum / float64(len(spectrum))
	if arithmeticMean == 0 {
		return 0
	}
	geometricMean := math.Exp(logSum / float64(len(spectrum)))
	return geometricMean / arithmeticMean
}

// calculateSpectralRolloff returns the first bin where the cumulative
// energy reaches threshold of the total, as a fraction of the bin count
func calculateSpectralRolloff(spectrum []float64, threshold float64) float64 {
	if len(spectrum) == 0 {
		return 0
	}

	totalEnergy := 0.0
	for _, mag := range spectrum {
		totalEnergy += mag * mag
	}

	rolloffBin := len(spectrum) - 1
	cumulativeEnergy := 0.0
	for k, mag := range spectrum {
		cumulativeEnergy += mag * mag
		if cumulativeEnergy >= threshold*totalEnergy {
			rolloffBin = k
			break
		}
	}
	return float64(rolloffBin) / float64(len(spectrum))
}
