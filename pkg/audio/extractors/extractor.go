package extractors

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/voice-detector/pkg/audio"
	"github.com/RyanBlaney/voice-detector/pkg/audio/analyzers"
	"github.com/RyanBlaney/voice-detector/pkg/logging"
)

// Config controls feature extraction
type Config struct {
	// Parallel runs pitch estimation and spectral analysis concurrently
	Parallel bool `json:"parallel"`
	// DirectDFT computes spectra by explicit DFT summation instead of FFT
	DirectDFT bool `json:"direct_dft"`

	Logger logging.Logger `json:"-"`
}

// DefaultConfig returns the extraction defaults
func DefaultConfig() *Config {
	return &Config{Parallel: true}
}

// Extraction holds the features together with the intermediate analyses
// they were derived from
type Extraction struct {
	Features *ExtractedFeatures          `json:"features"`
	Frames   *analyzers.FrameStats       `json:"frames"`
	Pitch    *analyzers.PitchResult      `json:"pitch"`
	Spectral *analyzers.SpectralFeatures `json:"spectral"`
}

// FeatureExtractor runs the frame, pitch, spectral and prosody stages over a
// waveform
type FeatureExtractor struct {
	config *Config
	logger logging.Logger
}

// NewFeatureExtractor creates a feature extractor
func NewFeatureExtractor(config *Config) *FeatureExtractor {
	if config == nil {
		config = DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &FeatureExtractor{
		config: config,
		logger: logger.WithFields(logging.Fields{
			"component": "feature_extractor",
		}),
	}
}

// Extract computes the ExtractedFeatures of wf
func (fe *FeatureExtractor) Extract(ctx context.Context, wf *audio.Waveform) (*ExtractedFeatures, error) {
	extraction, err := fe.ExtractDetailed(ctx, wf)
	if err != nil {
		return nil, err
	}
	return extraction.Features, nil
}

// ExtractDetailed computes the features and keeps the intermediate results
func (fe *FeatureExtractor) ExtractDetailed(ctx context.Context, wf *audio.Waveform) (*Extraction, error) {
	if wf == nil {
		return nil, fmt.Errorf("nil waveform")
	}

	logger := fe.logger.WithFields(logging.Fields{
		"function":    "ExtractDetailed",
		"samples":     wf.Len(),
		"sample_rate": wf.SampleRate,
	})
	logger.Debug("Extracting features")

	frames := analyzers.ComputeFrameStats(wf)

	pitch, spectral, err := fe.runSignalStages(ctx, wf)
	if err != nil {
		return nil, err
	}

	features := &ExtractedFeatures{
		PitchMean:         pitch.Mean,
		PitchVariance:     pitch.Variance,
		PitchRange:        pitch.Range,
		RMSEnergy:         frames.RMSEnergy,
		EnergyVariance:    frames.EnergyVariance,
		SilenceRatio:      frames.SilenceRatio,
		SpectralCentroid:  spectral.Centroid,
		SpectralFlatness:  spectral.Flatness,
		SpectralRolloff:   spectral.Rolloff,
		ZeroCrossingRate:  frames.ZeroCrossingRate,
		TemporalVariation: temporalVariation(frames.Energy),
		RhythmRegularity:  rhythmRegularity(frames.Energy),
		PausePattern:      pausePattern(frames.Energy, frames.SilenceThreshold),
		SyllableRate:      syllableRate(frames.Energy, frames.RMSEnergy, wf.Seconds()),
		FormantRatio:      spectral.Centroid / 100,
		VowelDuration:     vowelDuration(frames.Energy, wf.SampleRate, frames.FrameSize),
		ConsonantDensity:  consonantDensity(wf.Samples, wf.SampleRate, analyzers.Mean(frames.Energy)),
		IntonationPattern: intonationPattern(pitch.Contour),
		StressPattern:     stressPattern(frames.Energy),
	}

	if err := features.Validate(); err != nil {
		logger.Error(err, "Extracted features violate finiteness invariant")
		return nil, err
	}

	if len(pitch.Contour) == 0 {
		logger.Warn("No voiced frames found, pitch features use defaults")
	}

	logger.Debug("Feature extraction completed", logging.Fields{
		"pitch_mean":    features.PitchMean,
		"syllable_rate": features.SyllableRate,
		"silence_ratio": features.SilenceRatio,
	})

	return &Extraction{
		Features: features,
		Frames:   frames,
		Pitch:    pitch,
		Spectral: spectral,
	}, nil
}

// runSignalStages runs pitch estimation and spectral analysis. The stages
// only read the waveform, so running them concurrently does not change
// their output.
func (fe *FeatureExtractor) runSignalStages(ctx context.Context, wf *audio.Waveform) (*analyzers.PitchResult, *analyzers.SpectralFeatures, error) {
	var (
		pitch    *analyzers.PitchResult
		spectral *analyzers.SpectralFeatures
	)

	pitchEstimator := analyzers.NewPitchEstimator(wf.SampleRate)
	spectralAnalyzer := analyzers.NewSpectralAnalyzer(wf.SampleRate, fe.config.DirectDFT)

	if !fe.config.Parallel {
		var err error
		if pitch, err = pitchEstimator.Estimate(ctx, wf.Samples); err != nil {
			return nil, nil, fmt.Errorf("pitch estimation: %w", err)
		}
		if spectral, err = spectralAnalyzer.Analyze(ctx, wf.Samples); err != nil {
			return nil, nil, fmt.Errorf("spectral analysis: %w", err)
		}
		return pitch, spectral, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if pitch, err = pitchEstimator.Estimate(gctx, wf.Samples); err != nil {
			return fmt.Errorf("pitch estimation: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if spectral, err = spectralAnalyzer.Analyze(gctx, wf.Samples); err != nil {
			return fmt.Errorf("spectral analysis: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return pitch, spectral, nil
}
