package detection

import (
	"math"

	"github.com/RyanBlaney/voice-detector/pkg/audio/extractors"
)

const (
	// AICutoff is the normalized score above which audio is classified as synthetic
	AICutoff = 0.35

	maxSyntheticConfidence = 0.99
	maxReasons             = 3
)

// SignalResult traces a single synthetic-voice signal
type SignalResult struct {
	Name         string     `json:"name" yaml:"name"`
	Value        float64    `json:"value" yaml:"value"` // Normalized measurement the rule tested
	Weight       float64    `json:"weight" yaml:"weight"`
	Contribution float64    `json:"contribution" yaml:"contribution"`
	Reason       ReasonCode `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Verdict is the outcome of synthetic-voice classification
type Verdict struct {
	IsAI       bool           `json:"is_ai" yaml:"is_ai"`
	Confidence float64        `json:"confidence" yaml:"confidence"`
	Score      float64        `json:"score" yaml:"score"`
	Reasons    []ReasonCode   `json:"reasons" yaml:"reasons"`
	Signals    []SignalResult `json:"signals" yaml:"signals"`
}

type syntheticSignal struct {
	name   string
	weight float64
	// evaluate returns the tested value, the score added and the reason, if any
	evaluate func(f *extractors.ExtractedFeatures) (float64, float64, ReasonCode)
}

var syntheticSignals = []syntheticSignal{
	{"pitch_variance", 0.20, func(f *extractors.ExtractedFeatures) (float64, float64, ReasonCode) {
		norm := math.Min(f.PitchVariance/2000, 1)
		switch {
		case norm < 0.15:
			return norm, 0.20, ReasonUnnaturalPitchConsistency
		case norm < 0.25:
			return norm, 0.10, ReasonBelowAveragePitchVariation
		default:
			return norm, 0, ReasonNaturalPitchFluctuation
		}
	}},
	{"pitch_range", 0.15, func(f *extractors.ExtractedFeatures) (float64, float64, ReasonCode) {
		norm := math.Min(f.PitchRange/150, 1)
		if norm < 0.2 {
			return norm, 0.15, ReasonNarrowPitchRange
		}
		return norm, 0, ReasonHealthyPitchRange
	}},
	{"energy_variance", 0.15, func(f *extractors.ExtractedFeatures) (float64, float64, ReasonCode) {
		norm := math.Min(f.EnergyVariance*100, 1)
		if norm < 0.1 {
			return norm, 0.15, ReasonConsistentEnergy
		}
		return norm, 0, ReasonNaturalEnergyDynamics
	}},
	{"spectral_flatness", 0.10, func(f *extractors.ExtractedFeatures) (float64, float64, ReasonCode) {
		if f.SpectralFlatness > 0.3 {
			return f.SpectralFlatness, 0.10, ReasonHighSpectralFlatness
		}
		return f.SpectralFlatness, 0, 0
	}},
	{"temporal_variation", 0.15, func(f *extractors.ExtractedFeatures) (float64, float64, ReasonCode) {
		if f.TemporalVariation < 0.02 {
			return f.TemporalVariation, 0.15, ReasonMissingMicroVariation
		}
		return f.TemporalVariation, 0, ReasonOrganicTemporalVariation
	}},
	{"rhythm_regularity", 0.10, func(f *extractors.ExtractedFeatures) (float64, float64, ReasonCode) {
		if f.RhythmRegularity < 0.3 {
			return f.RhythmRegularity, 0.10, ReasonRegularRhythm
		}
		return f.RhythmRegularity, 0, ReasonNaturalRhythm
	}},
	{"pause_pattern", 0.10, func(f *extractors.ExtractedFeatures) (float64, float64, ReasonCode) {
		if f.PausePattern < 0.25 {
			return f.PausePattern, 0.10, ReasonUniformPauses
		}
		return f.PausePattern, 0, ReasonAuthenticPauses
	}},
	{"silence_ratio", 0.05, func(f *extractors.ExtractedFeatures) (float64, float64, ReasonCode) {
		if f.SilenceRatio < 0.05 || f.SilenceRatio > 0.4 {
			return f.SilenceRatio, 0.05, ReasonUnusualSilenceRatio
		}
		return f.SilenceRatio, 0, 0
	}},
}

// ClassifySynthetic runs the weighted synthetic-voice rules over features
func ClassifySynthetic(features *extractors.ExtractedFeatures) *Verdict {
	verdict := &Verdict{Signals: make([]SignalResult, 0, len(syntheticSignals))}

	var (
		aiScore     float64
		totalWeight float64
		collected   []ReasonCode
	)
	for _, s := range syntheticSignals {
		value, contribution, reason := s.evaluate(features)
		aiScore += contribution
		totalWeight += s.weight
		if reason != 0 {
			collected = append(collected, reason)
		}
		verdict.Signals = append(verdict.Signals, SignalResult{
			Name:         s.name,
			Value:        value,
			Weight:       s.weight,
			Contribution: contribution,
			Reason:       reason,
		})
	}

	verdict.Score = aiScore / totalWeight
	verdict.IsAI = verdict.Score > AICutoff
	verdict.Confidence = math.Min(maxSyntheticConfidence, 0.6+math.Abs(verdict.Score-AICutoff)*1.5)
	verdict.Reasons = selectReasons(collected, verdict.IsAI, maxReasons)

	return verdict
}

// SignalWeights returns the weight of every synthetic-voice signal in
// evaluation order
func SignalWeights() []float64 {
	weights := make([]float64, len(syntheticSignals))
	for i, s := range syntheticSignals {
		weights[i] = s.weight
	}
	return weights
}
