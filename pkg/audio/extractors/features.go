package extractors

import (
	"fmt"
	"math"
)

// ExtractedFeatures is the flat acoustic measurement record consumed by the
// language and synthetic-voice classifiers
type ExtractedFeatures struct {
	// Pitch analysis
	PitchMean     float64 `json:"pitch_mean" yaml:"pitch_mean"`         // Hz, 150 when unvoiced
	PitchVariance float64 `json:"pitch_variance" yaml:"pitch_variance"` // Hz^2
	PitchRange    float64 `json:"pitch_range" yaml:"pitch_range"`       // Hz

	// Amplitude/energy
	RMSEnergy      float64 `json:"rms_energy" yaml:"rms_energy"`
	EnergyVariance float64 `json:"energy_variance" yaml:"energy_variance"`
	SilenceRatio   float64 `json:"silence_ratio" yaml:"silence_ratio"`

	// Spectral shape (bin units over the low 256 bins)
	SpectralCentroid float64 `json:"spectral_centroid" yaml:"spectral_centroid"`
	SpectralFlatness float64 `json:"spectral_flatness" yaml:"spectral_flatness"`
	SpectralRolloff  float64 `json:"spectral_rolloff" yaml:"spectral_rolloff"`

	// Temporal
	ZeroCrossingRate  float64 `json:"zero_crossing_rate" yaml:"zero_crossing_rate"`
	TemporalVariation float64 `json:"temporal_variation" yaml:"temporal_variation"`

	// Rhythm/prosody
	RhythmRegularity float64 `json:"rhythm_regularity" yaml:"rhythm_regularity"`
	PausePattern     float64 `json:"pause_pattern" yaml:"pause_pattern"`

	// Language-discriminating
	SyllableRate      float64 `json:"syllable_rate" yaml:"syllable_rate"`   // Syllables per second
	FormantRatio      float64 `json:"formant_ratio" yaml:"formant_ratio"`   // Centroid / 100
	VowelDuration     float64 `json:"vowel_duration" yaml:"vowel_duration"` // Seconds
	ConsonantDensity  float64 `json:"consonant_density" yaml:"consonant_density"`
	IntonationPattern float64 `json:"intonation_pattern" yaml:"intonation_pattern"`
	StressPattern     float64 `json:"stress_pattern" yaml:"stress_pattern"`
}

// InvariantError reports a non-finite feature value
type InvariantError struct {
	Field string
	Value float64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("feature %s is not finite: %v", e.Field, e.Value)
}

// Named returns the features as ordered name/value pairs
func (f *ExtractedFeatures) Named() []NamedValue {
	return []NamedValue{
		{"pitch_mean", f.PitchMean},
		{"pitch_variance", f.PitchVariance},
		{"pitch_range", f.PitchRange},
		{"rms_energy", f.RMSEnergy},
		{"energy_variance", f.EnergyVariance},
		{"silence_ratio", f.SilenceRatio},
		{"spectral_centroid", f.SpectralCentroid},
		{"spectral_flatness", f.SpectralFlatness},
		{"spectral_rolloff", f.SpectralRolloff},
		{"zero_crossing_rate", f.ZeroCrossingRate},
		{"temporal_variation", f.TemporalVariation},
		{"rhythm_regularity", f.RhythmRegularity},
		{"pause_pattern", f.PausePattern},
		{"syllable_rate", f.SyllableRate},
		{"formant_ratio", f.FormantRatio},
		{"vowel_duration", f.VowelDuration},
		{"consonant_density", f.ConsonantDensity},
		{"intonation_pattern", f.IntonationPattern},
		{"stress_pattern", f.StressPattern},
	}
}

// NamedValue is a single feature measurement
type NamedValue struct {
	Name  string
	Value float64
}

// Validate returns an *InvariantError for the first NaN or infinite field
func (f *ExtractedFeatures) Validate() error {
	for _, nv := range f.Named() {
		if math.IsNaN(nv.Value) || math.IsInf(nv.Value, 0) {
			return &InvariantError{Field: nv.Name, Value: nv.Value}
		}
	}
	return nil
}
