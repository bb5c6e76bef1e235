package detection

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/voice-detector/pkg/audio/extractors"
)

// humanFeatures leans natural on every signal
func humanFeatures() *extractors.ExtractedFeatures {
	return &extractors.ExtractedFeatures{
		PitchMean:         160,
		PitchVariance:     900,
		PitchRange:        100,
		RMSEnergy:         0.1,
		EnergyVariance:    0.01,
		SilenceRatio:      0.2,
		SpectralCentroid:  120,
		SpectralFlatness:  0.1,
		SpectralRolloff:   0.4,
		ZeroCrossingRate:  0.06,
		TemporalVariation: 0.05,
		RhythmRegularity:  0.6,
		PausePattern:      0.5,
		SyllableRate:      5,
		FormantRatio:      1.2,
		VowelDuration:     0.12,
		ConsonantDensity:  0.2,
		IntonationPattern: 0.35,
		StressPattern:     0.6,
	}
}

// robotFeatures leans synthetic on every signal
func robotFeatures() *extractors.ExtractedFeatures {
	return &extractors.ExtractedFeatures{
		PitchMean:         150,
		PitchVariance:     1,
		PitchRange:        5,
		RMSEnergy:         0.3,
		EnergyVariance:    0.00001,
		SilenceRatio:      0,
		SpectralCentroid:  60,
		SpectralFlatness:  0.5,
		SpectralRolloff:   0.2,
		ZeroCrossingRate:  0.02,
		TemporalVariation: 0.001,
		RhythmRegularity:  0.1,
		PausePattern:      0.1,
		SyllableRate:      1,
		FormantRatio:      0.6,
		VowelDuration:     0.1,
		IntonationPattern: 0.3,
		StressPattern:     0.5,
	}
}

func TestSignalWeightsSumToOne(t *testing.T) {
	weights := SignalWeights()
	require.Len(t, weights, 8)
	assert.Equal(t, []float64{0.20, 0.15, 0.15, 0.10, 0.15, 0.10, 0.10, 0.05}, weights)

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestClassifySyntheticHuman(t *testing.T) {
	verdict := ClassifySynthetic(humanFeatures())

	assert.False(t, verdict.IsAI)
	assert.InDelta(t, 0.0, verdict.Score, 1e-12)
	assert.Equal(t, maxSyntheticConfidence, verdict.Confidence)
	assert.Equal(t, []ReasonCode{
		ReasonNaturalPitchFluctuation,
		ReasonHealthyPitchRange,
		ReasonNaturalEnergyDynamics,
	}, verdict.Reasons)
	assert.Len(t, verdict.Signals, 8)
}

func TestClassifySyntheticRobot(t *testing.T) {
	verdict := ClassifySynthetic(robotFeatures())

	assert.True(t, verdict.IsAI)
	assert.InDelta(t, 1.0, verdict.Score, 1e-9)
	assert.Equal(t, maxSyntheticConfidence, verdict.Confidence)
	assert.Equal(t, []ReasonCode{
		ReasonUnnaturalPitchConsistency,
		ReasonNarrowPitchRange,
		ReasonConsistentEnergy,
	}, verdict.Reasons)

	for _, s := range verdict.Signals {
		assert.Equal(t, s.Weight, s.Contribution, s.Name)
	}
}

func TestClassifySyntheticPitchVarianceBoundary(t *testing.T) {
	below := humanFeatures()
	below.PitchVariance = 299.999
	above := humanFeatures()
	above.PitchVariance = 300.001

	vb := ClassifySynthetic(below)
	va := ClassifySynthetic(above)

	assert.Equal(t, 0.20, vb.Signals[0].Contribution)
	assert.Equal(t, 0.10, va.Signals[0].Contribution)
	assert.Equal(t, ReasonUnnaturalPitchConsistency, vb.Signals[0].Reason)
	assert.Equal(t, ReasonBelowAveragePitchVariation, va.Signals[0].Reason)

	assert.False(t, vb.IsAI)
	assert.False(t, va.IsAI)
	assert.Equal(t, vb.Reasons, va.Reasons)
	assert.Greater(t, va.Confidence, vb.Confidence)
}

func TestClassifySyntheticCutoffIsStrict(t *testing.T) {
	// 0.20 + 0.15 lands on the cutoff itself
	f := humanFeatures()
	f.PitchVariance = 10
	f.PitchRange = 10

	verdict := ClassifySynthetic(f)
	assert.InDelta(t, AICutoff, verdict.Score, 1e-9)
	assert.InDelta(t, 0.6, verdict.Confidence, 1e-9)

	// one more signal tips it over
	f.SpectralFlatness = 0.8
	verdict = ClassifySynthetic(f)
	assert.True(t, verdict.IsAI)
	assert.InDelta(t, 0.45, verdict.Score, 1e-9)
}

func TestSilenceReasonIsNeutral(t *testing.T) {
	f := robotFeatures()
	f.PitchVariance = 1000
	f.PitchRange = 100
	f.EnergyVariance = 0.01
	f.SpectralFlatness = 0.1
	f.TemporalVariation = 0.05
	f.RhythmRegularity = 0.6
	f.PausePattern = 0.5
	f.SilenceRatio = 0.9

	verdict := ClassifySynthetic(f)
	assert.False(t, verdict.IsAI)
	assert.InDelta(t, 0.05, verdict.Score, 1e-12)
	assert.Equal(t, ReasonUnusualSilenceRatio, verdict.Signals[7].Reason)
	assert.NotContains(t, verdict.Reasons, ReasonUnusualSilenceRatio)

	// a synthetic verdict does not surface it either
	f = robotFeatures()
	f.SilenceRatio = 0.9
	f.PitchVariance = 1000
	f.PitchRange = 100
	f.EnergyVariance = 0.01
	verdict = ClassifySynthetic(f)
	assert.True(t, verdict.IsAI)
	assert.Equal(t, []ReasonCode{
		ReasonHighSpectralFlatness,
		ReasonMissingMicroVariation,
		ReasonRegularRhythm,
	}, verdict.Reasons)
}

func TestReasonCodes(t *testing.T) {
	synthetic := []string{"Unnatural", "synthetic", "robotic", "Artificial", "Overly", "Lack", "Narrow", "Uniform", "Below"}
	natural := []string{"Natural", "Organic", "Healthy", "Authentic"}

	containsAny := func(s string, words []string) bool {
		for _, w := range words {
			if strings.Contains(s, w) {
				return true
			}
		}
		return false
	}

	for code := ReasonUnnaturalPitchConsistency; code <= ReasonUnusualSilenceRatio; code++ {
		text := code.String()
		switch code.Polarity() {
		case PolaritySynthetic:
			assert.True(t, containsAny(text, synthetic), text)
		case PolarityNatural:
			assert.True(t, containsAny(text, natural), text)
			assert.False(t, containsAny(text, synthetic), text)
		case PolarityNeutral:
			assert.False(t, containsAny(text, synthetic), text)
			assert.False(t, containsAny(text, natural), text)
		}

		var parsed ReasonCode
		require.NoError(t, parsed.UnmarshalText([]byte(text)))
		assert.Equal(t, code, parsed)
	}

	assert.Equal(t, "ReasonCode(99)", ReasonCode(99).String())
	assert.Equal(t, PolarityNeutral, ReasonCode(99).Polarity())
	var parsed ReasonCode
	assert.Error(t, parsed.UnmarshalText([]byte("no such reason")))
}

func TestVerdictSerializesReasonText(t *testing.T) {
	verdict := ClassifySynthetic(robotFeatures())

	data, err := json.Marshal(verdict)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Narrow pitch range suggests synthetic origin"`)

	out, err := yaml.Marshal(verdict)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Narrow pitch range suggests synthetic origin")
}
