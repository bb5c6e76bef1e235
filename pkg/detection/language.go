package detection

import (
	"math"
	"sort"

	"golang.org/x/text/cases"

	"github.com/RyanBlaney/voice-detector/pkg/audio/analyzers"
	"github.com/RyanBlaney/voice-detector/pkg/audio/extractors"
)

// Sub-score weights; they sum to 1
const (
	syllableWeight   = 0.25
	zcrWeight        = 0.15
	formantWeight    = 0.15
	vowelWeight      = 0.15
	rhythmWeight     = 0.15
	intonationWeight = 0.15
)

const (
	syllableSpread   = 3.0
	zcrSpread        = 0.05
	formantSpread    = 0.3
	vowelSpread      = 0.1
	intonationSpread = 0.2

	// stressPattern above this reads as stress-timed speech
	stressTimedCutoff = 0.4
	rhythmMismatch    = 0.3

	maxLanguageConfidence = 0.95

	// a mismatch above this confidence is treated as a wrong declaration
	mismatchConfidence = 0.5
)

// LanguageDetectionResult is the outcome of language classification
type LanguageDetectionResult struct {
	DetectedLanguage Language             `json:"detected_language" yaml:"detected_language"`
	Confidence       float64              `json:"confidence" yaml:"confidence"`
	LanguageScores   map[Language]float64 `json:"language_scores" yaml:"language_scores"`
	IsLanguageMatch  bool                 `json:"is_language_match" yaml:"is_language_match"`
	SelectedLanguage Language             `json:"selected_language" yaml:"selected_language"`
}

// Mismatch reports whether the audio confidently belongs to a language other
// than the declared one
func (r *LanguageDetectionResult) Mismatch() bool {
	return !r.IsLanguageMatch && r.Confidence > mismatchConfidence
}

// DetectLanguage scores every profile against the features and picks the
// best match. When every profile scores zero the declared language is kept.
func DetectLanguage(features *extractors.ExtractedFeatures, declared Language) *LanguageDetectionResult {
	scores := make([]float64, len(profileTable))
	detected := declared
	maxScore := 0.0

	for i, profile := range profileTable {
		scores[i] = scoreProfile(features, &profile)
		if scores[i] > maxScore {
			maxScore = scores[i]
			detected = profile.Name
		}
	}

	sorted := append([]float64(nil), scores...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	confidence := maxScore
	if len(sorted) > 1 {
		confidence = math.Min(maxLanguageConfidence, maxScore*0.7+(sorted[0]-sorted[1])*0.5)
	}

	rounded := make(map[Language]float64, len(scores))
	for i, profile := range profileTable {
		rounded[profile.Name] = roundTo2(scores[i])
	}

	fold := cases.Fold()
	return &LanguageDetectionResult{
		DetectedLanguage: detected,
		Confidence:       roundTo2(confidence),
		LanguageScores:   rounded,
		IsLanguageMatch:  fold.String(string(detected)) == fold.String(string(declared)),
		SelectedLanguage: declared,
	}
}

// scoreProfile returns the weighted match of features against profile in [0,1]
func scoreProfile(features *extractors.ExtractedFeatures, profile *LanguageProfile) float64 {
	score := 0.0
	weightSum := 0.0

	syllableMatch := 1 - closeness(features.SyllableRate, profile.TypicalSyllableRate, syllableSpread)
	inRange := 0.0
	if profile.SyllableRate.Contains(features.SyllableRate) {
		inRange = 0.3
	}
	score += (syllableMatch*0.7 + inRange) * syllableWeight
	weightSum += syllableWeight

	score += (1 - closeness(features.ZeroCrossingRate, profile.ZeroCrossing.Midpoint(), zcrSpread)) * zcrWeight
	weightSum += zcrWeight

	score += (1 - closeness(features.FormantRatio, profile.FormantRatio.Midpoint(), formantSpread)) * formantWeight
	weightSum += formantWeight

	score += (1 - closeness(features.VowelDuration, profile.VowelDuration.Midpoint(), vowelSpread)) * vowelWeight
	weightSum += vowelWeight

	rhythmMatch := rhythmMismatch
	if (features.StressPattern > stressTimedCutoff) == profile.IsStressTimed() {
		rhythmMatch = 1
	}
	score += rhythmMatch * rhythmWeight
	weightSum += rhythmWeight

	score += (1 - closeness(features.IntonationPattern, profile.IntonationVariance, intonationSpread)) * intonationWeight
	weightSum += intonationWeight

	return score / weightSum
}

// closeness is the distance between value and target in units of spread,
// clamped to [0,1]
func closeness(value, target, spread float64) float64 {
	return analyzers.Clamp(math.Abs(value-target)/spread, 0, 1)
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
