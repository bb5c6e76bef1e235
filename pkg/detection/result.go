package detection

import (
	"strings"

	"github.com/RyanBlaney/voice-detector/pkg/audio/extractors"
)

// Classification labels
const (
	ClassificationAI    = "AI_GENERATED"
	ClassificationHuman = "HUMAN"
)

const (
	syntheticFallback = "Synthetic speech patterns detected in audio signal"
	naturalFallback   = "Natural human speech characteristics confirmed"
)

// AudioAnalysisResult is the complete outcome of analyzing one recording
type AudioAnalysisResult struct {
	IsAI              bool                          `json:"is_ai" yaml:"is_ai"`
	Confidence        float64                       `json:"confidence" yaml:"confidence"`
	Score             float64                       `json:"score" yaml:"score"` // Normalized synthetic score
	Features          *extractors.ExtractedFeatures `json:"features" yaml:"features"`
	Reasons           []ReasonCode                  `json:"reasons" yaml:"reasons"`
	LanguageDetection *LanguageDetectionResult      `json:"language_detection" yaml:"language_detection"`
	Signals           []SignalResult                `json:"signals,omitempty" yaml:"signals,omitempty"`
}

// Classification returns the verdict label
func (r *AudioAnalysisResult) Classification() string {
	if r.IsAI {
		return ClassificationAI
	}
	return ClassificationHuman
}

// Explanation joins the reasons into a sentence list, falling back to a
// generic statement when no reason supports the verdict
func (r *AudioAnalysisResult) Explanation() string {
	if len(r.Reasons) == 0 {
		if r.IsAI {
			return syntheticFallback
		}
		return naturalFallback
	}

	texts := make([]string, len(r.Reasons))
	for i, reason := range r.Reasons {
		texts[i] = reason.String()
	}
	return strings.Join(texts, ". ")
}

// AnalyzeFeatures runs language detection and synthetic-voice classification
// over already extracted features. It holds no state, so the same features
// always produce the same result.
func AnalyzeFeatures(features *extractors.ExtractedFeatures, declared Language) *AudioAnalysisResult {
	languageDetection := DetectLanguage(features, declared)
	verdict := ClassifySynthetic(features)

	return &AudioAnalysisResult{
		IsAI:              verdict.IsAI,
		Confidence:        verdict.Confidence,
		Score:             verdict.Score,
		Features:          features,
		Reasons:           verdict.Reasons,
		LanguageDetection: languageDetection,
		Signals:           verdict.Signals,
	}
}
