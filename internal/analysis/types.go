package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/RyanBlaney/voice-detector/pkg/audio/decode"
	"github.com/RyanBlaney/voice-detector/pkg/detection"
)

// Report is the outcome of analyzing one encoded recording, with the
// decode metadata and stage timings around the classification result
type Report struct {
	Source     string        `json:"source" yaml:"source"`
	Format     decode.Format `json:"format" yaml:"format"`
	SampleRate int           `json:"sample_rate" yaml:"sample_rate"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Truncated  bool          `json:"truncated,omitempty" yaml:"truncated,omitempty"` // Cut to the configured max duration

	// Timing measurements
	DecodeTime          time.Duration `json:"decode_time" yaml:"decode_time"`
	AnalysisTime        time.Duration `json:"analysis_time" yaml:"analysis_time"`
	TotalProcessingTime time.Duration `json:"total_processing_time" yaml:"total_processing_time"`
	Timestamp           time.Time     `json:"timestamp" yaml:"timestamp"`

	Result *detection.AudioAnalysisResult `json:"result" yaml:"result"`
}

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the compact client-facing summary of a report
type Response struct {
	Status          string  `json:"status" yaml:"status"`
	Language        string  `json:"language,omitempty" yaml:"language,omitempty"`
	Classification  string  `json:"classification,omitempty" yaml:"classification,omitempty"`
	ConfidenceScore float64 `json:"confidenceScore,omitempty" yaml:"confidenceScore,omitempty"`
	Explanation     string  `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Message         string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// NewResponse summarizes a report. A recording that confidently belongs to
// another language than the declared one is rejected with an error
// response; the verdict in the report itself is left untouched.
func NewResponse(report *Report) *Response {
	result := report.Result
	if lang := result.LanguageDetection; lang != nil && lang.Mismatch() {
		return &Response{
			Status:  StatusError,
			Message: mismatchMessage(lang),
		}
	}

	return &Response{
		Status:          StatusSuccess,
		Language:        string(result.LanguageDetection.SelectedLanguage),
		Classification:  result.Classification(),
		ConfidenceScore: math.Round(result.Confidence*100) / 100,
		Explanation:     result.Explanation(),
	}
}

func mismatchMessage(lang *detection.LanguageDetectionResult) string {
	return fmt.Sprintf("Language mismatch detected! You selected \"%s\" but the audio appears to be \"%s\" (%.1f%% confidence). Please select the correct language.",
		lang.SelectedLanguage, lang.DetectedLanguage, lang.Confidence*100)
}

// NewErrorResponse reports a failed analysis
func NewErrorResponse(err error) *Response {
	return &Response{
		Status:  StatusError,
		Message: err.Error(),
	}
}
