package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/RyanBlaney/voice-detector/pkg/audio"
	"github.com/RyanBlaney/voice-detector/pkg/audio/decode"
	"github.com/RyanBlaney/voice-detector/pkg/audio/extractors"
	"github.com/RyanBlaney/voice-detector/pkg/detection"
	"github.com/RyanBlaney/voice-detector/pkg/logging"
)

// Engine runs the decode, feature extraction and classification stages
type Engine struct {
	logger      logging.Logger
	decoder     *decode.Decoder
	extractor   *extractors.FeatureExtractor
	maxDuration time.Duration
}

// EngineConfig contains configuration for the analysis engine
type EngineConfig struct {
	Parallel       bool
	DirectDFT      bool
	MinPayloadSize int
	// MaxDuration truncates longer recordings; 0 disables truncation
	MaxDuration time.Duration
	Logger      logging.Logger
}

// DefaultEngineConfig returns the engine defaults
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Parallel:       true,
		MinPayloadSize: decode.DefaultMinPayloadSize,
	}
}

// NewEngine creates a new analysis engine
func NewEngine(config *EngineConfig) *Engine {
	if config == nil {
		config = DefaultEngineConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &Engine{
		logger: logger.WithFields(logging.Fields{"component": "analysis_engine"}),
		decoder: decode.NewDecoder(&decode.Config{
			MinPayloadSize: config.MinPayloadSize,
			Logger:         logger,
		}),
		extractor: extractors.NewFeatureExtractor(&extractors.Config{
			Parallel:  config.Parallel,
			DirectDFT: config.DirectDFT,
			Logger:    logger,
		}),
		maxDuration: config.MaxDuration,
	}
}

// Analyze classifies an already decoded waveform. Degenerate audio still
// yields a result; only extraction failures are returned as errors.
func (e *Engine) Analyze(ctx context.Context, wf *audio.Waveform, declared detection.Language) (*detection.AudioAnalysisResult, error) {
	features, err := e.extractor.Extract(ctx, wf)
	if err != nil {
		return nil, fmt.Errorf("feature extraction failed: %w", err)
	}

	result := detection.AnalyzeFeatures(features, declared)

	e.logger.Debug("Analysis completed", logging.Fields{
		"is_ai":             result.IsAI,
		"confidence":        result.Confidence,
		"score":             result.Score,
		"detected_language": result.LanguageDetection.DetectedLanguage,
		"declared_language": declared,
	})

	if result.LanguageDetection.Mismatch() {
		e.logger.Warn("Detected language differs from declared language", logging.Fields{
			"detected_language":   result.LanguageDetection.DetectedLanguage,
			"declared_language":   declared,
			"language_confidence": result.LanguageDetection.Confidence,
		})
	}

	return result, nil
}

// AnalyzeFile decodes and classifies an audio file
func (e *Engine) AnalyzeFile(ctx context.Context, path string, declared detection.Language) (*Report, error) {
	format, err := decode.ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return e.run(ctx, path, format, declared, func() (*audio.Waveform, error) {
		return e.decoder.DecodeFile(ctx, path)
	})
}

// AnalyzeEncoded decodes and classifies a base64 payload
func (e *Engine) AnalyzeEncoded(ctx context.Context, payload string, format decode.Format, declared detection.Language) (*Report, error) {
	return e.run(ctx, "base64", format, declared, func() (*audio.Waveform, error) {
		return e.decoder.DecodeBase64(ctx, payload, format)
	})
}

func (e *Engine) run(ctx context.Context, source string, format decode.Format, declared detection.Language, decodeFn func() (*audio.Waveform, error)) (*Report, error) {
	report := &Report{
		Source:    source,
		Format:    format,
		Timestamp: time.Now(),
	}

	logger := e.logger.WithFields(logging.Fields{
		"source": source,
		"format": format,
	})
	logger.Debug("Starting audio analysis")

	totalStart := time.Now()

	// Step 1: Decode
	decodeStart := time.Now()
	wf, err := decodeFn()
	if err != nil {
		logger.Error(err, "Failed to decode audio")
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}
	report.DecodeTime = time.Since(decodeStart)

	if e.maxDuration > 0 && wf.Duration() > e.maxDuration {
		keep := int(e.maxDuration.Seconds() * float64(wf.SampleRate))
		logger.Warn("Truncating audio to maximum duration", logging.Fields{
			"duration_s":     wf.Seconds(),
			"max_duration_s": e.maxDuration.Seconds(),
		})
		wf = &audio.Waveform{Samples: wf.Samples[:keep], SampleRate: wf.SampleRate}
		report.Truncated = true
	}
	report.SampleRate = wf.SampleRate
	report.Duration = wf.Duration()

	// Step 2: Extract and classify
	analysisStart := time.Now()
	result, err := e.Analyze(ctx, wf, declared)
	if err != nil {
		logger.Error(err, "Failed to analyze audio")
		return nil, err
	}
	report.AnalysisTime = time.Since(analysisStart)
	report.Result = result

	report.TotalProcessingTime = time.Since(totalStart)

	logger.Debug("Audio analysis completed", logging.Fields{
		"decode_ms":   report.DecodeTime.Milliseconds(),
		"analysis_ms": report.AnalysisTime.Milliseconds(),
		"total_ms":    report.TotalProcessingTime.Milliseconds(),
		"duration_s":  wf.Seconds(),
		"verdict":     result.Classification(),
	})

	return report, nil
}
