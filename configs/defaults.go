package configs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/voice-detector/pkg/audio/decode"
	"github.com/RyanBlaney/voice-detector/pkg/detection"
)

// AppName names the config directory and env prefix
const AppName = "voice-detector"

// EnvPrefix is the environment variable prefix bound by the CLI
const EnvPrefix = "VOICE_DETECTOR"

// EnvName returns the environment variable that overrides a config key
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// SetDefaults registers default configuration values for all components.
// Defaults never override values from flags, env or the config file.
func SetDefaults(v *viper.Viper) {
	defaults := GetDefaultConfig()

	// Application defaults
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("output_format", defaults.OutputFormat)
	v.SetDefault("config_dir", defaults.ConfigDir)

	// Audio input defaults
	v.SetDefault("audio.default_format", defaults.Audio.DefaultFormat)
	v.SetDefault("audio.min_payload_size", defaults.Audio.MinPayloadSize)
	v.SetDefault("audio.max_duration", defaults.Audio.MaxDuration)

	// Analysis defaults
	v.SetDefault("analysis.parallel", defaults.Analysis.Parallel)
	v.SetDefault("analysis.direct_dft", defaults.Analysis.DirectDFT)
	v.SetDefault("analysis.declared_language", defaults.Analysis.DeclaredLanguage)

	// Output defaults
	v.SetDefault("output.precision", defaults.Output.Precision)
	v.SetDefault("output.include_features", defaults.Output.IncludeFeatures)
	v.SetDefault("output.include_signals", defaults.Output.IncludeSignals)
	v.SetDefault("output.file", defaults.Output.File)
}

// ConfigSearchPaths returns the directories searched for config.yaml
func ConfigSearchPaths() []string {
	paths := make([]string, 0, 3)
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", AppName))
	}
	return append(paths, filepath.Join("/etc", AppName), "./configs")
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "table",
		ConfigDir:    filepath.Join(home, ".config", AppName),

		Audio:    GetDefaultAudioConfig(),
		Analysis: GetDefaultAnalysisConfig(),
		Output:   GetDefaultOutputConfig(),
	}
}

// GetDefaultAudioConfig returns default audio input settings
func GetDefaultAudioConfig() AudioConfig {
	return AudioConfig{
		DefaultFormat:  string(decode.FormatMP3),
		MinPayloadSize: decode.DefaultMinPayloadSize,
		MaxDuration:    0,
	}
}

// GetDefaultAnalysisConfig returns default feature extraction settings
func GetDefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Parallel:         true,
		DirectDFT:        false,
		DeclaredLanguage: string(detection.English),
	}
}

// GetDefaultOutputConfig returns default output formatting settings
func GetDefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Precision:       3,
		IncludeFeatures: false,
		IncludeSignals:  false,
	}
}

// GetDefaultOutputConfigForFormat returns output config tuned for a format
func GetDefaultOutputConfigForFormat(format string) OutputConfig {
	base := GetDefaultOutputConfig()

	switch format {
	case "json", "yaml":
		base.Precision = 6
		base.IncludeFeatures = true
	case "table":
		base.Precision = 2
	default:
		// Keep defaults
	}

	return base
}

// ApplyFormatDefaults tunes the output settings for the configured format.
// Keys for which explicit reports true are left as they are.
func ApplyFormatDefaults(config *Config, explicit func(key string) bool) {
	tuned := GetDefaultOutputConfigForFormat(config.OutputFormat)

	if !explicit("output.precision") {
		config.Output.Precision = tuned.Precision
	}
	if !explicit("output.include_features") {
		config.Output.IncludeFeatures = tuned.IncludeFeatures
	}
}
