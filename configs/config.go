package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/voice-detector/pkg/audio/decode"
	"github.com/RyanBlaney/voice-detector/pkg/detection"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	ConfigDir    string `mapstructure:"config_dir" yaml:"config_dir"`

	// Audio input configuration
	Audio AudioConfig `mapstructure:"audio" yaml:"audio"`

	// Feature extraction and classification
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output"`
}

// AudioConfig contains audio input settings
type AudioConfig struct {
	DefaultFormat  string        `mapstructure:"default_format" yaml:"default_format"`
	MinPayloadSize int           `mapstructure:"min_payload_size" yaml:"min_payload_size"`
	MaxDuration    time.Duration `mapstructure:"max_duration" yaml:"max_duration"` // 0 disables the limit
}

// AnalysisConfig contains feature extraction settings
type AnalysisConfig struct {
	Parallel         bool   `mapstructure:"parallel" yaml:"parallel"`
	DirectDFT        bool   `mapstructure:"direct_dft" yaml:"direct_dft"`
	DeclaredLanguage string `mapstructure:"declared_language" yaml:"declared_language"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Precision       int    `mapstructure:"precision" yaml:"precision"`
	IncludeFeatures bool   `mapstructure:"include_features" yaml:"include_features"`
	IncludeSignals  bool   `mapstructure:"include_signals" yaml:"include_signals"`
	File            string `mapstructure:"file" yaml:"file"`
}

// LoadConfig loads configuration from the global viper instance
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper())
}

// LoadConfigFrom loads configuration from v, filling unset keys with defaults
func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log level %q", config.LogLevel)
	}

	switch config.OutputFormat {
	case "json", "yaml", "table":
	default:
		return fmt.Errorf("unsupported output format %q", config.OutputFormat)
	}

	if _, err := decode.ParseFormat(config.Audio.DefaultFormat); err != nil {
		return fmt.Errorf("audio default format: %w", err)
	}

	if config.Audio.MinPayloadSize < 0 {
		return fmt.Errorf("minimum payload size cannot be negative")
	}

	if config.Audio.MaxDuration < 0 {
		return fmt.Errorf("maximum duration cannot be negative")
	}

	if _, err := detection.ParseLanguage(config.Analysis.DeclaredLanguage); err != nil {
		return fmt.Errorf("analysis declared language: %w", err)
	}

	if config.Output.Precision < 0 || config.Output.Precision > 12 {
		return fmt.Errorf("output precision must be between 0 and 12")
	}

	return nil
}
