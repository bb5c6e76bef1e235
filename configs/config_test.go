package configs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromDefaults(t *testing.T) {
	config, err := LoadConfigFrom(viper.New())
	require.NoError(t, err)

	expected := GetDefaultConfig()
	assert.Equal(t, expected, config)
	assert.NoError(t, ValidateConfig(config))
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
log_level: debug
output_format: json
audio:
  default_format: wav
  max_duration: 90s
analysis:
  parallel: false
  declared_language: tamil
output:
  precision: 4
  include_features: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	config, err := LoadConfigFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "json", config.OutputFormat)
	assert.Equal(t, "wav", config.Audio.DefaultFormat)
	assert.Equal(t, 90*time.Second, config.Audio.MaxDuration)
	assert.Equal(t, 100, config.Audio.MinPayloadSize)
	assert.False(t, config.Analysis.Parallel)
	assert.Equal(t, "tamil", config.Analysis.DeclaredLanguage)
	assert.Equal(t, 4, config.Output.Precision)
	assert.True(t, config.Output.IncludeFeatures)
	assert.NoError(t, ValidateConfig(config))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("VOICE_DETECTOR_ANALYSIS_DIRECT_DFT", "true")
	t.Setenv("VOICE_DETECTOR_OUTPUT_FORMAT", "yaml")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config, err := LoadConfigFrom(v)
	require.NoError(t, err)
	assert.True(t, config.Analysis.DirectDFT)
	assert.Equal(t, "yaml", config.OutputFormat)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"output format", func(c *Config) { c.OutputFormat = "csv" }},
		{"audio format", func(c *Config) { c.Audio.DefaultFormat = "flac" }},
		{"payload size", func(c *Config) { c.Audio.MinPayloadSize = -1 }},
		{"max duration", func(c *Config) { c.Audio.MaxDuration = -time.Second }},
		{"language", func(c *Config) { c.Analysis.DeclaredLanguage = "French" }},
		{"precision", func(c *Config) { c.Output.Precision = 20 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)
			assert.Error(t, ValidateConfig(config))
		})
	}
}

func TestGetDefaultOutputConfigForFormat(t *testing.T) {
	assert.Equal(t, 6, GetDefaultOutputConfigForFormat("json").Precision)
	assert.True(t, GetDefaultOutputConfigForFormat("yaml").IncludeFeatures)
	assert.Equal(t, 2, GetDefaultOutputConfigForFormat("table").Precision)
	assert.Equal(t, GetDefaultOutputConfig(), GetDefaultOutputConfigForFormat("other"))
}

func TestApplyFormatDefaults(t *testing.T) {
	none := func(string) bool { return false }

	config := GetDefaultConfig()
	config.OutputFormat = "json"
	ApplyFormatDefaults(config, none)
	assert.Equal(t, 6, config.Output.Precision)
	assert.True(t, config.Output.IncludeFeatures)

	config = GetDefaultConfig()
	ApplyFormatDefaults(config, none)
	assert.Equal(t, 2, config.Output.Precision)
	assert.False(t, config.Output.IncludeFeatures)

	// explicit values win over the format defaults
	config = GetDefaultConfig()
	config.OutputFormat = "yaml"
	config.Output.Precision = 4
	ApplyFormatDefaults(config, func(key string) bool {
		return key == "output.precision" || key == "output.include_features"
	})
	assert.Equal(t, 4, config.Output.Precision)
	assert.False(t, config.Output.IncludeFeatures)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "VOICE_DETECTOR_OUTPUT_PRECISION", EnvName("output.precision"))
	assert.Equal(t, "VOICE_DETECTOR_LOG_LEVEL", EnvName("log_level"))
}

func TestConfigSearchPaths(t *testing.T) {
	paths := ConfigSearchPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, "./configs", paths[len(paths)-1])
	assert.Contains(t, paths, filepath.Join("/etc", AppName))
}
