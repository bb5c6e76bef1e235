package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/voice-detector/configs"
	"github.com/RyanBlaney/voice-detector/internal/analysis"
	"github.com/RyanBlaney/voice-detector/pkg/audio/decode"
	"github.com/RyanBlaney/voice-detector/pkg/detection"
)

func writeToneWAV(t *testing.T, dir string) string {
	t.Helper()

	const rate = 16000
	path := filepath.Join(dir, "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	data := make([]int, 2*rate)
	for i := range data {
		data[i] = int(math.Round(0.5 * 32767 * math.Sin(2*math.Pi*150*float64(i)/rate)))
	}

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

func sampleReport(t *testing.T) *analysis.Report {
	t.Helper()
	report, err := analysis.NewEngine(nil).AnalyzeFile(context.Background(), writeToneWAV(t, t.TempDir()), detection.English)
	require.NoError(t, err)
	return report
}

func TestJSONFormatter(t *testing.T) {
	report := sampleReport(t)
	report.Result.LanguageDetection.IsLanguageMatch = true

	data, err := NewFormatter("json").Format(report, OutputOptions{Precision: 3, IncludeFeatures: true})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	response := decoded["response"].(map[string]any)
	assert.Equal(t, "success", response["status"])
	assert.Equal(t, "AI_GENERATED", response["classification"])
	assert.Equal(t, "English", response["language"])
	assert.Contains(t, decoded, "features")
	assert.NotContains(t, decoded, "signals")

	features := decoded["features"].(map[string]any)
	assert.Len(t, features, 19)
	assert.InDelta(t, 150, features["pitch_mean"].(float64), 5)

	reasons := decoded["reasons"].([]any)
	require.NotEmpty(t, reasons)
	assert.Equal(t, detection.ReasonUnnaturalPitchConsistency.String(), reasons[0])
}

func TestOutputRejectsLanguageMismatch(t *testing.T) {
	report := sampleReport(t)
	report.Result.LanguageDetection.DetectedLanguage = detection.Tamil
	report.Result.LanguageDetection.IsLanguageMatch = false
	report.Result.LanguageDetection.Confidence = 0.73

	data, err := NewFormatter("json").Format(report, OutputOptions{Precision: 3})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	response := decoded["response"].(map[string]any)
	assert.Equal(t, "error", response["status"])
	assert.Contains(t, response["message"], `You selected "English" but the audio appears to be "Tamil" (73.0% confidence)`)
	assert.NotContains(t, response, "classification")

	// the full verdict is still reported
	assert.Equal(t, report.Result.IsAI, decoded["is_ai"])
	assert.Contains(t, decoded, "confidence")
}

func TestYAMLFormatter(t *testing.T) {
	report := sampleReport(t)

	data, err := NewFormatter("yaml").Format(report, OutputOptions{Precision: 2, IncludeSignals: true})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["is_ai"])
	assert.Contains(t, decoded, "signals")
	assert.NotContains(t, decoded, "features")
	assert.Len(t, decoded["signals"], 8)
}

func TestTableFormatter(t *testing.T) {
	report := sampleReport(t)

	data, err := NewFormatter("table").Format(report, OutputOptions{Precision: 2, IncludeFeatures: true, IncludeSignals: true})
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "AI_GENERATED")
	for _, lang := range detection.Languages() {
		assert.Contains(t, out, string(lang))
	}
	assert.Contains(t, out, "pitch_mean")
	assert.Contains(t, out, "pitch_variance")
	assert.Contains(t, out, "SIGNAL")
}

func TestSanitizeForJSON(t *testing.T) {
	in := map[string]any{
		"nan":      math.NaN(),
		"inf":      math.Inf(1),
		"ok":       1.5,
		"nested":   []any{math.Inf(-1), 2.0},
		"features": map[string]float64{"a": math.NaN()},
		"struct":   &analysis.Response{Status: "success", ConfidenceScore: math.NaN()},
		"clean":    &analysis.Response{Status: "success", ConfidenceScore: 0.9},
	}

	out := sanitizeForJSON(in).(map[string]any)
	assert.Equal(t, 0.0, out["nan"])
	assert.Equal(t, 0.0, out["inf"])
	assert.Equal(t, 1.5, out["ok"])
	assert.Equal(t, []any{0.0, 2.0}, out["nested"])
	assert.Equal(t, map[string]float64{"a": 0}, out["features"])
	assert.Equal(t, map[string]any{
		"status":          "success",
		"language":        "",
		"classification":  "",
		"confidenceScore": 0.0,
		"explanation":     "",
		"message":         "",
	}, out["struct"])
	assert.Equal(t, in["clean"], out["clean"])

	_, err := json.Marshal(out)
	assert.NoError(t, err)
}

func TestMergeContext(t *testing.T) {
	config := configs.GetDefaultConfig()
	mergeContext(config, &Context{
		Language:        "tamil",
		OutputFormat:    "YAML",
		OutputFile:      "out.yaml",
		Verbose:         true,
		IncludeFeatures: true,
	})

	assert.Equal(t, "tamil", config.Analysis.DeclaredLanguage)
	assert.Equal(t, "yaml", config.OutputFormat)
	assert.Equal(t, "out.yaml", config.Output.File)
	assert.True(t, config.Verbose)
	assert.True(t, config.Output.IncludeFeatures)
	assert.False(t, config.Output.IncludeSignals)

	untouched := configs.GetDefaultConfig()
	mergeContext(untouched, &Context{})
	assert.Equal(t, configs.GetDefaultConfig(), untouched)
}

func TestLoadAndMergeConfigFormatDefaults(t *testing.T) {
	config, err := loadAndMergeConfig(&Context{OutputFormat: "json"})
	require.NoError(t, err)
	assert.Equal(t, 6, config.Output.Precision)
	assert.True(t, config.Output.IncludeFeatures)

	config, err = loadAndMergeConfig(&Context{OutputFormat: "table"})
	require.NoError(t, err)
	assert.Equal(t, 2, config.Output.Precision)
	assert.False(t, config.Output.IncludeFeatures)

	config, err = loadAndMergeConfig(&Context{
		OutputFormat: "yaml",
		ExplicitKeys: map[string]bool{"output.precision": true, "output.include_features": true},
	})
	require.NoError(t, err)
	assert.Equal(t, configs.GetDefaultOutputConfig().Precision, config.Output.Precision)
	assert.False(t, config.Output.IncludeFeatures)

	config, err = loadAndMergeConfig(&Context{OutputFormat: "table", IncludeFeatures: true})
	require.NoError(t, err)
	assert.True(t, config.Output.IncludeFeatures)
}

func TestGenerateAndValidateExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, GenerateExampleConfig(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "declared_language: English")

	assert.NoError(t, ValidateConfig(path))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("analysis:\n  declared_language: French\n"), 0o644))
	assert.Error(t, ValidateConfig(bad))

	assert.Error(t, ValidateConfig(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestDetectorAppRun(t *testing.T) {
	dir := t.TempDir()
	wavPath := writeToneWAV(t, dir)

	raw, err := os.ReadFile(wavPath)
	require.NoError(t, err)
	b64Path := filepath.Join(dir, "tone.b64")
	require.NoError(t, os.WriteFile(b64Path, []byte(base64.StdEncoding.EncodeToString(raw)), 0o644))

	tests := []struct {
		name string
		ctx  *Context
	}{
		{"wav file", &Context{InputFile: wavPath}},
		{"base64 file", &Context{InputFile: b64Path, Base64: true, Format: "wav"}},
		{"stdin", &Context{InputFile: "-", Format: "wav", Stdin: bytes.NewReader(raw)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			tt.ctx.Language = "english"
			tt.ctx.OutputFormat = "json"
			tt.ctx.Stdout = &stdout
			tt.ctx.Timeout = time.Minute

			app, err := NewDetectorApp(tt.ctx)
			require.NoError(t, err)
			require.NoError(t, app.Run(context.Background()))

			var decoded map[string]any
			require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
			assert.Equal(t, true, decoded["is_ai"])
			assert.Equal(t, tt.ctx.InputFile, decoded["source"].(map[string]any)["path"])
		})
	}
}

func TestDetectorAppWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "reports", "result.yaml")

	app, err := NewDetectorApp(&Context{
		InputFile:    writeToneWAV(t, dir),
		Language:     "Hindi",
		OutputFormat: "yaml",
		OutputFile:   out,
	})
	require.NoError(t, err)
	require.NoError(t, app.Run(context.Background()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "selected_language: Hindi"))
}

func TestDetectorAppErrors(t *testing.T) {
	_, err := NewDetectorApp(&Context{InputFile: "x.wav", Language: "French"})
	assert.ErrorIs(t, err, detection.ErrUnsupportedLanguage)

	app, err := NewDetectorApp(&Context{InputFile: filepath.Join(t.TempDir(), "missing.mp3"), Stdout: &bytes.Buffer{}})
	require.NoError(t, err)
	err = app.Run(context.Background())
	require.Error(t, err)
	assert.True(t, decode.IsDecodeError(err))
}
