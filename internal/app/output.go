package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/voice-detector/internal/analysis"
	"github.com/RyanBlaney/voice-detector/pkg/detection"
)

// Formatter renders an analysis report
type Formatter interface {
	Format(report *analysis.Report, opts OutputOptions) ([]byte, error)
}

// OutputOptions controls how much of a report is rendered
type OutputOptions struct {
	Precision       int
	IncludeFeatures bool
	IncludeSignals  bool
}

// NewFormatter returns the formatter for format, falling back to JSON
func NewFormatter(format string) Formatter {
	switch format {
	case "yaml":
		return &YAMLFormatter{}
	case "table":
		return &TableFormatter{}
	default:
		return &JSONFormatter{}
	}
}

// JSONFormatter renders indented JSON
type JSONFormatter struct{}

func (f *JSONFormatter) Format(report *analysis.Report, opts OutputOptions) ([]byte, error) {
	data, err := json.MarshalIndent(buildOutput(report, opts), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json: %w", err)
	}
	return append(data, '\n'), nil
}

// YAMLFormatter renders YAML
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(report *analysis.Report, opts OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(buildOutput(report, opts)); err != nil {
		return nil, fmt.Errorf("failed to marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TableFormatter renders a human readable summary
type TableFormatter struct{}

func (f *TableFormatter) Format(report *analysis.Report, opts OutputOptions) ([]byte, error) {
	result := report.Result
	lang := result.LanguageDetection
	num := func(v float64) string {
		return fmt.Sprintf("%.*f", opts.Precision, v)
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Source:\t%s\n", report.Source)
	fmt.Fprintf(w, "Format:\t%s\n", report.Format)
	fmt.Fprintf(w, "Duration:\t%ss @ %d Hz\n", num(report.Duration.Seconds()), report.SampleRate)
	fmt.Fprintf(w, "Classification:\t%s%s%s\n", classificationColor(result.IsAI), result.Classification(), ColorReset)
	fmt.Fprintf(w, "Confidence:\t%s\n", num(result.Confidence))
	fmt.Fprintf(w, "Synthetic score:\t%s\n", num(result.Score))
	fmt.Fprintf(w, "Explanation:\t%s\n", result.Explanation())
	fmt.Fprintf(w, "Declared language:\t%s\n", lang.SelectedLanguage)
	fmt.Fprintf(w, "Detected language:\t%s (confidence %s)\n", lang.DetectedLanguage, num(lang.Confidence))
	if lang.Mismatch() {
		fmt.Fprintf(w, "Language mismatch:\t%s%s%s\n", ColorYellow, analysis.NewResponse(report).Message, ColorReset)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "LANGUAGE\tSCORE")
	for _, l := range detection.Languages() {
		fmt.Fprintf(w, "%s\t%.2f\n", l, lang.LanguageScores[l])
	}

	if opts.IncludeFeatures && result.Features != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "FEATURE\tVALUE")
		for _, nv := range result.Features.Named() {
			fmt.Fprintf(w, "%s\t%s\n", nv.Name, num(nv.Value))
		}
	}

	if opts.IncludeSignals {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "SIGNAL\tVALUE\tWEIGHT\tCONTRIBUTION\tREASON")
		for _, s := range result.Signals {
			reason := ""
			if s.Reason != 0 {
				reason = s.Reason.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%s\n", s.Name, num(s.Value), s.Weight, s.Contribution, reason)
		}
	}

	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func classificationColor(isAI bool) string {
	if isAI {
		return ColorRed
	}
	return ColorGreen
}

// buildOutput assembles the serializable view of a report
func buildOutput(report *analysis.Report, opts OutputOptions) map[string]any {
	result := report.Result
	out := map[string]any{
		"response": analysis.NewResponse(report),
		"source": map[string]any{
			"path":        report.Source,
			"format":      report.Format,
			"sample_rate": report.SampleRate,
			"duration_s":  roundTo(report.Duration.Seconds(), opts.Precision),
			"truncated":   report.Truncated,
		},
		"is_ai":              result.IsAI,
		"confidence":         roundTo(result.Confidence, opts.Precision),
		"score":              roundTo(result.Score, opts.Precision),
		"reasons":            result.Reasons,
		"language_detection": result.LanguageDetection,
		"timing_ms": map[string]any{
			"decode":   report.DecodeTime.Milliseconds(),
			"analysis": report.AnalysisTime.Milliseconds(),
			"total":    report.TotalProcessingTime.Milliseconds(),
		},
		"timestamp": report.Timestamp,
	}

	if opts.IncludeFeatures && result.Features != nil {
		features := make(map[string]float64)
		for _, nv := range result.Features.Named() {
			features[nv.Name] = roundTo(nv.Value, opts.Precision)
		}
		out["features"] = features
	}

	if opts.IncludeSignals {
		out["signals"] = result.Signals
	}

	return sanitizeForJSON(out).(map[string]any)
}

func roundTo(v float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale
}

// sanitizeForJSON recursively replaces infinite and NaN floats with zero
func sanitizeForJSON(data any) any {
	switch v := data.(type) {
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0.0
		}
		return v
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, val := range v {
			result[k] = sanitizeForJSON(val)
		}
		return result
	case map[string]float64:
		result := make(map[string]float64, len(v))
		for k, val := range v {
			result[k] = sanitizeForJSON(val).(float64)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = sanitizeForJSON(val)
		}
		return result
	default:
		return sanitizeWithReflection(data)
	}
}

// sanitizeWithReflection checks structs for non-finite floats and only
// converts them when one is found, so well-formed values keep their
// marshalers
func sanitizeWithReflection(data any) any {
	if data == nil || !hasNonFinite(reflect.ValueOf(data)) {
		return data
	}

	val := reflect.Indirect(reflect.ValueOf(data))
	if val.Kind() != reflect.Struct {
		return data
	}

	result := make(map[string]any)
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanInterface() {
			continue
		}
		name := typ.Field(i).Name
		if tag := typ.Field(i).Tag.Get("json"); tag != "" && tag != "-" {
			if parts := strings.Split(tag, ","); parts[0] != "" {
				name = parts[0]
			}
		}
		result[name] = sanitizeForJSON(field.Interface())
	}
	return result
}

func hasNonFinite(val reflect.Value) bool {
	switch val.Kind() {
	case reflect.Pointer, reflect.Interface:
		return !val.IsNil() && hasNonFinite(val.Elem())
	case reflect.Float32, reflect.Float64:
		f := val.Float()
		return math.IsInf(f, 0) || math.IsNaN(f)
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			if hasNonFinite(val.Field(i)) {
				return true
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len(); i++ {
			if hasNonFinite(val.Index(i)) {
				return true
			}
		}
	case reflect.Map:
		for _, k := range val.MapKeys() {
			if hasNonFinite(val.MapIndex(k)) {
				return true
			}
		}
	}
	return false
}
