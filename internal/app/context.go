package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/voice-detector/configs"
	"github.com/RyanBlaney/voice-detector/internal/analysis"
	"github.com/RyanBlaney/voice-detector/pkg/audio/decode"
	"github.com/RyanBlaney/voice-detector/pkg/detection"
	"github.com/RyanBlaney/voice-detector/pkg/logging"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	InputFile       string // Audio file, or base64 payload file with Base64 set; "-" reads stdin
	Base64          bool
	Format          string // Overrides the format derived from the file extension
	Language        string
	OutputFile      string
	OutputFormat    string
	Timeout         time.Duration
	Verbose         bool
	IncludeFeatures bool
	IncludeSignals  bool

	// Config keys set for this run by flag or environment; they keep their
	// value over format-specific output defaults
	ExplicitKeys map[string]bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
	Stdin  io.Reader
	Stdout io.Writer
}

// DetectorApp handles the analysis application lifecycle
type DetectorApp struct {
	ctx      *Context
	config   *configs.Config
	language detection.Language
	logger   logging.Logger
}

// NewDetectorApp creates a new detector application
func NewDetectorApp(ctx *Context) (*DetectorApp, error) {
	config, err := loadAndMergeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config

	// Set up logging
	logger, err := setupLogging(ctx)
	if err != nil {
		return nil, err
	}
	ctx.Logger = logger

	language, err := detection.ParseLanguage(config.Analysis.DeclaredLanguage)
	if err != nil {
		return nil, err
	}

	if ctx.Stdin == nil {
		ctx.Stdin = os.Stdin
	}
	if ctx.Stdout == nil {
		ctx.Stdout = os.Stdout
	}

	logger.Debug("Detector application initialized", logging.Fields{
		"input":         ctx.InputFile,
		"language":      language,
		"output_format": config.OutputFormat,
		"parallel":      config.Analysis.Parallel,
		"direct_dft":    config.Analysis.DirectDFT,
	})

	return &DetectorApp{
		ctx:      ctx,
		config:   config,
		language: language,
		logger:   logger,
	}, nil
}

// Run analyzes the input and writes the report
func (app *DetectorApp) Run(ctx context.Context) error {
	if app.ctx.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.ctx.Timeout)
		defer cancel()
	}

	engine := analysis.NewEngine(&analysis.EngineConfig{
		Parallel:       app.config.Analysis.Parallel,
		DirectDFT:      app.config.Analysis.DirectDFT,
		MinPayloadSize: app.config.Audio.MinPayloadSize,
		MaxDuration:    app.config.Audio.MaxDuration,
		Logger:         app.logger,
	})

	report, err := app.analyze(ctx, engine)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := app.outputResults(report); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	return nil
}

func (app *DetectorApp) analyze(ctx context.Context, engine *analysis.Engine) (*analysis.Report, error) {
	input := app.ctx.InputFile

	if !app.ctx.Base64 && input != "-" && app.ctx.Format == "" {
		return engine.AnalyzeFile(ctx, input, app.language)
	}

	format, err := app.inputFormat()
	if err != nil {
		return nil, err
	}

	data, err := app.readInput()
	if err != nil {
		return nil, err
	}

	payload := string(data)
	if !app.ctx.Base64 {
		payload = base64.StdEncoding.EncodeToString(data)
	}

	report, err := engine.AnalyzeEncoded(ctx, payload, format, app.language)
	if err != nil {
		return nil, err
	}
	report.Source = input
	return report, nil
}

// inputFormat resolves the --format flag, the file extension, then the
// configured default
func (app *DetectorApp) inputFormat() (decode.Format, error) {
	switch {
	case app.ctx.Format != "":
		return decode.ParseFormat(app.ctx.Format)
	case app.ctx.InputFile != "-" && !app.ctx.Base64:
		return decode.ParseFormat(filepath.Ext(app.ctx.InputFile))
	default:
		return decode.ParseFormat(app.config.Audio.DefaultFormat)
	}
}

func (app *DetectorApp) readInput() ([]byte, error) {
	if app.ctx.InputFile == "-" {
		data, err := io.ReadAll(app.ctx.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(app.ctx.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

// outputResults renders the report and writes it to a file or stdout
func (app *DetectorApp) outputResults(report *analysis.Report) error {
	opts := OutputOptions{
		Precision:       app.config.Output.Precision,
		IncludeFeatures: app.config.Output.IncludeFeatures,
		IncludeSignals:  app.config.Output.IncludeSignals || app.config.Verbose,
	}

	data, err := NewFormatter(app.config.OutputFormat).Format(report, opts)
	if err != nil {
		return fmt.Errorf("failed to format output data: %w", err)
	}

	if app.config.Output.File != "" {
		return app.writeToFile(data)
	}

	_, err = app.ctx.Stdout.Write(data)
	return err
}

// writeToFile writes data to the configured output file
func (app *DetectorApp) writeToFile(data []byte) error {
	path := app.config.Output.File

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Debug("Results written to file", logging.Fields{
		"output_file": path,
		"size_bytes":  len(data),
	})

	return nil
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context) (logging.Logger, error) {
	level := logging.ParseLevel(ctx.Config.LogLevel)
	if ctx.Config.Verbose {
		level = logging.DebugLevel
	}

	logger, err := logging.NewLogger(level, ctx.Config.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	logging.SetDefault(logger)
	return logger, nil
}

// loadAndMergeConfig loads configuration and applies CLI flag overrides
func loadAndMergeConfig(ctx *Context) (*configs.Config, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}

	mergeContext(config, ctx)
	configs.ApplyFormatDefaults(config, func(key string) bool {
		return explicitlySet(ctx, key)
	})

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// explicitlySet reports whether a config key was chosen by the user rather
// than left at its default
func explicitlySet(ctx *Context, key string) bool {
	if ctx.ExplicitKeys[key] || viper.InConfig(key) {
		return true
	}
	if _, ok := os.LookupEnv(configs.EnvName(key)); ok {
		return true
	}
	return key == "output.include_features" && ctx.IncludeFeatures
}

// mergeContext lets explicit CLI arguments win over configured values
func mergeContext(config *configs.Config, ctx *Context) {
	if ctx.Language != "" {
		config.Analysis.DeclaredLanguage = ctx.Language
	}
	if ctx.OutputFormat != "" {
		config.OutputFormat = strings.ToLower(ctx.OutputFormat)
	}
	if ctx.OutputFile != "" {
		config.Output.File = ctx.OutputFile
	}
	if ctx.Verbose {
		config.Verbose = true
	}
	if ctx.IncludeFeatures {
		config.Output.IncludeFeatures = true
	}
	if ctx.IncludeSignals {
		config.Output.IncludeSignals = true
	}
}
