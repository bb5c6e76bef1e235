package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/voice-detector/internal/app"
)

var (
	// Analyze command flags
	analyzeLanguage       string
	analyzeFormat         string
	analyzeBase64         bool
	analyzeOutputFile     string
	analyzeFeatures       bool
	analyzeSignals        bool
	analyzeParallel       bool
	analyzeDirectDFT      bool
	analyzeMaxDuration    time.Duration
	analyzeMinPayloadSize int
	analyzePrecision      int
	analyzeTimeout        time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <audio-file|->",
	Short: "Classify a recording as AI-generated or human",
	Long: `Decode a recording, extract acoustic features and classify the voice.

The input is an MP3 or WAV file, or "-" to read from stdin. With --base64 the
input holds a base64 payload (a data URL prefix is accepted) instead of raw
audio bytes.

Examples:
  # Analyze an MP3 file declared as Tamil speech
  voice-detector analyze --language Tamil sample.mp3

  # Analyze a base64 payload from stdin and print JSON
  cat payload.b64 | voice-detector analyze --base64 --format mp3 -o json -

  # Include the feature vector and rule trace
  voice-detector analyze --features --signals -o yaml sample.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeLanguage, "language", "l", "",
		"declared language (English, Tamil, Hindi, Malayalam, Telugu)")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "",
		"audio format (mp3, wav); derived from the file extension when omitted")
	analyzeCmd.Flags().BoolVar(&analyzeBase64, "base64", false,
		"input contains a base64 encoded payload")
	analyzeCmd.Flags().StringVar(&analyzeOutputFile, "output-file", "",
		"write the report to this file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeFeatures, "features", false,
		"include the extracted feature vector")
	analyzeCmd.Flags().BoolVar(&analyzeSignals, "signals", false,
		"include the synthetic-voice rule trace")
	analyzeCmd.Flags().BoolVar(&analyzeParallel, "parallel", true,
		"run pitch and spectral analysis concurrently")
	analyzeCmd.Flags().BoolVar(&analyzeDirectDFT, "direct-dft", false,
		"compute spectra by direct DFT instead of FFT")
	analyzeCmd.Flags().DurationVar(&analyzeMaxDuration, "max-duration", 0,
		"truncate recordings longer than this (0 disables)")
	analyzeCmd.Flags().IntVar(&analyzeMinPayloadSize, "min-payload-size", 100,
		"minimum base64 payload length")
	analyzeCmd.Flags().IntVar(&analyzePrecision, "precision", 3,
		"decimal places in rendered numbers")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute,
		"abort the analysis after this long")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timer := NewPerformanceTimer()

	// Language, output and analysis flags reach the app through viper
	appCtx := &app.Context{
		InputFile:    args[0],
		Base64:       analyzeBase64,
		Format:       analyzeFormat,
		Timeout:      analyzeTimeout,
		ExplicitKeys: explicitConfigKeys(cmd),
		Stdout:       cmd.OutOrStdout(),
		Stdin:        cmd.InOrStdin(),
	}

	detector, err := app.NewDetectorApp(appCtx)
	if err != nil {
		return err
	}

	if err := detector.Run(ctx); err != nil {
		return err
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(cmd.ErrOrStderr(), "%sCompleted in %s%s\n", app.ColorCyan, timer.Elapsed().Round(time.Millisecond), app.ColorReset)
	}
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
