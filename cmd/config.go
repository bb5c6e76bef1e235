package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/voice-detector/configs"
	"github.com/RyanBlaney/voice-detector/internal/app"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display, generate and validate configuration",
	Long: `Display the effective configuration after merging defaults, the config
file, environment variables and flags.

Examples:
  # Show the effective configuration
  voice-detector config

  # Show it with a specific config file
  voice-detector --config /path/to/config.yaml config

  # Write an example config file
  voice-detector config init ~/.config/voice-detector/config.yaml

  # Validate a config file
  voice-detector config validate ./configs/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init <file>",
	Short: "Write an example configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.GenerateExampleConfig(args[0])
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ValidateConfig(args[0])
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "VOICE DETECTOR CONFIGURATION")
	fmt.Fprintln(out, strings.Repeat("=", 80))

	// Load configuration
	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection(out, "APPLICATION SETTINGS")
	printKeyValue(out, "Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue(out, "Log Level", config.LogLevel)
	printKeyValue(out, "Output Format", config.OutputFormat)
	printKeyValue(out, "Config Directory", config.ConfigDir)

	printSection(out, "AUDIO INPUT")
	printKeyValue(out, "Default Format", config.Audio.DefaultFormat)
	printKeyValue(out, "Min Payload Size", fmt.Sprintf("%d", config.Audio.MinPayloadSize))
	printKeyValue(out, "Max Duration", config.Audio.MaxDuration.String())

	printSection(out, "ANALYSIS")
	printKeyValue(out, "Parallel Stages", fmt.Sprintf("%t", config.Analysis.Parallel))
	printKeyValue(out, "Direct DFT", fmt.Sprintf("%t", config.Analysis.DirectDFT))
	printKeyValue(out, "Declared Language", config.Analysis.DeclaredLanguage)

	printSection(out, "OUTPUT")
	printKeyValue(out, "Precision", fmt.Sprintf("%d", config.Output.Precision))
	printKeyValue(out, "Include Features", fmt.Sprintf("%t", config.Output.IncludeFeatures))
	printKeyValue(out, "Include Signals", fmt.Sprintf("%t", config.Output.IncludeSignals))
	printKeyValue(out, "File", config.Output.File)

	fmt.Fprintln(out)
	if err := configs.ValidateConfig(config); err != nil {
		fmt.Fprintln(out, app.ColorRed+strings.Repeat("-", 80))
		fmt.Fprintf(out, "CONFIGURATION INVALID: %v\n", err)
		fmt.Fprintln(out, strings.Repeat("-", 80)+app.ColorReset)
		return err
	}

	fmt.Fprintln(out, app.ColorGreen+strings.Repeat("-", 80))
	fmt.Fprintln(out, "CONFIGURATION VALID")
	fmt.Fprintf(out, "Config file: %s\n", getConfigFilePath())
	fmt.Fprintln(out, strings.Repeat("-", 80)+app.ColorReset)
	return nil
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

func printKeyValue(w io.Writer, key, value string) {
	if value == "" {
		fmt.Fprintf(w, "%-35s\n", key)
	} else {
		fmt.Fprintf(w, "%-35s %s\n", key+":", value)
	}
}

func getConfigFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return "(none, defaults in use)"
}
