package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/voice-detector/configs"
)

var (
	configFile   string
	verbose      bool
	logLevel     string
	outputFormat string
	configDir    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "voice-detector",
	Short: "AI-generated voice detection for speech recordings",
	Long: `Analyze speech recordings and decide whether the voice is synthetic.

The detector decodes MP3 or WAV audio, extracts pitch, energy, spectral and
prosodic features, then runs two rule-based classifiers over them:
- Synthetic-voice classification (AI_GENERATED or HUMAN) with reasons
- Language identification across English, Tamil, Hindi, Malayalam and Telugu`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"config directory (default is $HOME/.config/voice-detector)")

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/voice-detector/config.yaml)")

	// Output and logging flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"output format (json, yaml, table)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output_format", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("config_dir", rootCmd.PersistentFlags().Lookup("config-dir"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(configFile)
	} else {
		if configDir != "" {
			viper.AddConfigPath(configDir)
		}
		for _, path := range configs.ConfigSearchPaths() {
			viper.AddConfigPath(path)
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variable support
	viper.SetEnvPrefix(configs.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// Set default values
	configs.SetDefaults(viper.GetViper())

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if configFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", configFile, err)
		os.Exit(1)
	}
}

// initializeConfig initializes configuration after flags are parsed
func initializeConfig(cmd *cobra.Command) error {
	// Bind all flags to viper
	return bindFlags(cmd, viper.GetViper())
}

// flagConfigKeys maps command flags onto their configuration keys
var flagConfigKeys = map[string]string{
	"language":         "analysis.declared_language",
	"parallel":         "analysis.parallel",
	"direct-dft":       "analysis.direct_dft",
	"max-duration":     "audio.max_duration",
	"min-payload-size": "audio.min_payload_size",
	"output-file":      "output.file",
	"precision":        "output.precision",
	"features":         "output.include_features",
	"signals":          "output.include_signals",
}

// bindFlags binds each mapped cobra flag to its viper configuration key
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagConfigKeys[f.Name]
		if !ok {
			return
		}

		// Bind the flag to viper
		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}

		// Bind to environment variables
		if err := v.BindEnv(append([]string{key}, flagEnvNames(f.Name, key)...)...); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

// flagEnvNames returns the environment variables read for a mapped flag:
// the config key form first, then the flag name form
func flagEnvNames(flag, key string) []string {
	return []string{
		configs.EnvName(key),
		configs.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_")),
	}
}

// explicitConfigKeys returns the config keys the user set for this run through
// a mapped flag or one of its environment variables
func explicitConfigKeys(cmd *cobra.Command) map[string]bool {
	keys := make(map[string]bool)

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagConfigKeys[f.Name]
		if !ok {
			return
		}
		if f.Changed {
			keys[key] = true
			return
		}
		for _, env := range flagEnvNames(f.Name, key) {
			if _, set := os.LookupEnv(env); set {
				keys[key] = true
			}
		}
	})

	return keys
}
