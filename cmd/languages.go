package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/voice-detector/pkg/detection"
)

// languagesCmd represents the languages command
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and their reference profiles",
	Long: `List the languages the detector can identify together with the reference
ranges each language profile is scored against.

Examples:
  voice-detector languages
  voice-detector languages -o yaml`,
	Args: cobra.NoArgs,
	RunE: runLanguages,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func runLanguages(cmd *cobra.Command, args []string) error {
	profiles := detection.Profiles()
	out := cmd.OutOrStdout()

	switch viper.GetString("output_format") {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(profiles)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(profiles)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LANGUAGE\tRHYTHM\tSYLLABLES/S\tZCR\tFORMANT RATIO\tVOWEL (S)\tINTONATION")
	for _, p := range profiles {
		fmt.Fprintf(w, "%s\t%s\t%.1f-%.1f (%.1f)\t%.3f-%.3f\t%.2f-%.2f\t%.2f-%.2f\t%.2f\n",
			p.Name, p.Rhythm,
			p.SyllableRate.Min, p.SyllableRate.Max, p.TypicalSyllableRate,
			p.ZeroCrossing.Min, p.ZeroCrossing.Max,
			p.FormantRatio.Min, p.FormantRatio.Max,
			p.VowelDuration.Min, p.VowelDuration.Max,
			p.IntonationVariance)
	}
	return w.Flush()
}
