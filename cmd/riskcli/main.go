package main

import (
	"fmt"
	"os"

	"credit-risk/internal/cfg"
	"credit-risk/internal/common"
	"credit-risk/internal/termui"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	artifactDir string
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "riskcli",
	Short: "Estimate credit card default risk from the terminal",
	Long: `riskcli collects the customer fields of the credit risk model, predicts
the probability of default and explains which features drove it.

By default the model artifacts are loaded locally. With --server the
values are sent to a running credit risk server instead.

Examples:
  riskcli assess                                   # Interactive form, local model
  riskcli assess --set AGE=30 --set MAX_DELAY=2    # Pre-fill some fields
  riskcli assess --no-input --set AGE=30           # Defaults for the rest, no prompts
  riskcli assess --server http://localhost:8501    # Score on a running server
  riskcli schema                                   # List the input fields`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "URL of a running credit risk server (default: score locally)")
	rootCmd.PersistentFlags().StringVar(&artifactDir, "artifacts", "", "directory holding the model artifacts (overrides ARTIFACT_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of formatted output")

	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(schemaCmd)
}

// loadSettings reads the shared configuration and applies command-line
// overrides.
func loadSettings() (cfg.Settings, error) {
	c, err := cfg.Load()
	if err != nil {
		return c, err
	}
	if artifactDir != "" {
		c.ArtifactDir = artifactDir
	}
	if serverURL != "" {
		c.ServerURL = serverURL
	}
	// Info logs would interleave with the form.
	if c.LogLevel == common.DefaultLogLevel {
		c.LogLevel = "warn"
	}
	if err := cfg.ConfigureLogging(c, os.Stderr); err != nil {
		return c, err
	}
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, termui.Error(err.Error()))
		os.Exit(1)
	}
}
