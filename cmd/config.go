package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jywlabs/prdwiz/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long: `Show the effective prdwiz configuration.

Values are layered: built-in defaults, .prdwiz/config.yaml, .env, the
environment, then --model and --log-level. The API key is masked.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if _, err := os.Stat(config.Path(".")); os.IsNotExist(err) {
		fmt.Fprintf(out, "No %s found (run 'prdwiz init' to create one)\n\n", config.Path("."))
	}
	fmt.Fprintf(out, "Sources: %s\n\n", strings.Join(cfg.Sources, " -> "))
	fmt.Fprint(out, cfg.String())
	return nil
}
