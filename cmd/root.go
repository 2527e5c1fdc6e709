package cmd

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jywlabs/prdwiz/internal/config"
	"github.com/jywlabs/prdwiz/internal/display"
	"github.com/jywlabs/prdwiz/internal/llm"
	"github.com/jywlabs/prdwiz/internal/prd"
)

// errReported marks an error the command already printed.
var errReported = errors.New("error already reported")

var (
	modelFlag    string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "prdwiz",
	Short: "prdwiz - Interview-driven PRD generator",
	Long: `prdwiz turns a short brief into a Product Requirements Document by
interviewing you one question at a time.

Running prdwiz with no subcommand starts the interview.

Outputs:
  tasks/prd-<feature>.md   Human-readable PRD
  prd.json                 Story tracking file for an autonomous agent loop
  prompt.md                Agent loop instructions (with --prompt)

Commands:
  interview   Interview-driven PRD generation (default)
  quick       Multiple-choice PRD generation
  serve       Run the web API
  prompt      Write only prompt.md
  init        Create .prdwiz/config.yaml
  archive     Archive or list previous PRDs
  config      Show the effective configuration
  version     Show version info`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInterview,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			display.NewDisplay(os.Stderr).ShowError(err.Error())
		}
		os.Exit(1)
	}
}

// loadConfig reads the configuration for the working directory and applies
// persistent flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
		cfg.Sources = append(cfg.Sources, "flags")
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
		cfg.Sources = append(cfg.Sources, "flags")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newGenerator wires the OpenAI client behind a gateway. The client is
// returned as well so serve can use it for transcription.
func newGenerator(cfg *config.Config, logger *log.Logger) (*prd.Generator, *llm.OpenAIClient, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, nil, err
	}
	client := llm.NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.TranscribeModel)
	gateway := llm.NewGateway(client, cfg.Model, logger)
	return prd.NewGenerator(gateway), client, nil
}
