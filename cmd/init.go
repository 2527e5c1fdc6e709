package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jywlabs/prdwiz/internal/prd"
	"github.com/jywlabs/prdwiz/internal/template"
)

var initPromptFlag bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .prdwiz/ directory",
	Long: `Initialize the .prdwiz/ directory in the current project.

Creates:
  .prdwiz/
    config.yaml    # Model, logging and output settings

With --prompt, also writes prompt.md next to it.

Existing files are left untouched.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initPromptFlag, "prompt", false, "Also write prompt.md")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	return initProject(".", initPromptFlag, cmd.OutOrStdout())
}

// initProject creates dir/.prdwiz/config.yaml and, when withPrompt is set,
// dir/prompt.md. Files that already exist are kept.
func initProject(dir string, withPrompt bool, w io.Writer) error {
	configDir := filepath.Join(dir, template.ConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", configDir, err)
	}

	var created, skipped []string
	configPath := filepath.Join(configDir, template.ConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		skipped = append(skipped, configPath)
	} else {
		if err := os.WriteFile(configPath, []byte(template.DefaultConfig), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", configPath, err)
		}
		created = append(created, configPath)
	}

	if withPrompt {
		paths, err := prd.ResolvePaths(dir, "")
		if err != nil {
			return err
		}
		if _, err := os.Stat(paths.Prompt); err == nil {
			skipped = append(skipped, paths.Prompt)
		} else {
			if err := prd.WritePrompt(paths); err != nil {
				return err
			}
			created = append(created, paths.Prompt)
		}
	}

	fmt.Fprintf(w, "Initialized %s\n", configDir)
	for _, p := range created {
		fmt.Fprintf(w, "  created  %s\n", p)
	}
	for _, p := range skipped {
		fmt.Fprintf(w, "  exists   %s\n", p)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintf(w, "  1. Set %s (environment or .env)\n", "OPENAI_API_KEY")
	fmt.Fprintln(w, "  2. Run: prdwiz")
	return nil
}
