package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jywlabs/prdwiz/internal/prd"
)

var promptCmd = &cobra.Command{
	Use:   "prompt [dir]",
	Short: "Write only prompt.md",
	Long: `Write the agent loop instructions to <dir>/prompt.md.

The prompt is static: it tells an autonomous agent to pick the highest
priority story in prd.json that has not passed, implement it, and mark it
done. The directory defaults to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	}
	paths, err := prd.ResolvePaths(dir, "")
	if err != nil {
		return err
	}
	if err := prd.WritePrompt(paths); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", paths.Prompt)
	return nil
}
