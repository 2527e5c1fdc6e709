package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jywlabs/prdwiz/internal/archive"
	"github.com/jywlabs/prdwiz/internal/prd"
	"github.com/jywlabs/prdwiz/internal/template"
)

var (
	archiveNameFlag    string
	archiveDirFlag     string
	archiveVerboseFlag bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive the current PRD",
	Long: `Move prd.json and tasks/prd-*.md into archive/<date>-<name>/.

prompt.md is never moved. The name defaults to the feature part of the
branchName in prd.json.`,
	Args: cobra.NoArgs,
	RunE: runArchive,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all archives",
	Long: `List all archived PRDs with date, name, and completion stats.

Use --verbose for detailed output including branch name and full path.`,
	Args: cobra.NoArgs,
	RunE: runArchiveList,
}

func init() {
	archiveCmd.PersistentFlags().StringVarP(&archiveDirFlag, "dir", "d", ".", "Directory holding prd.json")
	archiveCmd.Flags().StringVar(&archiveNameFlag, "name", "", "Archive name (default: derived from branch name)")
	archiveListCmd.Flags().BoolVarP(&archiveVerboseFlag, "verbose", "v", false, "Show detailed output")

	archiveCmd.AddCommand(archiveListCmd)
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	dir := archiveDirFlag
	prdPath := filepath.Join(dir, template.PRDFile)
	if _, err := os.Stat(prdPath); os.IsNotExist(err) {
		return fmt.Errorf("%s not found - nothing to archive", prdPath)
	}

	name := archiveNameFlag
	if name == "" {
		name = deriveArchiveName(prdPath)
	}
	_, err := archive.Create(dir, name, cmd.OutOrStdout())
	return err
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	archives, err := archive.List(archiveDirFlag)
	if err != nil {
		return err
	}
	archive.FormatList(archives, cmd.OutOrStdout(), archiveVerboseFlag)
	return nil
}

// deriveArchiveName gets a default name from the prd.json branchName.
func deriveArchiveName(prdPath string) string {
	tracking, err := prd.LoadTracking(prdPath)
	if err != nil || tracking.BranchName == "" {
		return "feature"
	}
	return archive.FeatureFromBranch(tracking.BranchName)
}
