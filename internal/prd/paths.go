package prd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jywlabs/prdwiz/internal/template"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug converts a name to kebab-case for use in file names. A name with no
// letters or digits yields "feature".
func Slug(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "feature"
	}
	return slug
}

// DefaultBranch returns the branch name used when synthesis doesn't supply one.
func DefaultBranch(featureName string) string {
	return "ralph/" + Slug(featureName)
}

// Paths are the artifact locations for one feature.
type Paths struct {
	Dir      string
	Tasks    string
	Markdown string
	JSON     string
	Prompt   string
}

// ResolvePaths maps an output directory and feature name to artifact paths.
// An empty outputDir means the current working directory.
func ResolvePaths(outputDir, featureName string) (Paths, error) {
	dir := outputDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Paths{}, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		dir = wd
	}
	dir = filepath.Clean(dir)

	tasks := filepath.Join(dir, template.TasksDir)
	return Paths{
		Dir:      dir,
		Tasks:    tasks,
		Markdown: filepath.Join(tasks, "prd-"+Slug(featureName)+".md"),
		JSON:     filepath.Join(dir, template.PRDFile),
		Prompt:   filepath.Join(dir, template.PromptFile),
	}, nil
}
