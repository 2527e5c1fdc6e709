// Package archive moves a previous feature's artifacts aside before a
// different feature overwrites them.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jywlabs/prdwiz/internal/prd"
	"github.com/jywlabs/prdwiz/internal/template"
)

// ArchiveInfo describes one archived feature.
type ArchiveInfo struct {
	Name       string
	Dir        string
	BranchName string
	Completed  int
	Total      int
}

// Create moves prd.json and tasks/prd-*.md from dir into
// dir/archive/<date>-<name>/. prompt.md is static and stays in place.
// It returns the archive directory path on success.
func Create(dir, name string, w io.Writer) (string, error) {
	if !fileExists(filepath.Join(dir, template.PRDFile)) {
		return "", fmt.Errorf("no feature state to archive (no %s found)", template.PRDFile)
	}
	name = prd.Slug(name)

	datePart := time.Now().Format("2006-01-02")
	archiveDir := resolveCollision(filepath.Join(dir, template.ArchiveDir, datePart+"-"+name))
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := moveFile(filepath.Join(dir, template.PRDFile), filepath.Join(archiveDir, template.PRDFile)); err != nil {
		return "", fmt.Errorf("failed to move %s: %w", template.PRDFile, err)
	}
	fmt.Fprintf(w, "  archived %s\n", template.PRDFile)

	prdMDs, _ := filepath.Glob(filepath.Join(dir, template.TasksDir, "prd-*.md"))
	if len(prdMDs) > 0 {
		tasksDst := filepath.Join(archiveDir, template.TasksDir)
		if err := os.MkdirAll(tasksDst, 0755); err != nil {
			return "", fmt.Errorf("failed to create archive tasks directory: %w", err)
		}
		for _, src := range prdMDs {
			base := filepath.Base(src)
			if err := moveFile(src, filepath.Join(tasksDst, base)); err != nil {
				return "", fmt.Errorf("failed to move %s/%s: %w", template.TasksDir, base, err)
			}
			fmt.Fprintf(w, "  archived %s/%s\n", template.TasksDir, base)
		}
	}

	fmt.Fprintf(w, "  archived to %s\n", filepath.Base(archiveDir))
	return archiveDir, nil
}

// IfSwitching archives the current feature when prd.json in dir belongs to a
// branch other than newBranch. It returns the archive directory, or "" when
// nothing was archived.
func IfSwitching(dir, newBranch string, w io.Writer) (string, error) {
	current, err := prd.LoadTracking(filepath.Join(dir, template.PRDFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read current %s: %w", template.PRDFile, err)
	}
	if current.BranchName == "" || current.BranchName == newBranch {
		return "", nil
	}
	return Create(dir, FeatureFromBranch(current.BranchName), w)
}

// List returns archived features sorted by name (oldest date first).
// Malformed prd.json files yield zero stats rather than an error.
func List(dir string) ([]ArchiveInfo, error) {
	root := filepath.Join(dir, template.ArchiveDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []ArchiveInfo{}, nil
		}
		return nil, err
	}

	archives := []ArchiveInfo{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info := ArchiveInfo{Name: e.Name(), Dir: filepath.Join(root, e.Name())}
		if t, err := prd.LoadTracking(filepath.Join(info.Dir, template.PRDFile)); err == nil {
			info.BranchName = t.BranchName
			info.Completed, info.Total = t.Progress()
		}
		archives = append(archives, info)
	}
	sort.Slice(archives, func(i, j int) bool { return archives[i].Name < archives[j].Name })
	return archives, nil
}

// FormatList writes one line per archive.
func FormatList(archives []ArchiveInfo, w io.Writer, verbose bool) {
	if len(archives) == 0 {
		fmt.Fprintln(w, "No archives found.")
		return
	}
	for _, a := range archives {
		fmt.Fprintf(w, "  %-40s %d/%d stories\n", a.Name, a.Completed, a.Total)
		if verbose {
			fmt.Fprintf(w, "    branch: %s\n    path:   %s\n", a.BranchName, a.Dir)
		}
	}
}

// FeatureFromBranch strips the branch prefix (everything up to the last
// slash) from a branch name.
func FeatureFromBranch(branchName string) string {
	if i := strings.LastIndex(branchName, "/"); i >= 0 {
		return branchName[i+1:]
	}
	return branchName
}

// resolveCollision appends -2, -3, etc. if the directory already exists.
func resolveCollision(dir string) string {
	if !dirExists(dir) {
		return dir
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", dir, i)
		if !dirExists(candidate) {
			return candidate
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
