package prd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"test feature", "test-feature"},
		{"Unified Onboarding!", "unified-onboarding"},
		{"Add Dark Mode", "add-dark-mode"},
		{"fix bug #123", "fix-bug-123"},
		{"  --Leading and trailing--  ", "leading-and-trailing"},
		{"!!!", "feature"},
		{"", "feature"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Slug(tt.input); got != tt.expected {
				t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestResolvePaths(t *testing.T) {
	dir := t.TempDir()

	p, err := ResolvePaths(dir, "Unified Onboarding!")
	if err != nil {
		t.Fatalf("ResolvePaths() unexpected error: %v", err)
	}
	if want := filepath.Join(dir, "tasks", "prd-unified-onboarding.md"); p.Markdown != want {
		t.Errorf("Markdown = %q, want %q", p.Markdown, want)
	}
	if want := filepath.Join(dir, "prd.json"); p.JSON != want {
		t.Errorf("JSON = %q, want %q", p.JSON, want)
	}
	if want := filepath.Join(dir, "prompt.md"); p.Prompt != want {
		t.Errorf("Prompt = %q, want %q", p.Prompt, want)
	}
	if want := filepath.Join(dir, "tasks"); p.Tasks != want {
		t.Errorf("Tasks = %q, want %q", p.Tasks, want)
	}
}

func TestResolvePaths_DefaultsToWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	p, err := ResolvePaths("", "x")
	if err != nil {
		t.Fatalf("ResolvePaths() unexpected error: %v", err)
	}
	if p.Dir != wd {
		t.Errorf("Dir = %q, want %q", p.Dir, wd)
	}
}

func TestDefaultBranch(t *testing.T) {
	if got := DefaultBranch("Task Lists"); got != "ralph/task-lists" {
		t.Errorf("DefaultBranch() = %q", got)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	p, err := ResolvePaths(dir, "Task Lists")
	if err != nil {
		t.Fatal(err)
	}
	a, err := Render("Task Lists", sampleData())
	if err != nil {
		t.Fatal(err)
	}

	if err := WriteArtifacts(p, a, false); err != nil {
		t.Fatalf("WriteArtifacts() unexpected error: %v", err)
	}
	md, err := os.ReadFile(p.Markdown)
	if err != nil || string(md) != a.Markdown {
		t.Errorf("markdown not written: %v", err)
	}
	tr, err := LoadTracking(p.JSON)
	if err != nil {
		t.Fatalf("LoadTracking() unexpected error: %v", err)
	}
	if len(tr.UserStories) != 3 {
		t.Errorf("len(UserStories) = %d, want 3", len(tr.UserStories))
	}
	if _, err := os.Stat(p.Prompt); !os.IsNotExist(err) {
		t.Error("prompt.md should not be written without withPrompt")
	}

	if err := WriteArtifacts(p, a, true); err != nil {
		t.Fatalf("WriteArtifacts(withPrompt) unexpected error: %v", err)
	}
	prompt, err := os.ReadFile(p.Prompt)
	if err != nil || string(prompt) != RenderPrompt() {
		t.Errorf("prompt.md not written verbatim: %v", err)
	}
}
