package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestArtifact(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"trailing newline", "# PRD\n", "--- a.md ---\n# PRD\n"},
		{"no trailing newline", "{}", "--- a.md ---\n{}\n"},
		{"empty", "", "--- a.md ---\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := New(&buf)
			p.Artifact("a.md", []byte(tt.content))
			if buf.String() != tt.expected {
				t.Errorf("got %q, want %q", buf.String(), tt.expected)
			}
		})
	}
}

func TestResult(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	if err := p.Result(Summary{
		OutputDir:      "/tmp/out",
		PRDPath:        "/tmp/out/tasks/prd-x.md",
		PRDJSONPath:    "/tmp/out/prd.json",
		Project:        "Tracker",
		BranchName:     "ralph/x",
		Feature:        "X",
		UserStoryCount: 2,
	}); err != nil {
		t.Fatalf("Result() unexpected error: %v", err)
	}

	expected := `{"ok":true,"outputDir":"/tmp/out","prdPath":"/tmp/out/tasks/prd-x.md","prdJsonPath":"/tmp/out/prd.json","project":"Tracker","branchName":"ralph/x","feature":"X","userStoryCount":2}` + "\n"
	if buf.String() != expected {
		t.Errorf("got %q, want %q", buf.String(), expected)
	}
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	if err := p.Error(errors.New("completion failed: boom")); err != nil {
		t.Fatalf("Error() unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if lines[0] != "Error: completion failed: boom" {
		t.Errorf("human line = %q", lines[0])
	}

	var f Failure
	if err := json.Unmarshal([]byte(lines[1]), &f); err != nil {
		t.Fatalf("JSON line does not parse: %v", err)
	}
	if f.OK || f.Error != "completion failed: boom" {
		t.Errorf("failure = %+v", f)
	}
}
