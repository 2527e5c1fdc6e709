package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jywlabs/prdwiz/internal/output"
	"github.com/jywlabs/prdwiz/internal/prd"
)

func TestQuickFlow(t *testing.T) {
	dir := t.TempDir()
	m := &scriptedModel{questions: `{"questions": [
		{"question": "Who are the users?", "options": ["A. Admins", "B. Members"]},
		{"question": "Scope?", "options": [{"label": "MVP"}, {"label": "Full"}]},
		{"question": "Platform?", "options": [{"label": "Web"}]}
	]}`}

	var out bytes.Buffer
	cs := newCLISession(strings.NewReader("b\nC\nbackend only\nmobile too\n"), &out)
	defer cs.Close()

	err := runQuickFlow(context.Background(), cs, prd.NewGenerator(m), "Build a task tracker", true, writeOptions{OutputDir: dir})
	if err != nil {
		t.Fatalf("runQuickFlow() unexpected error: %v\n%s", err, out.String())
	}

	final := m.lastPRDPrompt()
	for _, want := range []string{
		"Q1: Who are the users?\nA1: B) Members",
		"Q2: Scope?\nA2: backend only",
		"Q3: Platform?\nA3: mobile too",
	} {
		if !strings.Contains(final, want) {
			t.Errorf("synthesis prompt missing %q:\n%s", want, final)
		}
	}
	if !strings.Contains(out.String(), "Other (please specify)") {
		t.Errorf("Other option not offered:\n%s", out.String())
	}

	if _, err := os.Stat(filepath.Join(dir, "tasks", "prd-task-lists.md")); err != nil {
		t.Errorf("markdown not written: %v", err)
	}
	var summary output.Summary
	if err := json.Unmarshal([]byte(lastLine(out.String())), &summary); err != nil {
		t.Fatalf("last line is not JSON: %q", lastLine(out.String()))
	}
	if !summary.OK || summary.Project != "Tracker" {
		t.Errorf("summary = %+v", summary)
	}
}

func TestCollectAnswers_EmptyAnswer(t *testing.T) {
	var out bytes.Buffer
	cs := newCLISession(strings.NewReader("\n"), &out)
	defer cs.Close()

	turns, err := collectAnswers(cs, []prd.Question{{
		Question: "Anything else?",
		Options:  []prd.Option{{Letter: "A", Label: "No"}},
	}})
	if err != nil {
		t.Fatalf("collectAnswers() unexpected error: %v", err)
	}
	if len(turns) != 1 || turns[0].Answer != "(no answer)" {
		t.Errorf("turns = %+v", turns)
	}
}
