package prd

import (
	"fmt"
	"os"
)

// WriteArtifacts writes the markdown PRD and prd.json, plus prompt.md when
// withPrompt is set. The tasks directory is created if needed. Writes are
// sequential and not guarded against concurrent writers.
func WriteArtifacts(p Paths, a Artifacts, withPrompt bool) error {
	if err := os.MkdirAll(p.Tasks, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", p.Tasks, err)
	}
	if err := os.WriteFile(p.Markdown, []byte(a.Markdown), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.Markdown, err)
	}
	if err := os.WriteFile(p.JSON, a.JSON, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.JSON, err)
	}
	if withPrompt {
		if err := WritePrompt(p); err != nil {
			return err
		}
	}
	return nil
}

// WritePrompt writes only prompt.md.
func WritePrompt(p Paths) error {
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", p.Dir, err)
	}
	if err := os.WriteFile(p.Prompt, []byte(RenderPrompt()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.Prompt, err)
	}
	return nil
}
