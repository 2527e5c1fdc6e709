package template

import (
	_ "embed"
)

//go:embed prompt.md
var DefaultPrompt string

//go:embed config.yaml
var DefaultConfig string

// ConfigDir is the name of the prdwiz configuration directory.
const ConfigDir = ".prdwiz"

// File name constants for consistent usage across the codebase.
const (
	PRDFile    = "prd.json" // Story tracking, read by the agent loop
	PromptFile = "prompt.md"
	ConfigFile = "config.yaml"
	TasksDir   = "tasks"   // Markdown PRDs live here
	ArchiveDir = "archive" // Previous features moved aside on branch switch
)
