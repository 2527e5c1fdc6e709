package prd

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jywlabs/prdwiz/internal/template"
)

// Placeholder replaces empty text and list fields when rendering.
const Placeholder = "TBD"

var frPrefix = regexp.MustCompile(`^FR-\d+:`)

// Normalize returns a copy of d with every empty list replaced by
// ["TBD"] and an empty introduction replaced by "TBD". Blank items are
// dropped first. User stories are never fabricated.
func Normalize(d *Data) *Data {
	if d == nil {
		d = &Data{}
	}
	out := *d
	out.Introduction = orPlaceholder(d.Introduction)
	out.Goals = normalizeList(d.Goals)
	out.FunctionalRequirements = normalizeList(d.FunctionalRequirements)
	out.NonGoals = normalizeList(d.NonGoals)
	out.DesignConsiderations = normalizeList(d.DesignConsiderations)
	out.TechnicalConsiderations = normalizeList(d.TechnicalConsiderations)
	out.SuccessMetrics = normalizeList(d.SuccessMetrics)
	out.OpenQuestions = normalizeList(d.OpenQuestions)

	out.Features = append([]Feature{}, d.Features...)
	out.UserStories = make([]UserStory, len(d.UserStories))
	for i, s := range d.UserStories {
		s.AcceptanceCriteria = normalizeList(s.AcceptanceCriteria)
		out.UserStories[i] = s
	}
	return &out
}

func normalizeList(items []string) StringList {
	out := make(StringList, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return StringList{Placeholder}
	}
	return out
}

func orPlaceholder(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return Placeholder
	}
	return s
}

// RenderMarkdown renders the human-readable PRD. The output depends only on
// its inputs.
func RenderMarkdown(featureName string, d *Data) string {
	n := Normalize(d)
	var sb strings.Builder

	fmt.Fprintf(&sb, "# PRD: %s\n\n", featureName)

	section(&sb, "Introduction/Overview")
	sb.WriteString(n.Introduction + "\n\n")

	section(&sb, "Goals")
	bullets(&sb, n.Goals)

	section(&sb, "User Stories")
	if len(n.UserStories) == 0 {
		sb.WriteString(Placeholder + "\n\n")
	}
	for _, s := range n.UserStories {
		fmt.Fprintf(&sb, "### %s: %s\n\n", s.ID, s.Title)
		fmt.Fprintf(&sb, "**Description:** %s\n\n", orPlaceholder(s.Description))
		sb.WriteString("**Acceptance Criteria:**\n")
		for _, c := range s.AcceptanceCriteria {
			fmt.Fprintf(&sb, "- [ ] %s\n", c)
		}
		sb.WriteString("\n")
	}

	section(&sb, "Functional Requirements")
	for i, fr := range n.FunctionalRequirements {
		if frPrefix.MatchString(fr) {
			fmt.Fprintf(&sb, "- %s\n", fr)
		} else {
			fmt.Fprintf(&sb, "- FR-%d: %s\n", i+1, fr)
		}
	}
	sb.WriteString("\n")

	section(&sb, "Non-Goals")
	bullets(&sb, n.NonGoals)
	section(&sb, "Design Considerations")
	bullets(&sb, n.DesignConsiderations)
	section(&sb, "Technical Considerations")
	bullets(&sb, n.TechnicalConsiderations)
	section(&sb, "Success Metrics")
	bullets(&sb, n.SuccessMetrics)
	section(&sb, "Open Questions")
	bullets(&sb, n.OpenQuestions)

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func section(sb *strings.Builder, title string) {
	fmt.Fprintf(sb, "## %s\n\n", title)
}

func bullets(sb *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}

// BuildTracking converts synthesis output into the prd.json shape. Priority
// is the story's 1-based position in the input.
func BuildTracking(d *Data) Tracking {
	n := Normalize(d)
	t := Tracking{
		Project:     n.Project,
		BranchName:  n.BranchName,
		Description: n.Description,
		UserStories: make([]TrackedStory, 0, len(n.UserStories)),
	}
	for i, s := range n.UserStories {
		t.UserStories = append(t.UserStories, TrackedStory{
			ID:                 s.ID,
			Title:              s.Title,
			Description:        s.Description,
			AcceptanceCriteria: []string(s.AcceptanceCriteria),
			Priority:           i + 1,
			Passes:             false,
			Notes:              "",
		})
	}
	return t
}

// RenderJSON renders prd.json, indented with two spaces.
func RenderJSON(d *Data) ([]byte, error) {
	data, err := json.MarshalIndent(BuildTracking(d), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode prd.json: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderPrompt returns the static agent instructions written to prompt.md.
func RenderPrompt() string {
	return template.DefaultPrompt
}

// Artifacts are the rendered outputs for one synthesis.
type Artifacts struct {
	Markdown string
	JSON     []byte
	Prompt   string
}

// Render produces all artifacts for a synthesis result.
func Render(featureName string, d *Data) (Artifacts, error) {
	js, err := RenderJSON(d)
	if err != nil {
		return Artifacts{}, err
	}
	return Artifacts{
		Markdown: RenderMarkdown(featureName, d),
		JSON:     js,
		Prompt:   RenderPrompt(),
	}, nil
}
