package prd

import (
	"fmt"
	"strings"
)

// FeatureNote holds the feedback messages attached to one feature, keyed by
// its position in the current preview.
type FeatureNote struct {
	Index    int      `json:"index"`
	Name     string   `json:"name,omitempty"`
	Messages []string `json:"messages"`
}

// StoryNote holds the feedback messages attached to one story.
type StoryNote struct {
	ID       string   `json:"id"`
	Title    string   `json:"title,omitempty"`
	Messages []string `json:"messages"`
}

// Feedback is the per-feature and per-story feedback collected during a
// session. Entries keep first-insertion order and messages keep append order.
type Feedback struct {
	Features []FeatureNote `json:"features,omitempty"`
	Stories  []StoryNote   `json:"stories,omitempty"`
}

// AddFeature appends a message to the feature at index. A non-empty name
// replaces the one recorded earlier. Blank messages are ignored.
func (f *Feedback) AddFeature(index int, name, message string) bool {
	message = strings.TrimSpace(message)
	if message == "" || index < 0 {
		return false
	}
	for i := range f.Features {
		if f.Features[i].Index == index {
			if name != "" {
				f.Features[i].Name = name
			}
			f.Features[i].Messages = append(f.Features[i].Messages, message)
			return true
		}
	}
	f.Features = append(f.Features, FeatureNote{Index: index, Name: name, Messages: []string{message}})
	return true
}

// AddStory appends a message to the story with the given id. Blank messages
// and ids are ignored.
func (f *Feedback) AddStory(id, title, message string) bool {
	id = strings.TrimSpace(id)
	message = strings.TrimSpace(message)
	if message == "" || id == "" {
		return false
	}
	for i := range f.Stories {
		if f.Stories[i].ID == id {
			if title != "" {
				f.Stories[i].Title = title
			}
			f.Stories[i].Messages = append(f.Stories[i].Messages, message)
			return true
		}
	}
	f.Stories = append(f.Stories, StoryNote{ID: id, Title: title, Messages: []string{message}})
	return true
}

// Empty reports whether no messages have been recorded.
func (f Feedback) Empty() bool {
	return len(f.Lines()) == 0
}

// Count returns the total number of messages.
func (f Feedback) Count() int {
	return len(f.Lines())
}

// Lines renders the feedback one message per line, features first.
func (f Feedback) Lines() []string {
	var lines []string
	for _, note := range f.Features {
		name := note.Name
		if name == "" {
			name = fmt.Sprintf("Feature %d", note.Index+1)
		}
		for _, msg := range note.Messages {
			lines = append(lines, fmt.Sprintf("Feature \"%s\": %s", name, msg))
		}
	}
	for _, note := range f.Stories {
		title := note.Title
		if title == "" {
			title = note.ID
		}
		for _, msg := range note.Messages {
			lines = append(lines, fmt.Sprintf("Story %s: %s: %s", note.ID, title, msg))
		}
	}
	return lines
}

// AnswersInput is everything the interview contributes to a synthesis call.
type AnswersInput struct {
	Brief    string
	History  []Turn
	Summary  []string
	Feedback []string // already rendered, see Feedback.Lines
}

// FormatAnswers serializes the interview into the text blob sent to the PRD
// generator. Blocks are separated by a blank line and empty blocks are
// omitted.
func FormatAnswers(in AnswersInput) string {
	var blocks []string

	if brief := strings.TrimSpace(in.Brief); brief != "" {
		blocks = append(blocks, "Brief: "+brief)
	}

	for i, turn := range in.History {
		blocks = append(blocks, fmt.Sprintf("Q%d: %s\nA%d: %s", i+1, turn.Question, i+1, turn.Answer))
	}

	if b := bulletBlock("Summary:", in.Summary); b != "" {
		blocks = append(blocks, b)
	}
	if b := bulletBlock("Feedback:", in.Feedback); b != "" {
		blocks = append(blocks, b)
	}

	return strings.Join(blocks, "\n\n")
}

func bulletBlock(header string, items []string) string {
	var sb strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if sb.Len() == 0 {
			sb.WriteString(header)
		}
		sb.WriteString("\n- ")
		sb.WriteString(item)
	}
	return sb.String()
}
