package prd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Turn is one question/answer exchange in the interview.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// StringList is a list field decoded leniently from model output. It accepts
// a JSON array (non-string items are stringified), a single string (a
// one-element list) or null (empty).
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*l = nil
	case string:
		*l = StringList{v}
	case []any:
		out := make(StringList, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case nil:
				continue
			case string:
				out = append(out, s)
			case map[string]any, []any:
				b, err := json.Marshal(s)
				if err != nil {
					return err
				}
				out = append(out, string(b))
			default:
				out = append(out, fmt.Sprint(s))
			}
		}
		*l = out
	default:
		*l = StringList{fmt.Sprint(v)}
	}
	return nil
}

// MarshalJSON encodes a nil list as [] rather than null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Feature groups related user stories.
type Feature struct {
	Name         string     `json:"name"`
	Summary      string     `json:"summary"`
	UserStoryIDs StringList `json:"userStoryIds"`
}

// UserStory is a single story as produced by synthesis.
type UserStory struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	AcceptanceCriteria StringList `json:"acceptanceCriteria"`
}

// Data is the full structured synthesis result. Every regeneration replaces
// it wholesale.
type Data struct {
	Project                 string      `json:"project"`
	BranchName              string      `json:"branchName"`
	Description             string      `json:"description"`
	Introduction            string      `json:"introduction"`
	Goals                   StringList  `json:"goals"`
	Features                []Feature   `json:"features"`
	UserStories             []UserStory `json:"userStories"`
	FunctionalRequirements  StringList  `json:"functionalRequirements"`
	NonGoals                StringList  `json:"nonGoals"`
	DesignConsiderations    StringList  `json:"designConsiderations"`
	TechnicalConsiderations StringList  `json:"technicalConsiderations"`
	SuccessMetrics          StringList  `json:"successMetrics"`
	OpenQuestions           StringList  `json:"openQuestions"`
}

// UnmarshalJSON decodes features and userStories leniently: an array, a
// single object, or an object keyed by name are all accepted. Any other
// shape yields an empty list.
func (d *Data) UnmarshalJSON(data []byte) error {
	type plain Data
	aux := struct {
		*plain
		Features    json.RawMessage `json:"features"`
		UserStories json.RawMessage `json:"userStories"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	features, err := decodeLenientList[Feature](aux.Features)
	if err != nil {
		return fmt.Errorf("features: %w", err)
	}
	stories, err := decodeLenientList[UserStory](aux.UserStories)
	if err != nil {
		return fmt.Errorf("userStories: %w", err)
	}
	d.Features = features
	d.UserStories = stories
	return nil
}

func decodeLenientList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	var items []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			return nil, nil
		}
		keys := make([]string, 0, len(fields))
		for k, v := range fields {
			if !isObject(v) {
				// A single item rather than a keyed collection.
				keys = nil
				break
			}
			keys = append(keys, k)
		}
		if keys == nil {
			items = []json.RawMessage{raw}
		} else {
			sort.Strings(keys)
			for _, k := range keys {
				items = append(items, fields[k])
			}
		}
	default:
		return nil, nil
	}

	var out []T
	for _, item := range items {
		if !isObject(item) {
			continue
		}
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// FeatureOverride is a user edit applied to the feature at the same index.
// Empty fields leave the original value in place.
type FeatureOverride struct {
	Name         string   `json:"name,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	UserStoryIDs []string `json:"userStoryIds,omitempty"`
}

// Question represents a clarifying question in the quick flow.
type Question struct {
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

// Option represents a selectable option for a question.
type Option struct {
	Letter string `json:"letter"` // A, B, C, D
	Label  string `json:"label"`
}

// UnmarshalJSON accepts either {"letter","label"} or a bare string such as
// "B) Internal tool".
func (o *Option) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Letter, o.Label = splitLetter(s)
		return nil
	}

	var obj struct {
		Letter string `json:"letter"`
		Label  string `json:"label"`
		Text   string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	o.Letter = strings.ToUpper(strings.TrimSpace(obj.Letter))
	o.Label = strings.TrimSpace(obj.Label)
	if o.Label == "" {
		o.Label = strings.TrimSpace(obj.Text)
	}
	return nil
}

// IsOther reports whether the option asks for a free-text answer.
func (o Option) IsOther() bool {
	return strings.Contains(strings.ToLower(o.Label), "other")
}

func splitLetter(s string) (string, string) {
	s = strings.TrimSpace(s)
	if len(s) >= 3 && s[0] >= 'A' && s[0] <= 'Z' && (s[1] == '.' || s[1] == ')' || s[1] == ':') {
		return s[:1], strings.TrimSpace(s[2:])
	}
	return "", s
}

// Flag is a boolean decoded leniently from model output. Strings such as
// "true" or "yes" and non-zero numbers count as true; anything else is false.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case bool:
		*f = Flag(v)
	case float64:
		*f = v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1", "done":
			*f = true
		default:
			*f = false
		}
	default:
		*f = false
	}
	return nil
}

// Step is one interview-step response.
type Step struct {
	Message string     `json:"message"`
	Done    Flag       `json:"done"`
	Summary StringList `json:"summary"`
}

// Names are the project and feature names inferred from a brief.
type Names struct {
	ProjectName string `json:"projectName"`
	FeatureName string `json:"featureName"`
	Description string `json:"description"`
}

// Tracking is the structure of a prd.json file.
type Tracking struct {
	Project     string         `json:"project"`
	BranchName  string         `json:"branchName"`
	Description string         `json:"description"`
	UserStories []TrackedStory `json:"userStories"`
}

// TrackedStory is a user story with the fields an agent loop updates.
type TrackedStory struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"acceptanceCriteria"`
	Priority           int      `json:"priority"`
	Passes             bool     `json:"passes"`
	Notes              string   `json:"notes"`
}

// LoadTracking reads and parses a prd.json file.
func LoadTracking(path string) (*Tracking, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var t Tracking
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

// Progress returns (completed, total) story counts.
func (t *Tracking) Progress() (int, int) {
	completed := 0
	for _, story := range t.UserStories {
		if story.Passes {
			completed++
		}
	}
	return completed, len(t.UserStories)
}
