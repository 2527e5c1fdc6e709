package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/jywlabs/prdwiz/internal/llm"
	"github.com/jywlabs/prdwiz/internal/prd"
)

// scriptedModel answers by generator, keyed on the sampling temperature.
type scriptedModel struct {
	mu      sync.Mutex
	steps   []string
	prdJSON string
	stepErr error
	prdErr  error
	prompts []llm.Prompt
}

func (m *scriptedModel) Complete(ctx context.Context, p llm.Prompt) (llm.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, p)

	var raw string
	switch p.Temperature {
	case prd.NamesTemperature:
		raw = `{"projectName":"Tracker","featureName":"Task Lists","description":"Shared task lists"}`
	case prd.InterviewTemperature:
		if m.stepErr != nil {
			return llm.Result{}, m.stepErr
		}
		if len(m.steps) == 0 {
			raw = `{"message":"","done":true,"summary":["enough"]}`
		} else {
			raw = m.steps[0]
			m.steps = m.steps[1:]
		}
	case prd.PRDTemperature:
		if m.prdErr != nil {
			return llm.Result{}, m.prdErr
		}
		raw = m.prdJSON
	default:
		return llm.Result{}, errors.New("unexpected prompt")
	}
	return llm.Result{Raw: json.RawMessage(raw)}, nil
}

func (m *scriptedModel) prdPrompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.prompts {
		if p.Temperature == prd.PRDTemperature {
			out = append(out, p.User)
		}
	}
	return out
}

const previewJSON = `{
	"features": [{"name":"Lists","summary":"Create lists","userStoryIds":["US-001","US-002"]}],
	"userStories": [
		{"id":"US-001","title":"Create list","acceptanceCriteria":["saved"]},
		{"id":"US-002","title":"Share list","acceptanceCriteria":["shared"]}
	]
}`

func newTestSession(m *scriptedModel, preview bool) *Session {
	return New(prd.NewGenerator(m), Options{Preview: preview, Logger: log.New(io.Discard)})
}

func TestSession_FullInterview(t *testing.T) {
	m := &scriptedModel{
		steps: []string{
			`{"message":"Who uses it?","done":false}`,
			`{"message":"Thanks","done":true,"summary":["PM focused"]}`,
		},
		prdJSON: previewJSON,
	}
	s := newTestSession(m, true)
	ctx := context.Background()

	if s.TurnNumber() != 1 || s.Phase() != PhaseNotStarted {
		t.Fatalf("new session: turn %d phase %s", s.TurnNumber(), s.Phase())
	}
	if !s.Feedback().Empty() {
		t.Error("new session has feedback")
	}

	if err := s.Begin(ctx, "  Build a task tracker "); err != nil {
		t.Fatalf("Begin() unexpected error: %v", err)
	}
	st, ok := s.State().(*Interviewing)
	if !ok {
		t.Fatalf("State() = %T, want *Interviewing", s.State())
	}
	if st.Question != "Who uses it?" || st.Brief != "Build a task tracker" || st.Names.FeatureName != "Task Lists" {
		t.Errorf("unexpected interviewing state: %+v", st)
	}

	if err := s.Answer(ctx, ""); err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	done, ok := s.State().(*InterviewDone)
	if !ok {
		t.Fatalf("State() = %T, want *InterviewDone", s.State())
	}
	if len(done.History) != 1 || done.History[0].Answer != NoAnswer || done.History[0].Question != "Who uses it?" {
		t.Errorf("History = %+v", done.History)
	}
	if strings.Join(done.Summary, "|") != "PM focused" {
		t.Errorf("Summary = %v", done.Summary)
	}
	if s.Preview() == nil || len(s.Preview().Features) != 1 {
		t.Fatalf("Preview() = %+v, want refreshed preview", s.Preview())
	}
	if s.TurnNumber() != 2 {
		t.Errorf("TurnNumber() = %d, want 2", s.TurnNumber())
	}

	if err := s.AddFeatureFeedback(ctx, 0, "add sharing"); err != nil {
		t.Fatalf("AddFeatureFeedback() unexpected error: %v", err)
	}
	if err := s.AddStoryFeedback(ctx, "US-002", "email invites"); err != nil {
		t.Fatalf("AddStoryFeedback() unexpected error: %v", err)
	}
	if got := s.Feedback().Count(); got != 2 {
		t.Errorf("Feedback().Count() = %d, want 2", got)
	}

	g, err := s.Generate(ctx, []*prd.FeatureOverride{{Name: "Shared Lists"}})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if s.Phase() != PhaseGenerated {
		t.Errorf("Phase() = %s, want Generated", s.Phase())
	}
	if g.Data.Features[0].Name != "Shared Lists" {
		t.Errorf("override not applied: %+v", g.Data.Features)
	}
	if !strings.HasPrefix(g.Artifacts.Markdown, "# PRD: Task Lists\n") {
		t.Errorf("Markdown title wrong: %q", strings.SplitN(g.Artifacts.Markdown, "\n", 2)[0])
	}

	prompts := m.prdPrompts()
	final := prompts[len(prompts)-1]
	for _, want := range []string{
		"Q1: Who uses it?\nA1: (no answer)",
		"Summary:\n- PM focused",
		`Feature "Lists": add sharing`,
		"Story US-002: Share list: email invites",
	} {
		if !strings.Contains(final, want) {
			t.Errorf("final synthesis prompt missing %q", want)
		}
	}
}

func TestSession_BeginDoneImmediately(t *testing.T) {
	m := &scriptedModel{steps: []string{`{"done":true,"summary":["clear brief"]}`}}
	s := newTestSession(m, false)

	if err := s.Begin(context.Background(), "brief"); err != nil {
		t.Fatalf("Begin() unexpected error: %v", err)
	}
	if s.Phase() != PhaseInterviewDone {
		t.Errorf("Phase() = %s, want InterviewDone", s.Phase())
	}
}

func TestSession_InvalidTransitions(t *testing.T) {
	m := &scriptedModel{steps: []string{`{"message":"Q?"}`}, prdJSON: previewJSON}
	s := newTestSession(m, false)
	ctx := context.Background()

	if err := s.Answer(ctx, "x"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Answer before Begin: error = %v", err)
	}
	if err := s.Finish(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Finish before Begin: error = %v", err)
	}
	if _, err := s.Generate(ctx, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Generate before Begin: error = %v", err)
	}
	if err := s.AddFeatureFeedback(ctx, 0, "x"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("feedback before Begin: error = %v", err)
	}

	if err := s.Begin(ctx, "brief"); err != nil {
		t.Fatal(err)
	}
	if err := s.Begin(ctx, "again"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Begin: error = %v", err)
	}
	if _, err := s.Generate(ctx, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Generate while interviewing: error = %v", err)
	}

	if err := s.Finish(); err != nil {
		t.Fatalf("Finish() unexpected error: %v", err)
	}
	if err := s.Answer(ctx, "late"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Answer after Finish: error = %v", err)
	}
	if _, err := s.Generate(ctx, nil); err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if _, err := s.Generate(ctx, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Generate: error = %v", err)
	}
}

func TestSession_BeginRequiresBrief(t *testing.T) {
	m := &scriptedModel{}
	s := newTestSession(m, false)

	if err := s.Begin(context.Background(), "   "); !errors.Is(err, prd.ErrMissingInput) {
		t.Fatalf("error = %v, want ErrMissingInput", err)
	}
	if len(m.prompts) != 0 {
		t.Error("no model call expected for an empty brief")
	}
	if s.Phase() != PhaseNotStarted {
		t.Errorf("Phase() = %s, want NotStarted", s.Phase())
	}
}

func TestSession_AnswerKeepsTurnOnFailure(t *testing.T) {
	m := &scriptedModel{steps: []string{`{"message":"Who?"}`}, prdJSON: previewJSON}
	s := newTestSession(m, true)
	ctx := context.Background()

	if err := s.Begin(ctx, "brief"); err != nil {
		t.Fatal(err)
	}
	m.prdErr = errors.New("preview failed")

	if err := s.Answer(ctx, "PMs"); err == nil {
		t.Fatal("expected error from failed preview")
	}
	st, ok := s.State().(*Interviewing)
	if !ok {
		t.Fatalf("State() = %T, want *Interviewing", s.State())
	}
	if len(st.History) != 1 || st.History[0].Answer != "PMs" {
		t.Errorf("History = %+v, want the answered turn kept", st.History)
	}
	if s.TurnNumber() != 2 {
		t.Errorf("TurnNumber() = %d, want 2", s.TurnNumber())
	}
}

func TestSession_FeedbackTargetsPreview(t *testing.T) {
	m := &scriptedModel{steps: []string{`{"message":"Who?"}`, `{"message":"What?"}`}, prdJSON: previewJSON}
	s := newTestSession(m, true)
	ctx := context.Background()

	if err := s.Begin(ctx, "brief"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddFeatureFeedback(ctx, 0, "x"); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("feedback without preview: error = %v", err)
	}
	if err := s.Answer(ctx, "PMs"); err != nil {
		t.Fatal(err)
	}

	if err := s.AddFeatureFeedback(ctx, 3, "x"); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("out of range feature: error = %v", err)
	}
	if err := s.AddStoryFeedback(ctx, "US-404", "x"); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("unknown story: error = %v", err)
	}
	if err := s.AddStoryFeedback(ctx, "US-001", "  "); !errors.Is(err, prd.ErrMissingInput) {
		t.Errorf("blank message: error = %v", err)
	}

	before := len(m.prdPrompts())
	if err := s.AddStoryFeedback(ctx, "US-001", "needs due dates"); err != nil {
		t.Fatalf("AddStoryFeedback() unexpected error: %v", err)
	}
	if got := len(m.prdPrompts()); got != before+1 {
		t.Errorf("preview syntheses = %d, want %d", got, before+1)
	}
	st := s.State().(*Interviewing)
	if st.Feedback.Count() != 1 {
		t.Errorf("Feedback.Count() = %d, want 1", st.Feedback.Count())
	}
}

func TestSession_Restart(t *testing.T) {
	m := &scriptedModel{steps: []string{`{"message":"Who?"}`}, prdJSON: previewJSON}
	s := newTestSession(m, true)
	ctx := context.Background()

	if err := s.Begin(ctx, "brief"); err != nil {
		t.Fatal(err)
	}
	if err := s.Answer(ctx, "PMs"); err != nil {
		t.Fatal(err)
	}
	s.Restart()

	if s.Phase() != PhaseNotStarted {
		t.Errorf("Phase() = %s, want NotStarted", s.Phase())
	}
	if s.TurnNumber() != 1 || s.Preview() != nil {
		t.Error("restart should clear history and preview")
	}
	if err := s.Begin(ctx, "new brief"); err != nil {
		t.Errorf("Begin after Restart: %v", err)
	}
}

func TestSession_NoPreviewSkipsSynthesis(t *testing.T) {
	m := &scriptedModel{steps: []string{`{"message":"Who?"}`, `{"message":"What?"}`}}
	s := newTestSession(m, false)
	ctx := context.Background()

	if err := s.Begin(ctx, "brief"); err != nil {
		t.Fatal(err)
	}
	if err := s.Answer(ctx, "PMs"); err != nil {
		t.Fatal(err)
	}
	if n := len(m.prdPrompts()); n != 0 {
		t.Errorf("preview syntheses = %d, want 0", n)
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		from, to Phase
		ok       bool
	}{
		{PhaseNotStarted, PhaseInterviewing, true},
		{PhaseInterviewing, PhaseInterviewDone, true},
		{PhaseInterviewDone, PhaseGenerated, true},
		{PhaseInterviewing, PhaseGenerated, false},
		{PhaseGenerated, PhaseInterviewing, false},
		{PhaseNotStarted, PhaseGenerated, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"→"+tt.to.String(), func(t *testing.T) {
			err := Transition(tt.from, tt.to)
			if (err == nil) != tt.ok {
				t.Errorf("Transition(%s, %s) = %v, want ok=%v", tt.from, tt.to, err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("error should wrap ErrInvalidTransition: %v", err)
			}
		})
	}
}
