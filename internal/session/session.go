// Package session drives one interview from brief to generated PRD.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jywlabs/prdwiz/internal/prd"
)

// NoAnswer is recorded when the user submits an empty answer.
const NoAnswer = "(no answer)"

// ErrUnknownItem is returned when feedback targets a feature or story that is
// not in the current preview.
var ErrUnknownItem = errors.New("no such item in the current preview")

// Options configures a Session.
type Options struct {
	Preview bool // refresh the preview synthesis after each answer
	Logger  *log.Logger
}

// Session is a single interview. It is not safe for concurrent use; model
// calls may run concurrently inside Answer but all state changes happen on
// the caller's goroutine.
type Session struct {
	id      string
	gen     *prd.Generator
	preview bool
	logger  *log.Logger
	state   State
}

// New creates a session in the NotStarted phase.
func New(gen *prd.Generator, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	id := uuid.NewString()
	return &Session{
		id:      id,
		gen:     gen,
		preview: opts.Preview,
		logger:  logger.With("session", id[:8]),
		state:   NotStarted{},
	}
}

// Feedback returns the notes recorded so far.
func (s *Session) Feedback() prd.Feedback {
	if tr := s.transcript(); tr != nil {
		return tr.Feedback
	}
	return prd.Feedback{}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.state.Phase() }

// TurnNumber is the number shown for the next question.
func (s *Session) TurnNumber() int {
	if t := s.transcript(); t != nil {
		return len(t.History) + 1
	}
	return 1
}

// Preview returns the latest preview synthesis, or nil.
func (s *Session) Preview() *prd.Data {
	if t := s.transcript(); t != nil {
		return t.Preview
	}
	return nil
}

func (s *Session) transcript() *Transcript {
	switch st := s.state.(type) {
	case *Interviewing:
		return &st.Transcript
	case *InterviewDone:
		return &st.Transcript
	case *Generated:
		return &st.Transcript
	default:
		return nil
	}
}

func (s *Session) moveTo(next State) error {
	from, to := s.state.Phase(), next.Phase()
	if to != PhaseNotStarted {
		if err := Transition(from, to); err != nil {
			return err
		}
	}
	s.logger.Debug("session transition", "from", from, "to", to)
	s.state = next
	return nil
}

// Begin starts the interview: it infers names from the brief and requests
// the first question.
func (s *Session) Begin(ctx context.Context, brief string) error {
	if _, ok := s.state.(NotStarted); !ok {
		return fmt.Errorf("%w: begin in %s", ErrInvalidTransition, s.Phase())
	}
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return fmt.Errorf("%w: brief", prd.ErrMissingInput)
	}

	names, err := s.gen.InferNames(ctx, brief)
	if err != nil {
		return err
	}
	tr := Transcript{Brief: brief, Names: names}

	step, err := s.gen.InterviewStep(ctx, prd.StepInput{Brief: brief})
	if err != nil {
		return err
	}
	return s.advance(tr, step)
}

// Answer records an answer to the pending question, then requests the next
// question and, when enabled, a preview refresh. The turn stays recorded even
// if either call fails.
func (s *Session) Answer(ctx context.Context, answer string) error {
	st, ok := s.state.(*Interviewing)
	if !ok {
		return fmt.Errorf("%w: answer in %s", ErrInvalidTransition, s.Phase())
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = NoAnswer
	}
	st.History = append(st.History, prd.Turn{Question: st.Question, Answer: answer})
	tr := st.Transcript

	var (
		step    prd.Step
		preview *prd.Data
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		step, err = s.gen.InterviewStep(gctx, prd.StepInput{Brief: tr.Brief, History: tr.History})
		return err
	})
	if s.preview {
		g.Go(func() error {
			var err error
			preview, err = s.synthesize(gctx, tr, nil)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if preview != nil {
		tr.Preview = preview
	}
	return s.advance(tr, step)
}

func (s *Session) advance(tr Transcript, step prd.Step) error {
	if step.Done {
		return s.moveTo(&InterviewDone{Transcript: tr, Summary: step.Summary, Closing: step.Message})
	}
	return s.moveTo(&Interviewing{Transcript: tr, Question: step.Message})
}

// Finish ends the interview without waiting for the model to signal it.
func (s *Session) Finish() error {
	st, ok := s.state.(*Interviewing)
	if !ok {
		return fmt.Errorf("%w: finish in %s", ErrInvalidTransition, s.Phase())
	}
	return s.moveTo(&InterviewDone{Transcript: st.Transcript})
}

// AddFeatureFeedback attaches a note to the feature at index (0-based) in
// the current preview and refreshes the preview.
func (s *Session) AddFeatureFeedback(ctx context.Context, index int, message string) error {
	tr, summary, err := s.feedbackTarget()
	if err != nil {
		return err
	}
	if tr.Preview == nil || index < 0 || index >= len(tr.Preview.Features) {
		return fmt.Errorf("%w: feature %d", ErrUnknownItem, index+1)
	}
	if !tr.Feedback.AddFeature(index, tr.Preview.Features[index].Name, message) {
		return fmt.Errorf("%w: feedback message", prd.ErrMissingInput)
	}
	return s.refresh(ctx, tr, summary)
}

// AddStoryFeedback attaches a note to the story with the given id in the
// current preview and refreshes the preview.
func (s *Session) AddStoryFeedback(ctx context.Context, id, message string) error {
	tr, summary, err := s.feedbackTarget()
	if err != nil {
		return err
	}
	if tr.Preview == nil {
		return fmt.Errorf("%w: story %s", ErrUnknownItem, id)
	}
	story, ok := prd.FindStory(tr.Preview.UserStories, id)
	if !ok {
		return fmt.Errorf("%w: story %s", ErrUnknownItem, id)
	}
	if !tr.Feedback.AddStory(story.ID, story.Title, message) {
		return fmt.Errorf("%w: feedback message", prd.ErrMissingInput)
	}
	return s.refresh(ctx, tr, summary)
}

func (s *Session) feedbackTarget() (*Transcript, []string, error) {
	switch st := s.state.(type) {
	case *Interviewing:
		return &st.Transcript, nil, nil
	case *InterviewDone:
		return &st.Transcript, st.Summary, nil
	default:
		return nil, nil, fmt.Errorf("%w: feedback in %s", ErrInvalidTransition, s.Phase())
	}
}

func (s *Session) refresh(ctx context.Context, tr *Transcript, summary []string) error {
	preview, err := s.synthesize(ctx, *tr, summary)
	if err != nil {
		return err
	}
	tr.Preview = preview
	return nil
}

// RefreshPreview re-runs the preview synthesis with the current transcript.
func (s *Session) RefreshPreview(ctx context.Context) error {
	tr, summary, err := s.feedbackTarget()
	if err != nil {
		return err
	}
	return s.refresh(ctx, tr, summary)
}

// Generate runs the final synthesis, applies overrides and renders the
// artifacts. The session stays Generated until Restart.
func (s *Session) Generate(ctx context.Context, overrides []*prd.FeatureOverride) (*Generated, error) {
	st, ok := s.state.(*InterviewDone)
	if !ok {
		return nil, Transition(s.Phase(), PhaseGenerated)
	}

	data, err := s.synthesize(ctx, st.Transcript, st.Summary)
	if err != nil {
		return nil, err
	}
	final, artifacts, err := prd.Finalize(st.Names.FeatureName, data, overrides)
	if err != nil {
		return nil, err
	}

	g := &Generated{Transcript: st.Transcript, Summary: st.Summary, Data: final, Artifacts: artifacts}
	if err := s.moveTo(g); err != nil {
		return nil, err
	}
	s.logger.Info("prd generated", "feature", st.Names.FeatureName, "stories", len(final.UserStories))
	return g, nil
}

// Restart discards everything and returns to NotStarted.
func (s *Session) Restart() {
	_ = s.moveTo(NotStarted{})
}

func (s *Session) synthesize(ctx context.Context, tr Transcript, summary []string) (*prd.Data, error) {
	return s.gen.Synthesize(ctx, tr.Names, prd.AnswersInput{
		Brief:    tr.Brief,
		History:  tr.History,
		Summary:  summary,
		Feedback: tr.Feedback.Lines(),
	})
}
