package prd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jywlabs/prdwiz/internal/llm"
)

// ErrMissingInput is returned when a required input is empty.
var ErrMissingInput = errors.New("missing required input")

// Sampling temperatures per generator.
const (
	QuestionsTemperature = 0.4
	InterviewTemperature = 0.5
	NamesTemperature     = 0.2
	PRDTemperature       = 0.3
)

// Defaults applied when name inference leaves a field empty.
const (
	DefaultProjectName = "Project"
	DefaultFeatureName = "Core Feature"
)

const defaultFollowUp = "What else should we know about how this should work?"

// Completer issues a prompt and returns the JSON object the model produced.
// *llm.Gateway satisfies it.
type Completer interface {
	Complete(ctx context.Context, p llm.Prompt) (llm.Result, error)
}

// Generator maps small inputs to completion calls and fills in defaults for
// anything the model leaves out.
type Generator struct {
	completer Completer
}

// NewGenerator creates a Generator.
func NewGenerator(c Completer) *Generator {
	return &Generator{completer: c}
}

// QuestionsInput is the input to ClarifyingQuestions.
type QuestionsInput struct {
	FeatureName  string
	Description  string
	IsNewProject bool
}

// ClarifyingQuestions asks for lettered multiple-choice questions. Options
// without a letter are lettered by position and an "Other" option is added
// when the model omits one.
func (g *Generator) ClarifyingQuestions(ctx context.Context, in QuestionsInput) ([]Question, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description", ErrMissingInput)
	}
	projectType := "existing project"
	if in.IsNewProject {
		projectType = "new project"
	}

	var resp struct {
		Questions []Question `json:"questions"`
	}
	if err := g.complete(ctx, llm.Prompt{
		System:      questionsSystem,
		User:        fmt.Sprintf(questionsUser, in.FeatureName, in.Description, projectType),
		Temperature: QuestionsTemperature,
	}, &resp); err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	questions := make([]Question, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" {
			continue
		}
		q.Options = letterOptions(q.Options)
		questions = append(questions, q)
	}
	return questions, nil
}

func letterOptions(opts []Option) []Option {
	out := make([]Option, 0, len(opts)+1)
	hasOther := false
	for _, o := range opts {
		if o.Label == "" {
			continue
		}
		if o.Letter == "" {
			o.Letter = string(rune('A' + len(out)))
		}
		hasOther = hasOther || o.IsOther()
		out = append(out, o)
	}
	if !hasOther {
		out = append(out, Option{Letter: string(rune('A' + len(out))), Label: "Other (please specify)"})
	}
	return out
}

// StepInput is the input to InterviewStep. The whole transcript is sent on
// every call.
type StepInput struct {
	Brief   string
	History []Turn
}

// InterviewStep asks for the next interview question, or for the completion
// signal and summary.
func (g *Generator) InterviewStep(ctx context.Context, in StepInput) (Step, error) {
	if strings.TrimSpace(in.Brief) == "" {
		return Step{}, fmt.Errorf("%w: brief", ErrMissingInput)
	}

	transcript := FormatAnswers(AnswersInput{Brief: in.Brief, History: in.History})
	var step Step
	if err := g.complete(ctx, llm.Prompt{
		System:      interviewSystem,
		User:        fmt.Sprintf(interviewUser, transcript),
		Temperature: InterviewTemperature,
	}, &step); err != nil {
		return Step{}, fmt.Errorf("failed to get next question: %w", err)
	}

	step.Message = strings.TrimSpace(step.Message)
	if !step.Done && step.Message == "" {
		step.Message = defaultFollowUp
	}
	if !step.Done {
		step.Summary = nil
	}
	return step, nil
}

// InferNames derives project and feature names from a brief.
func (g *Generator) InferNames(ctx context.Context, brief string) (Names, error) {
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return Names{}, fmt.Errorf("%w: brief", ErrMissingInput)
	}

	var names Names
	if err := g.complete(ctx, llm.Prompt{
		System:      namesSystem,
		User:        fmt.Sprintf(namesUser, brief),
		Temperature: NamesTemperature,
	}, &names); err != nil {
		return Names{}, fmt.Errorf("failed to infer names: %w", err)
	}

	names.ProjectName = firstNonEmpty(names.ProjectName, DefaultProjectName)
	names.FeatureName = firstNonEmpty(names.FeatureName, DefaultFeatureName)
	names.Description = firstNonEmpty(names.Description, brief)
	return names, nil
}

// PRDInput is the input to GeneratePRD.
type PRDInput struct {
	ProjectName       string
	FeatureName       string
	Description       string
	BranchName        string // defaults to DefaultBranch(FeatureName)
	ClarifyingAnswers string // see FormatAnswers
}

// GeneratePRD runs the structured synthesis. Project, branch and
// description fall back to the inputs when the model omits them.
func (g *Generator) GeneratePRD(ctx context.Context, in PRDInput) (*Data, error) {
	if strings.TrimSpace(in.FeatureName) == "" {
		return nil, fmt.Errorf("%w: feature name", ErrMissingInput)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description", ErrMissingInput)
	}
	project := firstNonEmpty(in.ProjectName, DefaultProjectName)
	branch := firstNonEmpty(in.BranchName, DefaultBranch(in.FeatureName))

	var data Data
	if err := g.complete(ctx, llm.Prompt{
		System:      prdSystem,
		User:        fmt.Sprintf(prdUser, project, in.FeatureName, branch, in.Description, in.ClarifyingAnswers),
		Temperature: PRDTemperature,
	}, &data); err != nil {
		return nil, fmt.Errorf("failed to generate PRD: %w", err)
	}

	data.Project = firstNonEmpty(data.Project, project)
	data.BranchName = firstNonEmpty(data.BranchName, branch)
	data.Description = firstNonEmpty(data.Description, in.Description)
	if data.Features == nil {
		data.Features = []Feature{}
	}
	if data.UserStories == nil {
		data.UserStories = []UserStory{}
	}
	return &data, nil
}

func (g *Generator) complete(ctx context.Context, p llm.Prompt, v any) error {
	res, err := g.completer.Complete(ctx, p)
	if err != nil {
		return err
	}
	if err := res.Decode(v); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Synthesize runs GeneratePRD over the formatted interview. It backs both
// the live preview and the final generation.
func (g *Generator) Synthesize(ctx context.Context, names Names, answers AnswersInput) (*Data, error) {
	return g.GeneratePRD(ctx, PRDInput{
		ProjectName:       names.ProjectName,
		FeatureName:       firstNonEmpty(names.FeatureName, DefaultFeatureName),
		Description:       firstNonEmpty(names.Description, answers.Brief),
		ClarifyingAnswers: FormatAnswers(answers),
	})
}
