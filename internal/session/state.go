package session

import (
	"errors"
	"fmt"

	"github.com/jywlabs/prdwiz/internal/prd"
)

// ErrInvalidTransition is returned when an action is not allowed in the
// current phase.
var ErrInvalidTransition = errors.New("invalid session transition")

// Phase identifies the kind of the current State.
type Phase int

const (
	PhaseNotStarted    Phase = iota // Waiting for a brief
	PhaseInterviewing               // A question is pending
	PhaseInterviewDone              // Collecting feedback, ready to generate
	PhaseGenerated                  // Artifacts rendered
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseInterviewing:
		return "Interviewing"
	case PhaseInterviewDone:
		return "InterviewDone"
	case PhaseGenerated:
		return "Generated"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// validTransitions defines the explicit allow-list of phase transitions.
// Restart is handled separately and is allowed from every phase.
var validTransitions = map[Phase]map[Phase]bool{
	PhaseNotStarted: {
		PhaseInterviewing:  true,
		PhaseInterviewDone: true,
	},
	PhaseInterviewing: {
		PhaseInterviewing:  true,
		PhaseInterviewDone: true,
	},
	PhaseInterviewDone: {
		PhaseInterviewDone: true,
		PhaseGenerated:     true,
	},
	PhaseGenerated: {},
}

// Transition validates whether a phase transition from → to is allowed.
func Transition(from, to Phase) error {
	if targets, ok := validTransitions[from]; ok && targets[to] {
		return nil
	}
	return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
}

// State is one of NotStarted, Interviewing, InterviewDone or Generated.
type State interface {
	Phase() Phase
}

// Transcript is the data shared by every started phase.
type Transcript struct {
	Brief    string
	Names    prd.Names
	History  []prd.Turn
	Feedback prd.Feedback
	Preview  *prd.Data // latest preview synthesis, nil until the first refresh
}

// NotStarted is the initial phase.
type NotStarted struct{}

// Interviewing holds a pending question.
type Interviewing struct {
	Transcript
	Question string
}

// InterviewDone holds the model's summary once no more questions are asked.
type InterviewDone struct {
	Transcript
	Summary []string
	Closing string // the model's closing remark, if any
}

// Generated holds the final synthesis and its rendered artifacts.
type Generated struct {
	Transcript
	Summary   []string
	Data      *prd.Data
	Artifacts prd.Artifacts
}

// Phase implements State.
func (NotStarted) Phase() Phase { return PhaseNotStarted }

// Phase implements State.
func (*Interviewing) Phase() Phase { return PhaseInterviewing }

// Phase implements State.
func (*InterviewDone) Phase() Phase { return PhaseInterviewDone }

// Phase implements State.
func (*Generated) Phase() Phase { return PhaseGenerated }
