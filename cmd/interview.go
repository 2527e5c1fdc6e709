package cmd

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jywlabs/prdwiz/internal/prd"
	"github.com/jywlabs/prdwiz/internal/session"
)

var (
	interviewOutputFlag      string
	interviewSkipPreviewFlag bool
	interviewPromptFlag      bool
	interviewArchiveFlag     bool
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Generate a PRD through an interview",
	Long: `Generate a Product Requirements Document through a conversational interview.

You describe what you want to build, then answer one question at a time.
After each answer a preview of features and user stories is shown. Once the
interview is done you can leave feedback on the preview before generating.

Interview commands:
  (empty line)     Skip the question
  /finish          End the interview now
  /restart         Start over

Feedback commands:
  f<N> <note>      Note on feature N (e.g. "f2 needs offline mode")
  s<ID> <note>     Note on a story (e.g. "sUS-003 also email")
  /generate        Generate the PRD (or press Enter)
  /restart         Start over

Examples:
  prdwiz
  prdwiz interview --output ./docs --prompt
  prdwiz interview --skip-preview --archive`,
	Args: cobra.NoArgs,
	RunE: runInterview,
}

func init() {
	interviewCmd.Flags().StringVarP(&interviewOutputFlag, "output", "o", "", "Output directory (prompted when empty)")
	interviewCmd.Flags().BoolVar(&interviewSkipPreviewFlag, "skip-preview", false, "Skip previews and the feedback step")
	interviewCmd.Flags().BoolVar(&interviewPromptFlag, "prompt", false, "Also write prompt.md")
	interviewCmd.Flags().BoolVar(&interviewArchiveFlag, "archive", false, "Archive an existing prd.json for a different branch")
	rootCmd.Flags().AddFlagSet(interviewCmd.Flags())
	rootCmd.AddCommand(interviewCmd)
}

// interviewOptions configure one interview run.
type interviewOptions struct {
	writeOptions
	AskOutputDir bool
	SkipPreview  bool
}

func runInterview(cmd *cobra.Command, args []string) error {
	cs := newCLISession(cmd.InOrStdin(), cmd.OutOrStdout())
	defer cs.Close()

	cfg, err := loadConfig()
	if err != nil {
		return cs.fail(err)
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr(), "prdwiz")
	gen, _, err := newGenerator(cfg, logger)
	if err != nil {
		return cs.fail(err)
	}

	outputDir := interviewOutputFlag
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	opts := interviewOptions{
		writeOptions: writeOptions{
			OutputDir:   outputDir,
			WritePrompt: interviewPromptFlag,
			Archive:     interviewArchiveFlag,
		},
		AskOutputDir: !cmd.Flags().Changed("output"),
		SkipPreview:  interviewSkipPreviewFlag || !cfg.Preview,
	}
	return runInterviewFlow(cmd.Context(), cs, gen, logger, opts)
}

// runInterviewFlow drives a session from the terminal until a PRD is written.
func runInterviewFlow(ctx context.Context, cs *cliSession, gen *prd.Generator, logger *log.Logger, opts interviewOptions) error {
	d := cs.display
	d.ShowCommandHeader("Interview", "")

	if opts.AskOutputDir {
		dir, err := cs.readLine(fmt.Sprintf("Output directory [%s]: ", orDot(opts.OutputDir)))
		if err != nil {
			return cs.fail(err)
		}
		if dir != "" {
			opts.OutputDir = dir
		}
	}

	s := session.New(gen, session.Options{Preview: !opts.SkipPreview, Logger: logger})
	for {
		g, err := interviewOnce(ctx, cs, s, opts.SkipPreview)
		if errors.Is(err, errRestart) {
			s.Restart()
			d.ShowInfo("\nStarting over.\n\n")
			continue
		}
		if err != nil {
			return cs.fail(err)
		}
		if err := cs.writeResult(g.Names.FeatureName, g.Data, g.Artifacts, opts.writeOptions); err != nil {
			return cs.fail(err)
		}
		return nil
	}
}

// errRestart signals that the user asked to start over.
var errRestart = errors.New("restart requested")

func interviewOnce(ctx context.Context, cs *cliSession, s *session.Session, skipPreview bool) (*session.Generated, error) {
	d := cs.display

	var brief string
	for brief == "" {
		var err error
		brief, err = cs.readLine("Describe what you want to build: ")
		if err != nil {
			return nil, err
		}
		if brief == "" {
			d.ShowWarning("A brief is required.")
		}
	}

	d.StartSpinner("thinking...")
	err := s.Begin(ctx, brief)
	d.StopSpinner()
	if err != nil {
		return nil, err
	}

	for {
		st, ok := s.State().(*session.Interviewing)
		if !ok {
			break
		}
		d.ShowQuestion(s.TurnNumber(), st.Question)
		answer, err := cs.readLine("> ")
		if err != nil {
			return nil, err
		}

		switch strings.ToLower(answer) {
		case "/restart":
			return nil, errRestart
		case "/finish":
			if err := s.Finish(); err != nil {
				return nil, err
			}
			continue
		}

		d.StartSpinner("thinking...")
		err = s.Answer(ctx, answer)
		d.StopSpinner()
		if err != nil {
			return nil, err
		}
		if !skipPreview {
			d.ShowPreview(s.Preview())
		}
	}

	if done, ok := s.State().(*session.InterviewDone); ok && len(done.Summary) > 0 {
		d.ShowInfo("\nInterview complete.\n")
		for _, line := range done.Summary {
			d.ShowInfo("  - %s\n", line)
		}
	}

	if !skipPreview {
		if err := feedbackLoop(ctx, cs, s); err != nil {
			return nil, err
		}
	}

	d.StartSpinner("generating PRD...")
	g, err := s.Generate(ctx, nil)
	d.StopSpinner()
	return g, err
}

// feedbackPattern matches "f2 note" or "sUS-003 note".
var feedbackPattern = regexp.MustCompile(`^([fFsS])(\S+)\s+(.+)$`)

func feedbackLoop(ctx context.Context, cs *cliSession, s *session.Session) error {
	d := cs.display

	if s.Preview() == nil {
		d.StartSpinner("building preview...")
		err := s.RefreshPreview(ctx)
		d.StopSpinner()
		if err != nil {
			return err
		}
	}
	d.ShowPreview(s.Preview())
	d.ShowFeedbackHelp()

	for {
		line, err := cs.readLine("feedback> ")
		if err != nil {
			return err
		}
		switch strings.ToLower(line) {
		case "", "/generate":
			if fb := s.Feedback(); !fb.Empty() {
				d.ShowInfo("Generating with %d feedback note(s).\n", fb.Count())
			}
			return nil
		case "/restart":
			return errRestart
		}

		m := feedbackPattern.FindStringSubmatch(line)
		if m == nil {
			d.ShowWarning("Use f<N> <note>, s<ID> <note>, /generate or /restart.")
			continue
		}

		d.StartSpinner("updating preview...")
		if strings.EqualFold(m[1], "f") {
			n, convErr := strconv.Atoi(m[2])
			if convErr != nil {
				d.StopSpinner()
				d.ShowWarning(fmt.Sprintf("Not a feature number: %s", m[2]))
				continue
			}
			err = s.AddFeatureFeedback(ctx, n-1, m[3])
		} else {
			err = s.AddStoryFeedback(ctx, m[2], m[3])
		}
		d.StopSpinner()

		if errors.Is(err, session.ErrUnknownItem) {
			d.ShowWarning(err.Error())
			continue
		}
		if err != nil {
			return err
		}
		d.ShowPreview(s.Preview())
		d.ShowInfo("  %d feedback note(s) recorded\n", s.Feedback().Count())
	}
}

func orDot(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
