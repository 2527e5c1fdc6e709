package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jywlabs/prdwiz/internal/prd"
	"github.com/jywlabs/prdwiz/internal/session"
)

var (
	quickOutputFlag  string
	quickNewFlag     bool
	quickPromptFlag  bool
	quickArchiveFlag bool
)

var quickCmd = &cobra.Command{
	Use:   "quick [brief]",
	Short: "Generate a PRD from multiple-choice questions",
	Long: `Generate a Product Requirements Document in two steps:
1. The brief is analyzed and lettered clarifying questions are generated
2. Your answers are used to write the PRD

Answer with a letter (A, B, C, D) or type your own answer. Choosing the
"Other" option asks for free text.

If no brief is given as arguments you are prompted for one.

Examples:
  prdwiz quick "user authentication"
  prdwiz quick "add dark mode" --new --prompt`,
	Args: cobra.ArbitraryArgs,
	RunE: runQuick,
}

func init() {
	quickCmd.Flags().StringVarP(&quickOutputFlag, "output", "o", "", "Output directory (default: config outputDir or current directory)")
	quickCmd.Flags().BoolVar(&quickNewFlag, "new", false, "Treat the brief as a new project")
	quickCmd.Flags().BoolVar(&quickPromptFlag, "prompt", false, "Also write prompt.md")
	quickCmd.Flags().BoolVar(&quickArchiveFlag, "archive", false, "Archive an existing prd.json for a different branch")
	rootCmd.AddCommand(quickCmd)
}

func runQuick(cmd *cobra.Command, args []string) error {
	cs := newCLISession(cmd.InOrStdin(), cmd.OutOrStdout())
	defer cs.Close()

	cfg, err := loadConfig()
	if err != nil {
		return cs.fail(err)
	}
	gen, _, err := newGenerator(cfg, cfg.NewLogger(cmd.ErrOrStderr(), "prdwiz"))
	if err != nil {
		return cs.fail(err)
	}

	outputDir := quickOutputFlag
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	return runQuickFlow(cmd.Context(), cs, gen, strings.Join(args, " "), quickNewFlag, writeOptions{
		OutputDir:   outputDir,
		WritePrompt: quickPromptFlag,
		Archive:     quickArchiveFlag,
	})
}

func runQuickFlow(ctx context.Context, cs *cliSession, gen *prd.Generator, brief string, isNew bool, opts writeOptions) error {
	d := cs.display
	brief = strings.TrimSpace(brief)
	d.ShowCommandHeader("Quick", brief)

	for brief == "" {
		var err error
		brief, err = cs.readLine("Describe what you want to build: ")
		if err != nil {
			return cs.fail(err)
		}
		if brief == "" {
			d.ShowWarning("A brief is required.")
		}
	}

	d.StartSpinner("analyzing brief...")
	names, err := gen.InferNames(ctx, brief)
	if err != nil {
		return cs.fail(err)
	}
	questions, err := gen.ClarifyingQuestions(ctx, prd.QuestionsInput{
		FeatureName:  names.FeatureName,
		Description:  names.Description,
		IsNewProject: isNew,
	})
	d.StopSpinner()
	if err != nil {
		return cs.fail(err)
	}

	history, err := collectAnswers(cs, questions)
	if err != nil {
		return cs.fail(err)
	}

	d.StartSpinner("generating PRD...")
	data, err := gen.GeneratePRD(ctx, prd.PRDInput{
		ProjectName:       names.ProjectName,
		FeatureName:       names.FeatureName,
		Description:       names.Description,
		ClarifyingAnswers: prd.FormatAnswers(prd.AnswersInput{Brief: brief, History: history}),
	})
	d.StopSpinner()
	if err != nil {
		return cs.fail(err)
	}

	final, artifacts, err := prd.Finalize(names.FeatureName, data, nil)
	if err != nil {
		return cs.fail(err)
	}
	if err := cs.writeResult(names.FeatureName, final, artifacts, opts); err != nil {
		return cs.fail(err)
	}
	return nil
}

// collectAnswers asks each question in turn. A letter selects an option,
// the "Other" option asks for free text and anything else is taken verbatim.
func collectAnswers(cs *cliSession, questions []prd.Question) ([]prd.Turn, error) {
	if len(questions) == 0 {
		return nil, nil
	}
	cs.display.ShowInfo("\nAnswer with a letter, or type your own answer.\n")

	turns := make([]prd.Turn, 0, len(questions))
	for i, q := range questions {
		cs.display.ShowChoices(i+1, q)
		input, err := cs.readLine("\nYour answer: ")
		if err != nil {
			return nil, err
		}

		answer := input
		for _, opt := range q.Options {
			if !strings.EqualFold(opt.Letter, input) {
				continue
			}
			answer = fmt.Sprintf("%s) %s", opt.Letter, opt.Label)
			if opt.IsOther() {
				custom, err := cs.readLine("Please specify: ")
				if err != nil {
					return nil, err
				}
				answer = custom
			}
			break
		}
		turns = append(turns, prd.Turn{Question: q.Question, Answer: firstNonBlank(answer, session.NoAnswer)})
	}
	return turns, nil
}

func firstNonBlank(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
