package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jywlabs/prdwiz/internal/archive"
	"github.com/jywlabs/prdwiz/internal/display"
	"github.com/jywlabs/prdwiz/internal/output"
	"github.com/jywlabs/prdwiz/internal/prd"
)

// errInputClosed is returned when input ends before the flow completes.
var errInputClosed = errors.New("input closed")

// cliSession owns the line reader for one interactive command. It must be
// closed on every exit path.
type cliSession struct {
	reader  *bufio.Reader
	in      io.Reader
	out     io.Writer
	display *display.Display
	printer *output.Printer
	closed  bool
}

func newCLISession(in io.Reader, out io.Writer) *cliSession {
	return &cliSession{
		reader:  bufio.NewReader(in),
		in:      in,
		out:     out,
		display: display.NewDisplay(out),
		printer: output.New(out),
	}
}

// readLine prints prompt and returns the trimmed line. A final line without
// a newline is returned as is; io.EOF with nothing read is errInputClosed.
func (c *cliSession) readLine(prompt string) (string, error) {
	if c.closed {
		return "", errInputClosed
	}
	fmt.Fprint(c.out, prompt)
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errInputClosed
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Close stops the spinner and releases the input. Stdin is left open.
func (c *cliSession) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.display.StopSpinner()
	c.reader = nil
	if closer, ok := c.in.(io.Closer); ok && c.in != os.Stdin {
		return closer.Close()
	}
	return nil
}

// writeOptions control how a generated PRD is persisted.
type writeOptions struct {
	OutputDir   string
	WritePrompt bool
	Archive     bool
}

// writeResult writes the artifacts, echoes them and prints the summary line.
func (c *cliSession) writeResult(featureName string, data *prd.Data, a prd.Artifacts, opts writeOptions) error {
	paths, err := prd.ResolvePaths(opts.OutputDir, featureName)
	if err != nil {
		return err
	}
	if opts.Archive {
		if _, err := archive.IfSwitching(paths.Dir, data.BranchName, c.out); err != nil {
			return fmt.Errorf("failed to archive previous PRD: %w", err)
		}
	}
	if err := prd.WriteArtifacts(paths, a, opts.WritePrompt); err != nil {
		return err
	}

	c.printer.Artifact(paths.Markdown, []byte(a.Markdown))
	c.printer.Artifact(paths.JSON, a.JSON)

	details := []string{
		fmt.Sprintf("Markdown: %s", paths.Markdown),
		fmt.Sprintf("Tracking: %s", paths.JSON),
	}
	if opts.WritePrompt {
		details = append(details, fmt.Sprintf("Prompt:   %s", paths.Prompt))
	}
	c.display.ShowSuccess(fmt.Sprintf("PRD created: %s", featureName), details...)

	return c.printer.Result(output.Summary{
		OutputDir:      paths.Dir,
		PRDPath:        paths.Markdown,
		PRDJSONPath:    paths.JSON,
		Project:        data.Project,
		BranchName:     data.BranchName,
		Feature:        featureName,
		UserStoryCount: len(data.UserStories),
	})
}

// fail prints err in both human and machine form and returns errReported.
func (c *cliSession) fail(err error) error {
	c.display.StopSpinner()
	c.printer.Error(err)
	return errReported
}
