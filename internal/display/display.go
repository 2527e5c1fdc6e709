// Package display renders the interactive CLI: spinners, question boxes and
// the live PRD preview.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/term"

	"github.com/jywlabs/prdwiz/internal/prd"
)

// flusher is implemented by writers that support flushing.
type flusher interface {
	Sync() error
}

// Display handles terminal output with spinners and formatted status.
type Display struct {
	out     io.Writer
	animate bool // spinner frames are drawn only on a terminal

	spinMu    sync.Mutex
	spinning  bool
	spinStop  chan struct{}
	spinDone  chan struct{}
	spinMsg   string
	spinStart time.Time
}

// NewDisplay creates a new display writer. Animation is enabled only when out
// is a terminal.
func NewDisplay(out io.Writer) *Display {
	return &Display{out: out, animate: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// Writer returns the underlying writer.
func (d *Display) Writer() io.Writer { return d.out }

func (d *Display) flush() {
	if f, ok := d.out.(flusher); ok {
		f.Sync()
	}
}

// StartSpinner shows msg while a slow call runs. Off a terminal it prints the
// message once.
func (d *Display) StartSpinner(msg string) {
	d.spinMu.Lock()
	defer d.spinMu.Unlock()
	if d.spinning {
		d.spinMsg = msg
		return
	}
	if !d.animate {
		fmt.Fprintf(d.out, "   %s\n", StyleMuted.Render(msg))
		return
	}

	d.spinning = true
	d.spinMsg = msg
	d.spinStart = time.Now()
	d.spinStop = make(chan struct{})
	d.spinDone = make(chan struct{})

	go d.spin(d.spinStop, d.spinDone)
}

func (d *Display) spin(stop, done chan struct{}) {
	defer close(done)
	frame := 0
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			fmt.Fprint(d.out, "\r\033[K")
			d.flush()
			return
		case <-ticker.C:
			d.spinMu.Lock()
			msg := d.spinMsg
			elapsed := time.Since(d.spinStart)
			d.spinMu.Unlock()

			fmt.Fprintf(d.out, "\r\033[K   %s %s %s",
				StyleSpinner.Render(spinnerFrames[frame]), msg, StyleMuted.Render(formatElapsed(elapsed)))
			d.flush()
			frame = (frame + 1) % len(spinnerFrames)
		}
	}
}

// StopSpinner stops the loading spinner.
func (d *Display) StopSpinner() {
	d.spinMu.Lock()
	if !d.spinning {
		d.spinMu.Unlock()
		return
	}
	d.spinning = false
	close(d.spinStop)
	done := d.spinDone
	d.spinMu.Unlock()
	<-done
}

// ShowCommandHeader prints the command title with an optional detail.
func (d *Display) ShowCommandHeader(title, detail string) {
	line := fmt.Sprintf("%s %s", StyleCommandIcon.String(), StyleTitle.Render(title))
	if detail != "" {
		line += "  " + StyleMuted.Render(detail)
	}
	fmt.Fprintf(d.out, "%s\n\n", line)
}

// ShowQuestion renders an interview question in a box.
func (d *Display) ShowQuestion(n int, question string) {
	d.StopSpinner()
	header := StyleTitle.Render(fmt.Sprintf("Question %d", n))
	fmt.Fprintf(d.out, "\n%s\n", d.box(colorBlue).Render(header+"\n"+question))
}

// ShowChoices renders a multiple-choice question for the quick flow.
func (d *Display) ShowChoices(n int, q prd.Question) {
	d.StopSpinner()
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(fmt.Sprintf("%d. %s", n, q.Question)))
	for _, opt := range q.Options {
		fmt.Fprintf(&sb, "\n   %s. %s", StyleOptionKey.Render(opt.Letter), opt.Label)
	}
	fmt.Fprintf(d.out, "\n%s\n", sb.String())
}

// ShowPreview lists features with their stories. Story ids a feature
// references but the preview lacks are skipped.
func (d *Display) ShowPreview(data *prd.Data) {
	d.StopSpinner()
	if data == nil {
		return
	}

	fmt.Fprintf(d.out, "\n%s\n", StyleBold.Render("Preview"))
	if len(data.Features) == 0 {
		fmt.Fprintf(d.out, "   %s\n", StyleMuted.Render("(no features yet)"))
	}
	for i, f := range data.Features {
		fmt.Fprintf(d.out, "  %s %s", StyleFeatureKey.Render(fmt.Sprintf("f%d", i+1)), StyleBold.Render(f.Name))
		if f.Summary != "" {
			fmt.Fprintf(d.out, " %s", StyleMuted.Render("- "+f.Summary))
		}
		fmt.Fprintln(d.out)
		for _, s := range prd.StoriesForFeature(f, data.UserStories) {
			fmt.Fprintf(d.out, "     %s %s\n", StyleStoryKey.Render("s"+s.ID), s.Title)
		}
	}
}

// ShowFeedbackHelp explains the feedback sub-loop commands.
func (d *Display) ShowFeedbackHelp() {
	fmt.Fprintf(d.out, "\n%s\n", StyleMuted.Render(
		"Feedback: f<N> <note> for a feature, s<ID> <note> for a story, /generate (or empty line) to generate, /restart to start over"))
}

// ShowSuccess displays a success message followed by detail lines.
func (d *Display) ShowSuccess(msg string, details ...string) {
	d.StopSpinner()
	body := StyleSuccess.Render("[ok] " + msg)
	if len(details) > 0 {
		body += "\n" + strings.Join(details, "\n")
	}
	fmt.Fprintf(d.out, "\n%s\n", d.box(colorGreen).Render(body))
}

// ShowError displays an error message.
func (d *Display) ShowError(msg string) {
	d.StopSpinner()
	fmt.Fprintf(d.out, "%s %s\n", StyleError.Render("[!!]"), msg)
}

// ShowWarning displays a warning line.
func (d *Display) ShowWarning(msg string) {
	fmt.Fprintf(d.out, "%s %s\n", StyleWarning.Render("[--]"), msg)
}

// ShowInfo displays an info message.
func (d *Display) ShowInfo(format string, args ...interface{}) {
	fmt.Fprintf(d.out, format, args...)
}

// formatElapsed formats duration with fixed width (always 6 chars like " 1.04s")
func formatElapsed(d time.Duration) string {
	secs := d.Seconds()
	if secs < 10 {
		return fmt.Sprintf("%5.2fs", secs)
	} else if secs < 100 {
		return fmt.Sprintf("%5.1fs", secs)
	}
	return fmt.Sprintf("%5.0fs", secs)
}
