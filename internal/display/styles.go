package display

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// Palette
var (
	colorGreen  = lipgloss.Color("#00D787")
	colorPink   = lipgloss.Color("#FF5F87")
	colorYellow = lipgloss.Color("#FFAF00")
	colorBlue   = lipgloss.Color("#5FAFFF")
	colorGray   = lipgloss.Color("#888888")
	colorPurple = lipgloss.Color("#AF87FF")
)

// Text styles
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(colorPink).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	StyleMuted   = lipgloss.NewStyle().Foreground(colorGray)
	StyleBold    = lipgloss.NewStyle().Bold(true)
	StyleTitle   = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	StyleSpinner = lipgloss.NewStyle().Foreground(colorPurple)
)

// Preview keys: "f1" for features, "sUS-001" for stories, "A" for options.
var (
	StyleFeatureKey = lipgloss.NewStyle().Foreground(colorPurple).Bold(true)
	StyleStoryKey   = lipgloss.NewStyle().Foreground(colorBlue)
	StyleOptionKey  = lipgloss.NewStyle().Foreground(colorPurple)
)

// StyleCommandIcon is the ◇ symbol used in command headers.
var StyleCommandIcon = lipgloss.NewStyle().Foreground(colorPurple).Bold(true).SetString("◇")

const defaultWidth = 80

// width returns the terminal width of w, or defaultWidth when w is not a
// terminal.
func width(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultWidth
	}
	cols, _, err := term.GetSize(f.Fd())
	if err != nil || cols <= 0 {
		return defaultWidth
	}
	return cols
}

// box is a bordered block sized to the output width.
func (d *Display) box(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width(d.out) - 2)
}

// spinnerFrames are braille dots cycled while a model call is in flight.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
