package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// Summary is the machine-readable result line printed after a successful run.
type Summary struct {
	OK             bool   `json:"ok"`
	OutputDir      string `json:"outputDir"`
	PRDPath        string `json:"prdPath"`
	PRDJSONPath    string `json:"prdJsonPath"`
	Project        string `json:"project"`
	BranchName     string `json:"branchName"`
	Feature        string `json:"feature"`
	UserStoryCount int    `json:"userStoryCount"`
}

// Failure is the machine-readable result line printed when a run fails.
type Failure struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Printer handles formatted output for the CLI.
type Printer struct {
	w io.Writer
}

// New creates a new Printer that writes to the given writer.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Artifact echoes a written file with a header line.
// Format: "--- <path> ---" followed by the content.
func (p *Printer) Artifact(path string, content []byte) {
	fmt.Fprintf(p.w, "--- %s ---\n", path)
	p.w.Write(content)
	if len(content) > 0 && content[len(content)-1] != '\n' {
		fmt.Fprintln(p.w)
	}
}

// Result prints the success summary as one JSON line.
func (p *Printer) Result(s Summary) error {
	s.OK = true
	return p.jsonLine(s)
}

// Error prints a human-readable error line followed by a JSON error line.
// Format: "Error: <message>" then {"ok":false,"error":"<message>"}
func (p *Printer) Error(err error) error {
	fmt.Fprintf(p.w, "Error: %s\n", err)
	return p.jsonLine(Failure{OK: false, Error: err.Error()})
}

func (p *Printer) jsonLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.w, "%s\n", data)
	return err
}
