// Package diag carries the error taxonomy of the toolset: structured
// diagnostics with a severity, a code, and a structural summary of the
// offending term. Diagnostics are human-readable, one line block per
// error; warnings share the form but do not abort.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"mcrl2/internal/aterm"
)

// Level is the severity of a diagnostic.
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
	Note    Level = "note"
)

// Diagnostic is one reported problem.
type Diagnostic struct {
	Level   Level
	Code    string
	Message string
	// Subject is the offending term; its structural summary is printed.
	Subject *aterm.Term
	Notes   []string
}

// Reporter collects diagnostics and remembers whether any was fatal.
type Reporter struct {
	diags  []Diagnostic
	failed bool
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter { return &Reporter{} }

// Errorf records an error-level diagnostic.
func (r *Reporter) Errorf(code string, subject *aterm.Term, format string, args ...any) {
	r.diags = append(r.diags, Diagnostic{
		Level:   Error,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Subject: subject,
	})
	r.failed = true
}

// Warnf records a warning.
func (r *Reporter) Warnf(code string, subject *aterm.Term, format string, args ...any) {
	r.diags = append(r.diags, Diagnostic{
		Level:   Warning,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Subject: subject,
	})
}

// Failed reports whether any error-level diagnostic was recorded.
func (r *Reporter) Failed() bool { return r.failed }

// Diagnostics returns the recorded diagnostics in order.
func (r *Reporter) Diagnostics() []Diagnostic { return r.diags }

// Summarize truncates a term's textual form so diagnostics stay one
// screen line.
func Summarize(t *aterm.Term) string {
	if t == nil {
		return ""
	}
	s := t.String()
	if len(s) > 72 {
		s = s[:69] + "..."
	}
	return s
}

// Render writes every diagnostic to w, colored by severity.
func (r *Reporter) Render(w io.Writer) {
	bold := color.New(color.Bold).SprintFunc()
	for _, d := range r.diags {
		levelColor := color.New(color.FgRed).SprintFunc()
		if d.Level == Warning {
			levelColor = color.New(color.FgYellow).SprintFunc()
		} else if d.Level == Note {
			levelColor = color.New(color.FgCyan).SprintFunc()
		}
		var b strings.Builder
		b.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(d.Level)), d.Code, bold(d.Message)))
		if d.Subject != nil {
			b.WriteString(fmt.Sprintf("  --> %s\n", Summarize(d.Subject)))
		}
		for _, n := range d.Notes {
			b.WriteString(fmt.Sprintf("  note: %s\n", n))
		}
		fmt.Fprint(w, b.String())
	}
}
