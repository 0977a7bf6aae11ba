package diagnostic

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/muesli/termenv"
)

// jsonDiagnostic is the wire shape of a single diagnostic
type jsonDiagnostic struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Span     Span   `json:"span"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Hint     string `json:"hint,omitempty"`
}

// jsonReport is the wire shape of a whole checking pass
type jsonReport struct {
	Ok          bool             `json:"ok"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

// MarshalJSON renders the collection as a machine-readable report
func (d *Diagnostics) MarshalJSON() ([]byte, error) {
	report := jsonReport{
		Ok:          !d.HasErrors(),
		Diagnostics: make([]jsonDiagnostic, 0, len(d.items)),
	}
	for _, item := range d.items {
		report.Diagnostics = append(report.Diagnostics, jsonDiagnostic{
			Kind:     item.Kind.String(),
			Severity: item.Severity.String(),
			Span:     item.Span,
			Message:  item.Message,
			File:     item.File,
			Hint:     item.Hint,
		})
	}
	return json.Marshal(report)
}

// FormatColored returns the same output as Format with ANSI colors applied.
// It respects the terminal profile: on a dumb terminal the output degrades
// to plain text.
func (d *Diagnostics) FormatColored(filename string) string {
	if len(d.items) == 0 {
		return ""
	}

	profile := termenv.ColorProfile()
	red := profile.Color("1")
	yellow := profile.Color("3")
	cyan := profile.Color("6")

	var builder strings.Builder
	for i, item := range d.items {
		fileToUse := filename
		if item.File != "" {
			fileToUse = item.File
		}

		sev := termenv.String(item.Severity.String())
		switch item.Severity {
		case Error:
			sev = sev.Foreground(red).Bold()
		case Warning:
			sev = sev.Foreground(yellow).Bold()
		}

		kind := termenv.String(item.Kind.String()).Foreground(cyan)

		builder.WriteString(fmt.Sprintf("%s[%s:%d:%d]: %s (%s)",
			sev.String(),
			fileToUse,
			item.Span.Line,
			item.Span.Column,
			item.Message,
			kind.String(),
		))

		if item.Hint != "" {
			builder.WriteString(fmt.Sprintf("\n  hint: %s", item.Hint))
		}

		if i < len(d.items)-1 {
			builder.WriteString("\n")
		}
	}

	return builder.String()
}
