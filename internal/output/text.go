package output

import (
	"io"
	"strings"
)

// TextWriter outputs plain, line-oriented text.
type TextWriter struct{}

// Models prints one "- <id>" line per model.
func (t *TextWriter) Models(w io.Writer, models []string) error {
	ew := &errWriter{w: w}
	for _, m := range models {
		ew.printf("- %s\n", m)
	}
	return ew.err
}

func (t *TextWriter) Preview(w io.Writer, p Preview) error {
	ew := &errWriter{w: w}
	ew.printf("Dry run: nothing staged or committed.\n")
	ew.printf("File:    %s (%s, +%d/-%d)\n", p.Path, p.Kind, p.Added, p.Removed)
	if p.Model != "" {
		ew.printf("Model:   %s\n", p.Model)
	}
	ew.println(strings.Repeat("─", 60))
	ew.println(p.Message)
	ew.println(strings.Repeat("─", 60))
	return ew.err
}
