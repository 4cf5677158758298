package output

import (
	"fmt"
	"io"
)

// Preview describes a generated message that was not committed (dry run).
type Preview struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
	Model   string `json:"model"`
	Message string `json:"message"`
}

// Writer renders command results in a specific format.
type Writer interface {
	Models(w io.Writer, models []string) error
	Preview(w io.Writer, p Preview) error
}

// Formats lists the accepted format names.
var Formats = []string{"text", "table", "json"}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "", "text":
		return &TextWriter{}, nil
	case "table":
		return &TableWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
