package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONWriter outputs results as indented JSON.
type JSONWriter struct{}

type modelsDoc struct {
	Models []string `json:"models"`
}

type previewDoc struct {
	DryRun bool `json:"dry_run"`
	Preview
}

func (j *JSONWriter) Models(w io.Writer, models []string) error {
	if models == nil {
		models = []string{}
	}
	return writeJSON(w, modelsDoc{Models: models})
}

func (j *JSONWriter) Preview(w io.Writer, p Preview) error {
	return writeJSON(w, previewDoc{DryRun: true, Preview: p})
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
