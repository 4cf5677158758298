package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// TableWriter renders results as rounded terminal tables.
type TableWriter struct{}

func (tw *TableWriter) Models(w io.Writer, models []string) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Available Models")
	t.AppendHeader(table.Row{"#", "Model"})
	for i, m := range models {
		t.AppendRow(table.Row{i + 1, m})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d models", len(models))})
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func (tw *TableWriter) Preview(w io.Writer, p Preview) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Dry Run")
	t.AppendHeader(table.Row{"File", "Change", "Added", "Removed", "Model"})
	t.AppendRow(table.Row{p.Path, p.Kind, fmt.Sprintf("+%d", p.Added), fmt.Sprintf("-%d", p.Removed), p.Model})
	t.AppendSeparator()
	t.AppendRow(table.Row{p.Message, p.Message, p.Message, p.Message, p.Message}, table.RowConfig{AutoMerge: true})
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}
