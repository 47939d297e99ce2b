package tools

import (
	"io"

	"github.com/Comcast/dtable/core"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderPretty writes the table with box-drawing characters for a
// terminal.  Rows are in key order.  Unlike RenderMarkdown, the output
// isn't meant to be compiled.
func RenderPretty(t *core.Table, w io.Writer) error {
	header, rows, err := cells(t)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault

	h := make(table.Row, len(header))
	for i, s := range header {
		h[i] = s
	}
	// The outcome column has no name.
	h[len(h)-1] = "=>"
	tw.AppendHeader(h)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, s := range row {
			r[i] = s
		}
		tw.AppendRow(r)
	}

	tw.Render()
	return nil
}
