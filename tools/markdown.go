package tools

import (
	"fmt"
	"io"
	"strings"

	"github.com/Comcast/dtable/core"
)

// RenderMarkdown writes the table as a canonical Markdown pipe table.
//
// Rows are written in key order, and cells are padded so that the
// columns line up.  Compiling the output with the same Resolver and
// Mode gives a table with the same outcome for every assignment.
func RenderMarkdown(t *core.Table, w io.Writer) error {
	header, rows, err := cells(t)
	if err != nil {
		return err
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = max(3, len(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	line := func(cells []string) error {
		var b strings.Builder
		b.WriteString("|")
		for i, cell := range cells {
			b.WriteString(" ")
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			b.WriteString(" |")
		}
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	if err := line(header); err != nil {
		return err
	}
	sep := make([]string, len(widths))
	for i, n := range widths {
		sep[i] = strings.Repeat("-", n)
	}
	if err := line(sep); err != nil {
		return err
	}
	for _, row := range rows {
		if err := line(row); err != nil {
			return err
		}
	}
	return nil
}

// cells returns the header and the rows (in key order) as strings.
// The last cell of each row is the outcome.
func cells(t *core.Table) ([]string, [][]string, error) {
	cols := t.Columns()

	header := make([]string, len(cols)+1)
	for i, c := range cols {
		header[i] = string(c.Name)
	}

	keys := t.SortedKeys()
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		bs, err := t.Decode(k)
		if err != nil {
			return nil, nil, err
		}
		o, _ := t.Lookup(k)
		row := make([]string, len(cols)+1)
		for i, c := range cols {
			row[i] = fmt.Sprint(bs[string(c.Name)])
		}
		row[len(cols)] = o.String()
		rows = append(rows, row)
	}

	return header, rows, nil
}

func max(a, b int) int {
	if a < b {
		return b
	}
	return a
}
