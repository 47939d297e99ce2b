/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package grid turns source text into an ordered header and ordered
// body rows of cell strings.
//
// The only source syntax currently supported is the pipe table found
// in GitHub-flavored Markdown:
//
//	| a     | b     |      |
//	|-------|-------|------|
//	| true  | false | cat1 |
//
// The header keeps the (usually blank) cell above the outcome column
// so that header and body rows have the same width.
package grid

import (
	"errors"
	"strings"

	md "github.com/russross/blackfriday/v2"
)

// NoTable occurs when the text does not contain a table.
var NoTable = errors.New("no table found")

// Grid is the cell-level view of a table.
type Grid struct {
	// Header is the first row, including the label cell for the
	// outcome column.
	Header []string `json:"header"`

	// Rows are the body rows in source order.
	Rows [][]string `json:"rows,omitempty"`
}

// Width is the number of header cells.
func (g *Grid) Width() int {
	return len(g.Header)
}

// Parser turns text into a Grid.
type Parser interface {
	Parse(text string) (*Grid, error)
}

// ParserFunc adapts a function to a Parser.
type ParserFunc func(text string) (*Grid, error)

func (f ParserFunc) Parse(text string) (*Grid, error) {
	return f(text)
}

// Markdown is the default Parser.
var Markdown Parser = ParserFunc(ParseMarkdown)

// Extensions are the blackfriday extensions used by ParseMarkdown.
//
// NoIntraEmphasis keeps tokens like "friends_only" intact.
var Extensions = md.Tables | md.NoIntraEmphasis

// ParseMarkdown finds the first pipe table in the text and returns
// its cells.
//
// Leading indentation is removed from every line first, so tables
// embedded in indented strings (Go raw literals, YAML block scalars)
// aren't mistaken for code blocks.
//
// The underlying table parser pads short rows with empty cells and
// drops extra cells.  An empty cell will later fail symbol
// resolution, so a short row is still reported.
//
// Each separator cell needs at least three dashes.  A shorter
// separator like "|-|-|" or "|:--|" isn't a table to blackfriday
// (though GitHub renders one), so the result is NoTable.
func ParseMarkdown(text string) (*Grid, error) {
	doc := md.New(md.WithExtensions(Extensions)).Parse([]byte(dedent(text)))

	var table *md.Node
	doc.Walk(func(n *md.Node, entering bool) md.WalkStatus {
		if entering && n.Type == md.Table {
			table = n
			return md.Terminate
		}
		return md.GoToNext
	})

	if table == nil {
		return nil, NoTable
	}

	g := &Grid{
		Rows: make([][]string, 0, 16),
	}

	for section := table.FirstChild; section != nil; section = section.Next {
		for row := section.FirstChild; row != nil; row = row.Next {
			cells := make([]string, 0, 8)
			for cell := row.FirstChild; cell != nil; cell = cell.Next {
				cells = append(cells, cellText(cell))
			}
			switch section.Type {
			case md.TableHead:
				g.Header = cells
			case md.TableBody:
				g.Rows = append(g.Rows, cells)
			}
		}
	}

	if len(g.Header) == 0 {
		return nil, NoTable
	}

	return g, nil
}

// cellText gathers the literal text under a table cell.  Inline
// markup (emphasis, code spans) is dropped but its text is kept.
func cellText(cell *md.Node) string {
	var b strings.Builder
	cell.Walk(func(n *md.Node, entering bool) md.WalkStatus {
		if !entering {
			return md.GoToNext
		}
		switch n.Type {
		case md.Text, md.Code, md.HTMLSpan:
			b.Write(n.Literal)
		case md.Softbreak, md.Hardbreak:
			b.WriteByte(' ')
		}
		return md.GoToNext
	})
	return strings.TrimSpace(b.String())
}

func dedent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, " \t")
	}
	return strings.Join(lines, "\n")
}
