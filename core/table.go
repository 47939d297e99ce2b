package core

import (
	"sort"

	"github.com/Comcast/dtable/grid"
)

// Options control compilation.
type Options struct {
	// Name is an optional name for the Table.
	Name string

	// Mode selects Boolean or Generalized columns.
	Mode Mode

	// SkipExhaustivenessCheck allows tables that don't cover every
	// combination of column values.  Evaluating an uncovered
	// combination gives a *NoMatchingRow.
	SkipExhaustivenessCheck bool

	// LastRowWins lets a later row silently replace an earlier row
	// with the same values.  Otherwise such a table fails with
	// *ConflictingRow.
	LastRowWins bool

	// Parser is used by CompileSource.  Defaults to grid.Markdown.
	Parser grid.Parser
}

// Table is a compiled decision table.
//
// A Table is immutable, and its methods are safe for concurrent use.
type Table struct {
	name     string
	mode     Mode
	columns  []*Column
	resolver Resolver
	radices  []uint64
	size     uint64
	entries  map[Key]Outcome

	// order is the keys in source order.
	order []Key
}

// CompileSource parses the text into a grid and then Compiles it.
func CompileSource(text string, r Resolver, opts *Options) (*Table, error) {
	p := grid.Markdown
	if opts != nil && opts.Parser != nil {
		p = opts.Parser
	}
	g, err := p.Parse(text)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return Compile(g, r, opts)
}

// MustCompileSource is CompileSource that panics on error.
func MustCompileSource(text string, r Resolver, opts *Options) *Table {
	t, err := CompileSource(text, r, opts)
	if err != nil {
		panic(err)
	}
	return t
}

// Compile builds a Table from a grid.
//
// The first error stops compilation, and no Table is returned.
func Compile(g *grid.Grid, r Resolver, opts *Options) (*Table, error) {
	if opts == nil {
		opts = &Options{}
	}
	if len(g.Header) == 0 {
		return nil, EmptyHeader
	}

	cols, err := BuildColumns(g.Header[:len(g.Header)-1], r)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		c.init(opts.Mode, r)
	}

	enc := &rowEncoder{
		mode:     opts.Mode,
		resolver: r,
		columns:  cols,
	}

	type encoded struct {
		ranks   []int
		outcome Outcome
	}

	rows := make([]encoded, 0, len(g.Rows))
	for i, cells := range g.Rows {
		if len(cells) != len(cols)+1 {
			return nil, &BadRow{Row: i + 1, Want: len(cols) + 1, Got: len(cells)}
		}
		ranks, o, err := enc.encodeRow(cells)
		if err != nil {
			return nil, &RowError{Row: i + 1, Err: err}
		}
		rows = append(rows, encoded{ranks, o})
	}

	// Domains are final only now, so keys are folded in a second
	// pass.  Ranks never change once assigned.
	radices, size, err := radicesOf(cols)
	if err != nil {
		return nil, err
	}

	t := &Table{
		name:     opts.Name,
		mode:     opts.Mode,
		columns:  cols,
		resolver: r,
		radices:  radices,
		size:     size,
		entries:  make(map[Key]Outcome, len(rows)),
		order:    make([]Key, 0, len(rows)),
	}

	seen := make(map[Key]int, len(rows))
	for i, row := range rows {
		k := fold(row.ranks, radices)
		prev, dup := seen[k]
		if dup && !opts.LastRowWins {
			return nil, &ConflictingRow{Row: i + 1, Previous: prev, Key: k}
		}
		if !dup {
			t.order = append(t.order, k)
		}
		seen[k] = i + 1
		t.entries[k] = row.outcome
	}

	if !opts.SkipExhaustivenessCheck {
		actual := uint64(len(t.entries))
		if actual != size || actual == 0 {
			return nil, &IncompleteTable{Expected: size, Actual: actual}
		}
	}

	return t, nil
}

// Name returns the name given in Options.
func (t *Table) Name() string {
	return t.name
}

// Mode returns the table's Mode.
func (t *Table) Mode() Mode {
	return t.mode
}

// Columns returns copies of the table's columns.
func (t *Table) Columns() []Column {
	acc := make([]Column, len(t.columns))
	for i, c := range t.columns {
		acc[i] = c.copy()
	}
	return acc
}

// Column finds a column by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.columns {
		if string(c.Name) == name {
			return c.copy(), true
		}
	}
	return Column{}, false
}

// Radices returns each column's arity.
func (t *Table) Radices() []uint64 {
	acc := make([]uint64, len(t.radices))
	copy(acc, t.radices)
	return acc
}

// Size is the number of possible combinations of column values.
func (t *Table) Size() uint64 {
	return t.size
}

// Len is the number of distinct rows.
func (t *Table) Len() int {
	return len(t.entries)
}

// Complete reports whether every combination has a row.
func (t *Table) Complete() bool {
	return uint64(len(t.entries)) == t.size
}

// Lookup finds the Outcome for a Key.
func (t *Table) Lookup(k Key) (Outcome, bool) {
	o, have := t.entries[k]
	return o, have
}

// Keys returns the keys in source order.
func (t *Table) Keys() []Key {
	acc := make([]Key, len(t.order))
	copy(acc, t.order)
	return acc
}

// SortedKeys returns the keys in ascending order.
func (t *Table) SortedKeys() []Key {
	acc := t.Keys()
	sort.Slice(acc, func(i, j int) bool {
		return acc[i] < acc[j]
	})
	return acc
}
