package core

import (
	"fmt"
	"math/bits"
	"reflect"
	"strconv"
	"strings"
)

// Key identifies one combination of column values.
type Key uint64

// Mode selects how cells are classified.
type Mode int

const (
	// Boolean columns take true-like or false-like values.
	Boolean Mode = iota

	// Generalized columns take symbols from a per-column domain.
	Generalized
)

func (m Mode) String() string {
	switch m {
	case Boolean:
		return "boolean"
	case Generalized:
		return "generalized"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseMode parses "boolean" (or "") and "generalized".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "boolean", "bool":
		return Boolean, nil
	case "generalized", "symbolic":
		return Generalized, nil
	default:
		return Boolean, fmt.Errorf("unknown mode '%s'", s)
	}
}

// boolCell classifies a Boolean mode cell literal.
func boolCell(cell string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// truth classifies a bound value in Boolean mode.
//
// nil is false-like, numbers are true-like when non-zero, and strings
// (or Symbols) must be one of the BooleanLiterals.
func truth(v interface{}) (bool, bool) {
	switch vv := v.(type) {
	case nil:
		return false, true
	case bool:
		return vv, true
	case string:
		return boolCell(vv)
	case Symbol:
		return boolCell(string(vv))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0, true
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, true
	case reflect.String:
		return boolCell(rv.String())
	}
	return false, false
}

// token renders a bound value for symbol resolution in Generalized
// mode.  nil renders as "", which never resolves.
func token(v interface{}) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case Symbol:
		return string(vv)
	case string:
		return vv
	case bool:
		return strconv.FormatBool(vv)
	case fmt.Stringer:
		return vv.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// fold combines per-column ranks into a Key, first column most
// significant.
func fold(ranks []int, radices []uint64) Key {
	var k uint64
	for i, r := range ranks {
		k = k*radices[i] + uint64(r)
	}
	return Key(k)
}

// unfold is the inverse of fold.
func unfold(k Key, radices []uint64) []int {
	ranks := make([]int, len(radices))
	n := uint64(k)
	for i := len(radices) - 1; 0 <= i; i-- {
		if radices[i] == 0 {
			continue
		}
		ranks[i] = int(n % radices[i])
		n /= radices[i]
	}
	return ranks
}

// radicesOf returns each column's arity and their product.
func radicesOf(cols []*Column) ([]uint64, uint64, error) {
	radices := make([]uint64, len(cols))
	size := uint64(1)
	for i, c := range cols {
		radices[i] = uint64(c.Arity())
		hi, lo := bits.Mul64(size, radices[i])
		if hi != 0 {
			return nil, 0, &TableTooLarge{Columns: len(cols)}
		}
		size = lo
	}
	return radices, size, nil
}

// rowEncoder turns body rows into ranks and Outcomes.  In Generalized
// mode it grows the open column domains as it goes.
type rowEncoder struct {
	mode     Mode
	resolver Resolver
	columns  []*Column
}

func (e *rowEncoder) encodeRow(cells []string) ([]int, Outcome, error) {
	n := len(e.columns)
	if len(cells) != n+1 {
		return nil, Outcome{}, &BadRow{Want: n + 1, Got: len(cells)}
	}
	ranks := make([]int, n)
	for p, c := range e.columns {
		r, err := e.cell(c, cells[p])
		if err != nil {
			return nil, Outcome{}, err
		}
		ranks[p] = r
	}
	o, err := ParseOutcome(cells[n], e.resolver)
	if err != nil {
		return nil, Outcome{}, err
	}
	return ranks, o, nil
}

func (e *rowEncoder) cell(c *Column, cell string) (int, error) {
	if e.mode == Boolean {
		b, ok := boolCell(cell)
		if !ok {
			return 0, &InvalidCellValue{
				Column:   c.Name,
				Cell:     cell,
				Expected: BooleanLiterals,
			}
		}
		return bit(b), nil
	}
	sym, ok := resolve(e.resolver, cell)
	if !ok {
		return 0, &UnknownSymbol{Token: strings.TrimSpace(cell)}
	}
	r := c.observe(sym)
	if r < 0 {
		return 0, &OutOfDomain{Column: c.Name, Value: string(sym)}
	}
	return r, nil
}
