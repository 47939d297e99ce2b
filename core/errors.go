package core

// These errors are user errors, not internal errors.  Compile-time
// errors abort compilation; evaluation errors leave the Table alone
// and are safe to retry with other Bindings.

import (
	"errors"
	"fmt"
	"strings"
)

// EmptyHeader occurs when a grid has no header cells at all.
var EmptyHeader = errors.New("table header has no cells")

// BooleanLiterals are the cell values accepted in Boolean mode.
var BooleanLiterals = []string{"true", "false", "1", "0"}

// ParseError occurs when the source text isn't a well-formed grid.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnknownSymbol occurs when a header, cell, or outcome token doesn't
// resolve.
type UnknownSymbol struct {
	Token string
}

func (e *UnknownSymbol) Error() string {
	return `unknown symbol "` + e.Token + `"`
}

// DuplicateColumn occurs when two header cells resolve to the same
// name.
type DuplicateColumn struct {
	Name Symbol
}

func (e *DuplicateColumn) Error() string {
	return `duplicate column "` + string(e.Name) + `"`
}

// InvalidCellValue occurs when a Boolean mode value is neither
// true-like nor false-like.
type InvalidCellValue struct {
	Column   Symbol
	Cell     string
	Expected []string
}

func (e *InvalidCellValue) Error() string {
	return fmt.Sprintf(`invalid value "%s" for column "%s" (expected one of %s)`,
		e.Cell, e.Column, strings.Join(e.Expected, ", "))
}

// OutOfDomain occurs when a value resolves to a Symbol that isn't in
// the column's domain.
type OutOfDomain struct {
	Column Symbol
	Value  string
}

func (e *OutOfDomain) Error() string {
	return `value "` + e.Value + `" is not in the domain of column "` + string(e.Column) + `"`
}

// BadRow occurs when a body row doesn't have one cell per column plus
// the outcome cell.
type BadRow struct {
	Row  int
	Want int
	Got  int
}

func (e *BadRow) Error() string {
	return fmt.Sprintf("row %d has %d cells (want %d)", e.Row, e.Got, e.Want)
}

// RowError says which body row (counting from 1) caused Err.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ConflictingRow occurs when two rows have the same values.
type ConflictingRow struct {
	Row      int
	Previous int
	Key      Key
}

func (e *ConflictingRow) Error() string {
	return fmt.Sprintf("row %d repeats the values of row %d (key %d)", e.Row, e.Previous, e.Key)
}

// IncompleteTable occurs when the rows don't cover every combination
// of column values.
type IncompleteTable struct {
	Expected uint64
	Actual   uint64
}

func (e *IncompleteTable) Error() string {
	return fmt.Sprintf("incomplete table: %d of %d combinations", e.Actual, e.Expected)
}

// TableTooLarge occurs when the number of combinations doesn't fit in
// a Key.
type TableTooLarge struct {
	Columns int
}

func (e *TableTooLarge) Error() string {
	return fmt.Sprintf("too many combinations for %d columns", e.Columns)
}

// MissingBinding occurs when Bindings lack a column.
type MissingBinding struct {
	Column Symbol
}

func (e *MissingBinding) Error() string {
	return `missing binding for "` + string(e.Column) + `"`
}

// NoMatchingRow occurs when no row has the evaluated Key.  Only
// possible for a table compiled without the exhaustiveness check.
type NoMatchingRow struct {
	Key Key
}

func (e *NoMatchingRow) Error() string {
	return fmt.Sprintf("no matching row (key %d)", e.Key)
}

// OutcomeFailure is the evaluation result of an authored error
// outcome.
type OutcomeFailure struct {
	Message string
}

func (e *OutcomeFailure) Error() string {
	return e.Message
}
