package core

import (
	"context"
	"errors"
	"sort"
)

var (
	// InterpreterNotFound occurs when a TableSource names an
	// interpreter that isn't in the given map of interpreters.
	InterpreterNotFound = errors.New("interpreter not found")

	// DefaultInterpreters will be used by TableSource.Compile if
	// given nil interpreters.
	DefaultInterpreters = make(map[string]Interpreter)

	// DefaultInterpreter is the interpreter name used when a
	// TableSource doesn't give one.
	DefaultInterpreter = "goja"
)

// Interpreter can compile and execute derivation expressions.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// source later.
	Compile(ctx context.Context, src string) (interface{}, error)

	// Exec computes a value from the message.  The result of a
	// previous Compile might be provided.
	Exec(ctx context.Context, msg Bindings, src string, compiled interface{}) (interface{}, error)
}

// DerivationError says which column's derivation failed.
type DerivationError struct {
	Column string
	Err    error
}

func (e *DerivationError) Error() string {
	return `derivation of "` + e.Column + `": ` + e.Err.Error()
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}

type derivation struct {
	column   string
	src      string
	compiled interface{}
}

// Deriver computes Bindings from a message.
//
// Each derivation gives a column's value as an expression over the
// message.  Message properties without a derivation pass through
// unchanged.
type Deriver struct {
	interpreter Interpreter
	derivations []*derivation
}

// NewDeriver compiles the expressions (keyed by column name).
func NewDeriver(ctx context.Context, i Interpreter, exprs map[string]string) (*Deriver, error) {
	d := &Deriver{
		interpreter: i,
		derivations: make([]*derivation, 0, len(exprs)),
	}
	for column, src := range exprs {
		compiled, err := i.Compile(ctx, src)
		if err != nil {
			return nil, &DerivationError{Column: column, Err: err}
		}
		d.derivations = append(d.derivations, &derivation{
			column:   column,
			src:      src,
			compiled: compiled,
		})
	}
	sort.Slice(d.derivations, func(a, b int) bool {
		return d.derivations[a].column < d.derivations[b].column
	})
	return d, nil
}

// Columns returns the derived column names in sorted order.
func (d *Deriver) Columns() []string {
	acc := make([]string, len(d.derivations))
	for i, dv := range d.derivations {
		acc[i] = dv.column
	}
	return acc
}

// Derive returns new Bindings.  The message isn't modified.
//
// Every expression sees the original message, not the results of
// other derivations.
func (d *Deriver) Derive(ctx context.Context, msg Bindings) (Bindings, error) {
	bs := msg.Copy()
	for _, dv := range d.derivations {
		v, err := d.interpreter.Exec(ctx, msg, dv.src, dv.compiled)
		if err != nil {
			return nil, &DerivationError{Column: dv.column, Err: err}
		}
		bs[dv.column] = v
	}
	return bs, nil
}
