package core

import (
	"context"
	"fmt"
)

// TableSource is the authored form of a table, typically read from a
// YAML file.
//
//	name: visibility
//	mode: generalized
//	registry:
//	  symbols: [allowed, show, hide]
//	  enums:
//	    status: [friends_only, public, closed]
//	source: |
//	  | status | allowed |      |
//	  |--------|---------|------|
//	  ...
type TableSource struct {
	// Name is the generic name for this table.
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Id should be a globally unique identifier (such as a hash
	// of a canonical representation of the TableSource).
	//
	// This package does not read or write this value.
	Id string `json:"id,omitempty" yaml:",omitempty"`

	// Doc is general documentation about the table.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Mode is "boolean" (the default) or "generalized".
	Mode string `json:"mode,omitempty" yaml:",omitempty"`

	// Raising makes Decide panic instead of returning an error.
	Raising bool `json:"raising,omitempty" yaml:",omitempty"`

	// SkipValidation disables the exhaustiveness check.
	SkipValidation bool `json:"skipValidation,omitempty" yaml:"skipValidation,omitempty"`

	// LastRowWins lets later duplicate rows replace earlier ones.
	LastRowWins bool `json:"lastRowWins,omitempty" yaml:"lastRowWins,omitempty"`

	// Registry gives the known symbols.
	Registry *Registry `json:"registry,omitempty" yaml:",omitempty"`

	// Interpreter names the interpreter for Derive.  Defaults to
	// DefaultInterpreter.
	Interpreter string `json:"interpreter,omitempty" yaml:",omitempty"`

	// Derive optionally maps column names to expressions that
	// compute that column's value from an incoming message.
	Derive map[string]string `json:"derive,omitempty" yaml:",omitempty"`

	// Source is the table text.
	Source string `json:"source" yaml:"source"`
}

// Options returns the compilation Options for the source.
func (s *TableSource) Options() (*Options, error) {
	mode, err := ParseMode(s.Mode)
	if err != nil {
		return nil, err
	}
	return &Options{
		Name:                    s.Name,
		Mode:                    mode,
		SkipExhaustivenessCheck: s.SkipValidation,
		LastRowWins:             s.LastRowWins,
	}, nil
}

// Compile compiles the table and any derivations.
//
// The interpreters are only consulted if the source has derivations.
// If the source is Raising, a compilation error causes a panic.
func (s *TableSource) Compile(ctx context.Context, interpreters map[string]Interpreter) (*Decider, error) {
	d, err := s.compile(ctx, interpreters)
	if err != nil && s.Raising {
		panic(err)
	}
	return d, err
}

func (s *TableSource) compile(ctx context.Context, interpreters map[string]Interpreter) (*Decider, error) {
	opts, err := s.Options()
	if err != nil {
		return nil, err
	}
	reg := s.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	t, err := CompileSource(s.Source, reg, opts)
	if err != nil {
		if s.Name != "" {
			err = fmt.Errorf("table %s: %w", s.Name, err)
		}
		return nil, err
	}

	d := &Decider{
		Source: s,
		Table:  t,
	}

	if 0 < len(s.Derive) {
		if interpreters == nil {
			interpreters = DefaultInterpreters
		}
		name := s.Interpreter
		if name == "" {
			name = DefaultInterpreter
		}
		i, have := interpreters[name]
		if !have {
			return nil, fmt.Errorf("%w: %s", InterpreterNotFound, name)
		}
		if d.Deriver, err = NewDeriver(ctx, i, s.Derive); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// MustCompile is Compile that panics on error.
func (s *TableSource) MustCompile(ctx context.Context, interpreters map[string]Interpreter) *Decider {
	d, err := s.compile(ctx, interpreters)
	if err != nil {
		panic(err)
	}
	return d
}

// Decider is a compiled TableSource.
type Decider struct {
	Source  *TableSource
	Table   *Table
	Deriver *Deriver
}

// Bindings runs any derivations on the message.
func (d *Decider) Bindings(ctx context.Context, msg Bindings) (Bindings, error) {
	if d.Deriver == nil {
		return msg, nil
	}
	return d.Deriver.Derive(ctx, msg)
}

// Decide derives Bindings from the message and evaluates them.
//
// If the source is Raising, any error causes a panic instead.
func (d *Decider) Decide(ctx context.Context, msg Bindings) (Symbol, error) {
	bs, err := d.Bindings(ctx, msg)
	if err == nil {
		var sym Symbol
		if sym, err = d.Table.Evaluate(bs); err == nil {
			return sym, nil
		}
	}
	if d.Source.Raising {
		panic(err)
	}
	return "", err
}
