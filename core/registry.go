package core

import (
	"sort"
	"strings"
	"sync"
)

// Registry is a Resolver over a fixed set of symbols.
//
// Symbols lists the plain symbols (column names, outcomes, values).
// Enums optionally declares closed domains: each key is a column name
// and each value is that column's variants in rank order.  Enum keys
// and variants are symbols too, so they don't need to be repeated in
// Symbols.  The symbols "true" and "false" always resolve.
//
// A Registry can be used concurrently once it has been populated.
// Add and Declare are not safe to call while the Registry is in use.
type Registry struct {
	Symbols []string            `json:"symbols,omitempty" yaml:",omitempty"`
	Enums   map[string][]string `json:"enums,omitempty" yaml:",omitempty"`

	once  sync.Once
	index map[string]bool
}

// NewRegistry makes a Registry with the given symbols.
func NewRegistry(symbols ...string) *Registry {
	return &Registry{
		Symbols: symbols,
	}
}

// Add appends symbols; returns the Registry.
func (r *Registry) Add(symbols ...string) *Registry {
	r.Symbols = append(r.Symbols, symbols...)
	return r
}

// Declare gives a column a closed domain; returns the Registry.
func (r *Registry) Declare(column string, variants ...string) *Registry {
	if r.Enums == nil {
		r.Enums = make(map[string][]string)
	}
	r.Enums[column] = variants
	return r
}

func (r *Registry) build() {
	r.index = make(map[string]bool, len(r.Symbols)+2)
	r.index[string(True)] = true
	r.index[string(False)] = true
	for _, s := range r.Symbols {
		r.index[strings.TrimSpace(s)] = true
	}
	for column, variants := range r.Enums {
		r.index[column] = true
		for _, v := range variants {
			r.index[strings.TrimSpace(v)] = true
		}
	}
}

// Resolve implements Resolver.
func (r *Registry) Resolve(token string) (Symbol, bool) {
	r.once.Do(r.build)
	token = strings.TrimSpace(token)
	if r.index[token] {
		return Symbol(token), true
	}
	return "", false
}

// Enum implements ColumnResolver.
func (r *Registry) Enum(column Symbol) []Symbol {
	variants, have := r.Enums[string(column)]
	if !have {
		return nil
	}
	acc := make([]Symbol, len(variants))
	for i, v := range variants {
		acc[i] = Symbol(strings.TrimSpace(v))
	}
	return acc
}

// Names returns all resolvable symbols in sorted order.
func (r *Registry) Names() []string {
	r.once.Do(r.build)
	acc := make([]string, 0, len(r.index))
	for s := range r.index {
		acc = append(acc, s)
	}
	sort.Strings(acc)
	return acc
}
