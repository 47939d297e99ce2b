package core

import "strings"

// Symbol is an opaque identifier that already exists in the caller's
// environment.  The compiler never makes new Symbols; it only asks a
// Resolver whether a token names one.
type Symbol string

func (s Symbol) String() string {
	return string(s)
}

const (
	// True is the Symbol for a true-like value.
	True Symbol = "true"

	// False is the Symbol for a false-like value.
	False Symbol = "false"
)

// Resolver maps a token to an existing Symbol.
type Resolver interface {
	// Resolve reports the Symbol named by the token (if any).
	Resolve(token string) (Symbol, bool)
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc func(token string) (Symbol, bool)

func (f ResolverFunc) Resolve(token string) (Symbol, bool) {
	return f(token)
}

// ColumnResolver is a Resolver that can also close the domain of a
// column.
//
// A column with an Enum accepts only that Enum's variants, and its
// domain is the Enum in declaration order (whether or not every
// variant appears in the table).  A token that resolves but isn't a
// variant is an *OutOfDomain error.
type ColumnResolver interface {
	Resolver

	// Enum returns the variants declared for the column.  Nil means
	// the column's domain is discovered from the table body.
	Enum(column Symbol) []Symbol
}

// resolve resolves a header or outcome token.
func resolve(r Resolver, token string) (Symbol, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return r.Resolve(token)
}
