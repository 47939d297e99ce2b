package core

import (
	"fmt"
)

// Outcome finds the stored Outcome for the Bindings.
//
// The Bindings are encoded exactly as rows were encoded at compile
// time.  A Failure Outcome is returned as an Outcome, not an error;
// see Evaluate.
func (t *Table) Outcome(bs Bindings) (Outcome, Key, error) {
	ranks := make([]int, len(t.columns))
	for i, c := range t.columns {
		v, have := bs[string(c.Name)]
		if !have {
			return Outcome{}, 0, &MissingBinding{Column: c.Name}
		}
		r, err := t.rank(c, v)
		if err != nil {
			return Outcome{}, 0, err
		}
		ranks[i] = r
	}

	k := fold(ranks, t.radices)
	o, have := t.entries[k]
	if !have {
		return Outcome{}, k, &NoMatchingRow{Key: k}
	}
	return o, k, nil
}

// Evaluate returns the Symbol for the Bindings.
//
// Errors are *MissingBinding, *InvalidCellValue, *UnknownSymbol,
// *OutOfDomain, *NoMatchingRow, and *OutcomeFailure (for a row
// authored as "error, ...").
func (t *Table) Evaluate(bs Bindings) (Symbol, error) {
	o, _, err := t.Outcome(bs)
	if err != nil {
		return "", err
	}
	if err = o.Err(); err != nil {
		return "", err
	}
	return o.Symbol, nil
}

// MustEvaluate is Evaluate that panics on any error.
//
// Use when the Bindings must have a successful outcome.
func (t *Table) MustEvaluate(bs Bindings) Symbol {
	sym, err := t.Evaluate(bs)
	if err != nil {
		panic(err)
	}
	return sym
}

func (t *Table) rank(c *Column, v interface{}) (int, error) {
	if t.mode == Boolean {
		b, ok := truth(v)
		if !ok {
			return 0, &InvalidCellValue{
				Column:   c.Name,
				Cell:     fmt.Sprint(v),
				Expected: BooleanLiterals,
			}
		}
		return bit(b), nil
	}

	tok := token(v)
	sym, ok := resolve(t.resolver, tok)
	if !ok {
		return 0, &UnknownSymbol{Token: tok}
	}
	r, have := c.Rank(sym)
	if !have {
		return 0, &OutOfDomain{Column: c.Name, Value: string(sym)}
	}
	return r, nil
}

// Decode returns the Bindings that encode to the Key.
//
// Boolean mode values are bools; Generalized mode values are Symbols.
func (t *Table) Decode(k Key) (Bindings, error) {
	if t.size <= uint64(k) {
		return nil, &NoMatchingRow{Key: k}
	}
	ranks := unfold(k, t.radices)
	bs := make(Bindings, len(t.columns))
	for i, c := range t.columns {
		if t.mode == Boolean {
			bs[string(c.Name)] = ranks[i] == 1
		} else {
			bs[string(c.Name)] = c.Domain[ranks[i]]
		}
	}
	return bs, nil
}
