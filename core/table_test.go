/* Copyright 2021 Comcast Cable Communications Management, LLC
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

package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Comcast/dtable/grid"
)

var catsSrc = `
| a     | b     | c     |      |
|-------|-------|-------|------|
| false | false | false | cat1 |
| false | false | true  | cat2 |
| false | true  | false | cat3 |
| false | true  | true  | cat4 |
| true  | false | false | cat5 |
| true  | false | true  | cat6 |
| true  | true  | false | error, Not allowed |
| true  | true  | true  | cat8 |
`

func catsRegistry() *Registry {
	return NewRegistry("a", "b", "c", "cat1", "cat2", "cat3", "cat4", "cat5", "cat6", "cat8")
}

// boolSource makes a Boolean table with n columns named c0, c1, ...
// and a row for every key k with include(k).
func boolSource(n int, include func(k int) bool) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "| c%d ", i)
	}
	b.WriteString("|   |\n")
	for i := 0; i <= n; i++ {
		b.WriteString("|---")
	}
	b.WriteString("|\n")
	for k := 0; k < 1<<n; k++ {
		if !include(k) {
			continue
		}
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "| %d ", (k>>(n-1-i))&1)
		}
		fmt.Fprintf(&b, "| out%d |\n", k)
	}
	return b.String()
}

func boolRegistry(n int) *Registry {
	r := NewRegistry()
	for i := 0; i < n; i++ {
		r.Add(fmt.Sprintf("c%d", i))
	}
	for k := 0; k < 1<<n; k++ {
		r.Add(fmt.Sprintf("out%d", k))
	}
	return r
}

func TestBooleanScenario(t *testing.T) {
	tbl, err := CompileSource(catsSrc, catsRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if tbl.Len() != 8 || tbl.Size() != 8 || !tbl.Complete() {
		t.Fatalf("len %d size %d", tbl.Len(), tbl.Size())
	}

	sym, err := tbl.Evaluate(Bindings{"a": false, "b": false, "c": false})
	if err != nil {
		t.Fatal(err)
	}
	if sym != "cat1" {
		t.Fatalf("expected cat1, got %s", sym)
	}

	_, err = tbl.Evaluate(Bindings{"a": false, "b": false})
	var missing *MissingBinding
	if !errors.As(err, &missing) {
		t.Fatalf("expected a MissingBinding, got %v", err)
	}
	if missing.Column != "c" {
		t.Fatalf("wrong column %s", missing.Column)
	}
}

func TestKeyLayout(t *testing.T) {
	tbl := MustCompileSource(catsSrc, catsRegistry(), nil)

	tests := []struct {
		description string
		bs          Bindings
		key         Key
	}{
		{"all false", Bindings{"a": false, "b": false, "c": false}, 0},
		{"last column is the low bit", Bindings{"a": false, "b": false, "c": true}, 1},
		{"first column is the high bit", Bindings{"a": true, "b": false, "c": false}, 4},
		{"all true", Bindings{"a": true, "b": true, "c": true}, 7},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			_, k, err := tbl.Outcome(tc.bs)
			if err != nil {
				t.Fatal(err)
			}
			if k != tc.key {
				t.Fatalf("expected key %d, got %d", tc.key, k)
			}
		})
	}
}

func TestErrorOutcome(t *testing.T) {
	tbl := MustCompileSource(catsSrc, catsRegistry(), nil)

	bs := Bindings{"a": true, "b": true, "c": false}
	_, err := tbl.Evaluate(bs)
	var failure *OutcomeFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected an OutcomeFailure, got %v", err)
	}
	if failure.Message != "Not allowed" {
		t.Fatalf(`expected "Not allowed", got %q`, failure.Message)
	}

	o, _, err := tbl.Outcome(bs)
	if err != nil {
		t.Fatal(err)
	}
	if !o.Failed || o.String() != "error, Not allowed" {
		t.Fatalf("unexpected outcome %#v", o)
	}
}

func TestParseOutcome(t *testing.T) {
	r := NewRegistry("ok", "errors")
	tests := []struct {
		description string
		cell        string
		expected    Outcome
		unknown     bool
	}{
		{"symbol", "ok", Success("ok"), false},
		{"padded symbol", "  ok ", Success("ok"), false},
		{"failure", "error, Not allowed", Failure("Not allowed"), false},
		{"last segment wins", "error, code 7, Try again later ", Failure("Try again later"), false},
		{"space before comma", "error , oops", Failure("oops"), false},
		{"bare marker", "error", Failure("error"), false},
		{"marker prefix of a symbol", "errors", Success("errors"), false},
		{"unknown", "nope", Outcome{}, true},
		{"empty", "", Outcome{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			o, err := ParseOutcome(tc.cell, r)
			if tc.unknown {
				var unknown *UnknownSymbol
				if !errors.As(err, &unknown) {
					t.Fatalf("expected UnknownSymbol, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if o != tc.expected {
				t.Fatalf("expected %#v, got %#v", tc.expected, o)
			}
		})
	}
}

func TestExhaustiveness(t *testing.T) {
	for n := 0; n <= 4; n++ {
		all := func(int) bool { return true }
		if _, err := CompileSource(boolSource(n, all), boolRegistry(n), nil); n > 0 && err != nil {
			t.Fatalf("%d columns: %v", n, err)
		}

		if n == 0 {
			continue
		}

		holey := func(k int) bool { return k != 1 }
		_, err := CompileSource(boolSource(n, holey), boolRegistry(n), nil)
		var incomplete *IncompleteTable
		if !errors.As(err, &incomplete) {
			t.Fatalf("%d columns: expected IncompleteTable, got %v", n, err)
		}
		if incomplete.Expected != 1<<n || incomplete.Actual != 1<<n-1 {
			t.Fatalf("%d columns: %s", n, incomplete)
		}

		tbl, err := CompileSource(boolSource(n, holey), boolRegistry(n), &Options{
			SkipExhaustivenessCheck: true,
		})
		if err != nil {
			t.Fatalf("%d columns skipping: %v", n, err)
		}
		if tbl.Complete() {
			t.Fatalf("%d columns: shouldn't be complete", n)
		}
	}
}

func TestNoColumns(t *testing.T) {
	g := &grid.Grid{
		Header: []string{""},
		Rows:   [][]string{{"ok"}},
	}
	tbl, err := Compile(g, NewRegistry("ok"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if sym := tbl.MustEvaluate(nil); sym != "ok" {
		t.Fatalf("got %s", sym)
	}
}

func TestSkipValidationScenario(t *testing.T) {
	src := `
| x     | y     |     |
|-------|-------|-----|
| false | false | lo  |
| false | true  | mid |
| true  | false | mid |
`
	r := NewRegistry("x", "y", "lo", "mid")

	if _, err := CompileSource(src, r, nil); err == nil {
		t.Fatal("should have failed the exhaustiveness check")
	}

	tbl, err := CompileSource(src, r, &Options{SkipExhaustivenessCheck: true})
	if err != nil {
		t.Fatal(err)
	}

	_, err = tbl.Evaluate(Bindings{"x": true, "y": true})
	var none *NoMatchingRow
	if !errors.As(err, &none) {
		t.Fatalf("expected NoMatchingRow, got %v", err)
	}
	if none.Key != 3 {
		t.Fatalf("expected key 3, got %d", none.Key)
	}

	if sym, err := tbl.Evaluate(Bindings{"x": 1, "y": "0"}); err != nil || sym != "mid" {
		t.Fatalf("got %s %v", sym, err)
	}
}

func TestCompileErrors(t *testing.T) {
	r := NewRegistry("a", "b", "yes", "no")

	tests := []struct {
		description string
		grid        *grid.Grid
		opts        *Options
		check       func(error) bool
	}{
		{
			description: "empty header",
			grid:        &grid.Grid{},
			check: func(err error) bool {
				return err == EmptyHeader
			},
		},
		{
			description: "unknown column",
			grid: &grid.Grid{
				Header: []string{"a", "zzz", ""},
			},
			check: func(err error) bool {
				var e *UnknownSymbol
				return errors.As(err, &e) && e.Token == "zzz"
			},
		},
		{
			description: "blank column",
			grid: &grid.Grid{
				Header: []string{"a", "", ""},
			},
			check: func(err error) bool {
				var e *UnknownSymbol
				return errors.As(err, &e) && e.Token == ""
			},
		},
		{
			description: "duplicate column",
			grid: &grid.Grid{
				Header: []string{"a", " a ", ""},
			},
			check: func(err error) bool {
				var e *DuplicateColumn
				return errors.As(err, &e) && e.Name == "a"
			},
		},
		{
			description: "invalid boolean cell",
			grid: &grid.Grid{
				Header: []string{"a", ""},
				Rows:   [][]string{{"0", "no"}, {"maybe", "yes"}},
			},
			check: func(err error) bool {
				var e *InvalidCellValue
				var re *RowError
				return errors.As(err, &e) && e.Cell == "maybe" && e.Column == "a" &&
					errors.As(err, &re) && re.Row == 2
			},
		},
		{
			description: "unknown outcome",
			grid: &grid.Grid{
				Header: []string{"a", ""},
				Rows:   [][]string{{"0", "no"}, {"1", "perhaps"}},
			},
			check: func(err error) bool {
				var e *UnknownSymbol
				return errors.As(err, &e) && e.Token == "perhaps"
			},
		},
		{
			description: "short row",
			grid: &grid.Grid{
				Header: []string{"a", "b", ""},
				Rows:   [][]string{{"0", "no"}},
			},
			check: func(err error) bool {
				var e *BadRow
				return errors.As(err, &e) && e.Row == 1 && e.Want == 3 && e.Got == 2
			},
		},
		{
			description: "conflicting rows",
			grid: &grid.Grid{
				Header: []string{"a", ""},
				Rows:   [][]string{{"0", "no"}, {"1", "yes"}, {"true", "no"}},
			},
			check: func(err error) bool {
				var e *ConflictingRow
				return errors.As(err, &e) && e.Row == 3 && e.Previous == 2 && e.Key == 1
			},
		},
		{
			description: "incomplete",
			grid: &grid.Grid{
				Header: []string{"a", "b", ""},
				Rows:   [][]string{{"0", "0", "no"}},
			},
			check: func(err error) bool {
				var e *IncompleteTable
				return errors.As(err, &e) && e.Expected == 4 && e.Actual == 1
			},
		},
		{
			description: "no rows",
			grid: &grid.Grid{
				Header: []string{"a", ""},
			},
			opts: &Options{Mode: Generalized},
			check: func(err error) bool {
				var e *IncompleteTable
				return errors.As(err, &e) && e.Actual == 0
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			tbl, err := Compile(tc.grid, r, tc.opts)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tbl != nil {
				t.Fatal("returned a table with an error")
			}
			if !tc.check(err) {
				t.Fatalf("unexpected error %v (%T)", err, err)
			}
		})
	}
}

func TestParseErrorFromSource(t *testing.T) {
	_, err := CompileSource("no table here", NewRegistry(), nil)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if !errors.Is(err, grid.NoTable) {
		t.Fatalf("expected to wrap grid.NoTable: %v", err)
	}
}

func TestLastRowWins(t *testing.T) {
	g := &grid.Grid{
		Header: []string{"a", ""},
		Rows:   [][]string{{"0", "no"}, {"1", "yes"}, {"true", "no"}},
	}
	tbl, err := Compile(g, NewRegistry("a", "yes", "no"), &Options{LastRowWins: true})
	if err != nil {
		t.Fatal(err)
	}
	if sym := tbl.MustEvaluate(Bindings{"a": true}); sym != "no" {
		t.Fatalf("expected the later row, got %s", sym)
	}
	if keys := tbl.Keys(); len(keys) != 2 || keys[0] != 0 || keys[1] != 1 {
		t.Fatalf("keys %v", keys)
	}
}

func TestEncodingIdentity(t *testing.T) {
	n := 4
	src := boolSource(n, func(int) bool { return true })
	tbl := MustCompileSource(src, boolRegistry(n), nil)

	for _, k := range tbl.Keys() {
		bs, err := tbl.Decode(k)
		if err != nil {
			t.Fatal(err)
		}
		sym, err := tbl.Evaluate(bs)
		if err != nil {
			t.Fatal(err)
		}
		if want := Symbol(fmt.Sprintf("out%d", k)); sym != want {
			t.Fatalf("key %d: expected %s, got %s", k, want, sym)
		}
	}

	if _, err := tbl.Decode(Key(1 << n)); err == nil {
		t.Fatal("decoded a key that's out of range")
	}
}

func TestDeterminism(t *testing.T) {
	t1 := MustCompileSource(catsSrc, catsRegistry(), nil)
	t2 := MustCompileSource(catsSrc, catsRegistry(), nil)
	for k := Key(0); k < Key(t1.Size()); k++ {
		bs, err := t1.Decode(k)
		if err != nil {
			t.Fatal(err)
		}
		o1, _, err1 := t1.Outcome(bs)
		o2, _, err2 := t2.Outcome(bs)
		if o1 != o2 || (err1 == nil) != (err2 == nil) {
			t.Fatalf("key %d: %v/%v %v/%v", k, o1, o2, err1, err2)
		}
	}
}

func TestBooleanBindings(t *testing.T) {
	src := `
| a |     |
|---|-----|
| 0 | no  |
| 1 | yes |
`
	tbl := MustCompileSource(src, NewRegistry("a", "yes", "no"), nil)

	type myBool bool

	tests := []struct {
		description string
		value       interface{}
		expected    Symbol
		invalid     bool
	}{
		{"bool true", true, "yes", false},
		{"bool false", false, "no", false},
		{"nil", nil, "no", false},
		{"int one", 1, "yes", false},
		{"int zero", 0, "no", false},
		{"non-zero int", 42, "yes", false},
		{"float", 0.5, "yes", false},
		{"uint zero", uint8(0), "no", false},
		{"string", "true", "yes", false},
		{"string digit", "0", "no", false},
		{"upper case", "TRUE", "yes", false},
		{"symbol", False, "no", false},
		{"named bool", myBool(true), "yes", false},
		{"garbage", "yep", "", true},
		{"struct", struct{}{}, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			sym, err := tbl.Evaluate(Bindings{"a": tc.value})
			if tc.invalid {
				var e *InvalidCellValue
				if !errors.As(err, &e) {
					t.Fatalf("expected InvalidCellValue, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if sym != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, sym)
			}
		})
	}
}

func TestMustEvaluatePanics(t *testing.T) {
	tbl := MustCompileSource(catsSrc, catsRegistry(), nil)
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("didn't panic")
		}
		if _, is := r.(*MissingBinding); !is {
			t.Fatalf("panicked with %#v", r)
		}
	}()
	tbl.MustEvaluate(Bindings{})
}

func TestConcurrentEvaluate(t *testing.T) {
	n := 5
	tbl := MustCompileSource(boolSource(n, func(int) bool { return true }), boolRegistry(n), nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := Key(0); k < Key(tbl.Size()); k++ {
				bs, err := tbl.Decode(k)
				if err == nil {
					var sym Symbol
					sym, err = tbl.Evaluate(bs)
					if err == nil && sym != Symbol(fmt.Sprintf("out%d", k)) {
						err = fmt.Errorf("key %d gave %s", k, sym)
					}
				}
				if err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
