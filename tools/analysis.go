/* Copyright 2018 Comcast Cable Communications Management, LLC
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

package tools

import (
	"sort"

	"github.com/Comcast/dtable/core"
)

var (
	// MaxMissing limits the number of missing assignments that
	// Analyze reports.
	MaxMissing = 64

	// MaxScan is the largest table size that Analyze will scan
	// for missing assignments and irrelevant columns.
	MaxScan uint64 = 1 << 20
)

// ColumnAnalysis summarizes one column.
type ColumnAnalysis struct {
	Name   string   `json:"name"`
	Domain []string `json:"domain"`
	Closed bool     `json:"closed,omitempty"`

	// Irrelevant means that changing only this column's value
	// never changes the outcome.  Only computed for complete
	// tables.
	Irrelevant bool `json:"irrelevant,omitempty"`
}

// TableAnalysis is a report on a compiled table.
type TableAnalysis struct {
	Name     string           `json:"name,omitempty"`
	Mode     string           `json:"mode"`
	Columns  []ColumnAnalysis `json:"columns"`
	Size     uint64           `json:"size"`
	Rows     int              `json:"rows"`
	Complete bool             `json:"complete"`

	// MissingCount is the number of uncovered assignments.
	MissingCount uint64 `json:"missingCount,omitempty"`

	// Missing gives at most MaxMissing uncovered assignments.
	Missing []core.Bindings `json:"missing,omitempty"`

	// Scanned is false when the table was too large to scan.
	Scanned bool `json:"scanned"`

	// Outcomes counts rows by outcome symbol.
	Outcomes map[string]int `json:"outcomes"`

	// Failures counts rows by failure message.
	Failures map[string]int `json:"failures,omitempty"`

	// Unused lists outcome symbols that never appear, in the
	// order given by OutcomeSymbols.
	Unused []string `json:"unused,omitempty"`
}

// Analyze reports on the table.
//
// The optional outcomeSymbols are the symbols that a caller expects
// to see as outcomes.  Any that don't appear are reported as Unused.
func Analyze(t *core.Table, outcomeSymbols ...string) *TableAnalysis {
	a := &TableAnalysis{
		Name:     t.Name(),
		Mode:     t.Mode().String(),
		Size:     t.Size(),
		Rows:     t.Len(),
		Complete: t.Complete(),
		Outcomes: make(map[string]int),
		Failures: make(map[string]int),
	}

	for _, k := range t.Keys() {
		o, _ := t.Lookup(k)
		if o.Failed {
			a.Failures[o.Message]++
			continue
		}
		a.Outcomes[string(o.Symbol)]++
	}
	if len(a.Failures) == 0 {
		a.Failures = nil
	}

	for _, s := range outcomeSymbols {
		if _, have := a.Outcomes[s]; !have {
			a.Unused = append(a.Unused, s)
		}
	}

	cols := t.Columns()
	a.Columns = make([]ColumnAnalysis, len(cols))
	for i, c := range cols {
		domain := make([]string, len(c.Domain))
		for j, v := range c.Domain {
			domain[j] = string(v)
		}
		a.Columns[i] = ColumnAnalysis{
			Name:   string(c.Name),
			Domain: domain,
			Closed: c.Closed,
		}
	}

	a.MissingCount = t.Size() - uint64(t.Len())

	if MaxScan < t.Size() {
		return a
	}
	a.Scanned = true

	for k := core.Key(0); uint64(k) < t.Size(); k++ {
		if _, have := t.Lookup(k); have {
			continue
		}
		if len(a.Missing) >= MaxMissing {
			break
		}
		bs, err := t.Decode(k)
		if err != nil {
			break
		}
		a.Missing = append(a.Missing, bs)
	}

	if a.Complete {
		for i := range cols {
			a.Columns[i].Irrelevant = irrelevant(t, i)
		}
	}

	return a
}

// irrelevant reports whether the outcome never depends on the
// column at index i.  The table must be complete.
func irrelevant(t *core.Table, i int) bool {
	radices := t.Radices()
	if radices[i] < 2 {
		return true
	}

	// The stride of a column is the product of the radices of
	// the columns after it.
	stride := uint64(1)
	for _, r := range radices[i+1:] {
		stride *= r
	}

	for k := uint64(0); k < t.Size(); k++ {
		digit := (k / stride) % radices[i]
		if digit != 0 {
			continue
		}
		base, _ := t.Lookup(core.Key(k))
		for d := uint64(1); d < radices[i]; d++ {
			o, _ := t.Lookup(core.Key(k + d*stride))
			if o != base {
				return false
			}
		}
	}
	return true
}

// OutcomeNames returns the outcome symbols in the analysis, sorted.
func (a *TableAnalysis) OutcomeNames() []string {
	acc := make([]string, 0, len(a.Outcomes))
	for s := range a.Outcomes {
		acc = append(acc, s)
	}
	sort.Strings(acc)
	return acc
}
