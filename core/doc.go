/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package core provides the core gear for decision tables: a
// compiler that turns a grid of cells into a Table and an evaluator
// that looks up an Outcome for a set of Bindings.
//
// A table is authored as a pipe-delimited grid.  Every header cell
// except the last names a column.  Every body row gives one value per
// column and then an outcome: either a symbol or the form
//
//	error, <message>
//
// which evaluates to an error carrying <message>.
//
// Each row's values are folded into a single integer Key.  In Boolean
// mode the Key is a bit vector with the first column in the highest
// bit.  In Generalized mode each column's value is replaced by its rank
// in that column's domain, and the ranks are combined as a
// mixed-radix number (first column most significant).  Boolean mode is
// just the mixed-radix fold with every radix equal to 2, so both modes
// share one encoder, and the evaluator uses that same encoder.
//
// Unless told otherwise, Compile checks that the rows cover every
// combination of column values exactly once.
//
// Tokens in the grid are never turned into new symbols.  A Resolver
// (usually a Registry) decides which tokens name existing symbols.
//
// To use this package, make a Registry, Compile (or CompileSource)
// a table, and then Evaluate Bindings against it.  A Table is
// immutable, so any number of goroutines can Evaluate concurrently.
//
// See https://github.com/Comcast/dtable for an overview.
package core
