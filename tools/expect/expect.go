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

// Package expect is a tool for testing decision tables.
//
// You construct a Session, which has inputs and expected outcomes.
// Then run the session against a compiled table to see if the
// expected outcomes actually appeared.
//
// See ../../cmd/dtable for command-line use.
package expect

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Comcast/dtable/core"

	"github.com/jsccast/yaml"
)

// Case is one input message and its expected outcome.
type Case struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Input is the message given to the Decider.
	Input core.Bindings `json:"input" yaml:"input"`

	// Outcome is the expected symbol.
	Outcome string `json:"outcome,omitempty" yaml:"outcome,omitempty"`

	// Error, if not empty, must appear in the error that the
	// Decider returns.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Inverted means that the expected outcome isn't desired!
	Inverted bool `json:"inverted,omitempty" yaml:"inverted,omitempty"`
}

// Session is mostly a sequence of Cases.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Cases is sequence of Cases that this session will run.
	Cases []Case `json:"cases" yaml:"cases"`

	// KeepGoing runs every Case even after a failure.
	KeepGoing bool `json:"keepGoing,omitempty" yaml:"keepGoing,omitempty"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Failure describes a Case that didn't go as expected.
type Failure struct {
	Case   int    `json:"case"`
	Doc    string `json:"doc,omitempty"`
	Reason string `json:"reason"`
}

func (f Failure) String() string {
	if f.Doc == "" {
		return fmt.Sprintf("case %d: %s", f.Case, f.Reason)
	}
	return fmt.Sprintf("case %d (%s): %s", f.Case, f.Doc, f.Reason)
}

// Report summarizes a Session run.
type Report struct {
	Ran      int       `json:"ran"`
	Passed   int       `json:"passed"`
	Failures []Failure `json:"failures,omitempty"`
}

// Err returns an error that lists the failures, if any.
func (r *Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	msgs := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		msgs[i] = f.String()
	}
	return fmt.Errorf("%d of %d cases failed: %s", len(r.Failures), r.Ran, strings.Join(msgs, "; "))
}

// ParseSession parses YAML (or JSON) into a Session.
func ParseSession(bs []byte) (*Session, error) {
	var s Session
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Run gives each Case's input to the Decider and checks the result.
//
// The returned error is for problems with the Session itself (or a
// canceled context).  Failed cases are reported in the Report.
func (s *Session) Run(ctx context.Context, d *core.Decider) (*Report, error) {
	r := &Report{}
	for i, c := range s.Cases {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		if c.Outcome == "" && c.Error == "" {
			return r, fmt.Errorf("case %d has neither an outcome nor an error", i)
		}

		r.Ran++
		reason := s.check(ctx, d, c)
		if s.Verbose {
			log.Printf("case %d %s: %s", i, c.Doc, or(reason, "ok"))
		}
		if reason == "" {
			r.Passed++
			continue
		}
		r.Failures = append(r.Failures, Failure{
			Case:   i,
			Doc:    c.Doc,
			Reason: reason,
		})
		if !s.KeepGoing {
			break
		}
	}
	return r, nil
}

// check returns the reason the Case failed or "" if it passed.
func (s *Session) check(ctx context.Context, d *core.Decider, c Case) (reason string) {
	defer func() {
		if x := recover(); x != nil {
			reason = fmt.Sprintf("panic: %v", x)
		}
	}()

	sym, err := d.Decide(ctx, c.Input)

	var met bool
	var got string
	if err != nil {
		got = "error " + err.Error()
		met = c.Error != "" && strings.Contains(err.Error(), c.Error)
	} else {
		got = string(sym)
		met = c.Error == "" && string(sym) == c.Outcome
	}

	switch {
	case met && c.Inverted:
		return fmt.Sprintf("undesired %s", got)
	case !met && !c.Inverted:
		want := c.Outcome
		if c.Error != "" {
			want = "error " + c.Error
		}
		return fmt.Sprintf("wanted %s, got %s", want, got)
	}
	return ""
}

func or(s, otherwise string) string {
	if s == "" {
		return otherwise
	}
	return s
}
