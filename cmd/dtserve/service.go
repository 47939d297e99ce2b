package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Comcast/dtable/core"
	"github.com/Comcast/dtable/util/testutil"
)

// Service evaluates messages against named tables.
type Service struct {
	Tables *FileSystemTableProvider

	// EvalTimeout bounds each evaluation.  Zero means no bound.
	EvalTimeout time.Duration

	Debug bool
}

// Result is the answer to an evaluation request.
type Result struct {
	Table   string `json:"table"`
	Id      string `json:"id,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Key     uint64 `json:"key"`

	// Failed is true when the error is the table's own outcome
	// (as opposed to a bad request).
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`

	// At is when the evaluation finished (RFC3339Nano, UTC).
	At string `json:"at"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Eval runs the message through the named table.
//
// An error is returned only when the table can't be found.  All
// other problems are reported in the Result.
func (s *Service) Eval(ctx context.Context, name string, msg core.Bindings) (*Result, error) {
	d, err := s.Tables.Find(name)
	if err != nil {
		return nil, err
	}

	if 0 < s.EvalTimeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.EvalTimeout)
		defer cancel()
	}

	r := &Result{
		Table: name,
		Id:    d.Source.Id,
	}

	// Derivations see the message as JSON.
	if msg, err = msg.Canonical(); err != nil {
		r.Error = err.Error()
		r.At = timestamp()
		return r, nil
	}

	o, k, err := s.outcome(ctx, d, msg)
	r.Key = uint64(k)
	if err == nil {
		if o.Failed {
			r.Failed = true
			r.Error = o.Message
		} else {
			r.Outcome = string(o.Symbol)
		}
	} else {
		r.Error = err.Error()
	}
	r.At = timestamp()

	s.logf("Eval %s %s -> %s", name, testutil.JS(msg), testutil.JS(r))

	return r, nil
}

// outcome derives and evaluates.  A panic from an interpreter becomes
// an error.
func (s *Service) outcome(ctx context.Context, d *core.Decider, msg core.Bindings) (o core.Outcome, k core.Key, err error) {
	defer func() {
		if x := recover(); x != nil {
			err = fmt.Errorf("%v", x)
		}
	}()
	bs, err := d.Bindings(ctx, msg)
	if err != nil {
		return o, k, err
	}
	return d.Table.Outcome(bs)
}

func (s *Service) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf(format, args...)
	}
}
