package main

import (
	"context"
	"fmt"

	"github.com/Comcast/dtable/core"
)

// Op is a Service Operation, as sent over a WebSocket.
//
// Only one of Eval, List, or Get should have value.  The same Op,
// with its results filled in, is the reply.
type Op struct {
	// Oid is the optional operation id.  A "transaction" id.
	Oid string `json:"oid,omitempty"`

	Eval *EvalOp `json:"eval,omitempty"`

	List *ListOp `json:"list,omitempty"`

	Get *GetOp `json:"get,omitempty"`

	// Error will hold an error (if any) that results from
	// processing this operation.
	Error error `json:"-"`

	// Err will hold a string representation of an error (if any)
	// that results from processing this operation.
	Err string `json:"err,omitempty"`
}

// erred is a utility function to return values to assign to operation
// Error and Err fields.
func erred(err error) (error, string) {
	if err == nil {
		return nil, ""
	}
	return err, err.Error()
}

func (o *Op) Do(ctx context.Context, s *Service) error {
	var err error
	switch {
	case o.Eval != nil:
		err = o.Eval.Do(ctx, s)
	case o.List != nil:
		err = o.List.Do(ctx, s)
	case o.Get != nil:
		err = o.Get.Do(ctx, s)
	default:
		err = fmt.Errorf("empty op")
	}

	if err != nil && o.Error == nil {
		o.Error, o.Err = erred(err)
	}

	return o.Error
}

type EvalOp struct {
	Table   string        `json:"table"`
	Message core.Bindings `json:"message"`
	Result  *Result       `json:"result,omitempty"`
}

func (o *EvalOp) Do(ctx context.Context, s *Service) error {
	r, err := s.Eval(ctx, o.Table, o.Message)
	o.Result = r
	return err
}

type ListOp struct {
	Tables []TableInfo `json:"tables,omitempty"`
}

func (o *ListOp) Do(ctx context.Context, s *Service) error {
	o.Tables = s.Tables.List()
	return nil
}

type GetOp struct {
	Table  string            `json:"table"`
	Info   *TableInfo        `json:"info,omitempty"`
	Source *core.TableSource `json:"source,omitempty"`
}

func (o *GetOp) Do(ctx context.Context, s *Service) error {
	info, err := s.Tables.Info(o.Table)
	if err != nil {
		return err
	}
	d, err := s.Tables.Find(o.Table)
	if err != nil {
		return err
	}
	o.Info = info
	o.Source = d.Source
	return nil
}
