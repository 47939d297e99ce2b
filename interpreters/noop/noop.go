package noop

import (
	"context"
	"strings"

	"github.com/Comcast/dtable/core"
)

// Interpreter is a core.Interpreter whose expressions are constants:
// each expression evaluates to its own (trimmed) text, regardless of
// the message.
type Interpreter struct {
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) Compile(ctx context.Context, src string) (interface{}, error) {
	return strings.TrimSpace(src), nil
}

func (i *Interpreter) Exec(ctx context.Context, msg core.Bindings, src string, compiled interface{}) (interface{}, error) {
	if s, is := compiled.(string); is {
		return s, nil
	}
	return strings.TrimSpace(src), nil
}
