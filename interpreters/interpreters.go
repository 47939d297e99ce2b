// Package interpreters gathers the standard derivation interpreters.
package interpreters

import (
	"github.com/Comcast/dtable/core"
	"github.com/Comcast/dtable/interpreters/goja"
	"github.com/Comcast/dtable/interpreters/noop"
)

// Standard returns "goja" (ECMAScript expressions) and "noop"
// (constants).
func Standard() map[string]core.Interpreter {
	return map[string]core.Interpreter{
		"goja":       goja.NewInterpreter(),
		"ecmascript": goja.NewInterpreter(),
		"noop":       noop.NewInterpreter(),
	}
}
