package core

import (
	"strings"
)

// ErrorMarker starts an outcome cell that denotes a failure.
const ErrorMarker = "error"

// Outcome is the result stored for one row: either a Symbol or a
// failure message.
type Outcome struct {
	Symbol  Symbol `json:"symbol,omitempty"`
	Message string `json:"error,omitempty"`
	Failed  bool   `json:"failed,omitempty"`
}

// Success makes an Outcome for a Symbol.
func Success(s Symbol) Outcome {
	return Outcome{
		Symbol: s,
	}
}

// Failure makes an Outcome for an authored error.
func Failure(message string) Outcome {
	return Outcome{
		Message: message,
		Failed:  true,
	}
}

// Err returns an *OutcomeFailure for a Failure and nil otherwise.
func (o Outcome) Err() error {
	if o.Failed {
		return &OutcomeFailure{Message: o.Message}
	}
	return nil
}

// String renders the Outcome the way it's authored.
func (o Outcome) String() string {
	if o.Failed {
		return ErrorMarker + ", " + o.Message
	}
	return string(o.Symbol)
}

// isFailureCell reports whether the (trimmed) cell is the marker
// word alone or the marker word followed by a comma.
func isFailureCell(cell string) bool {
	if !strings.HasPrefix(cell, ErrorMarker) {
		return false
	}
	rest := strings.TrimLeft(cell[len(ErrorMarker):], " \t")
	return rest == "" || rest[0] == ','
}

// ParseOutcome interprets an outcome cell.
//
// "error, Not allowed" gives Failure("Not allowed").  Only the last
// comma-separated segment becomes the message.  Anything else must
// resolve to a Symbol.
func ParseOutcome(cell string, r Resolver) (Outcome, error) {
	cell = strings.TrimSpace(cell)
	if isFailureCell(cell) {
		segments := strings.Split(cell, ",")
		return Failure(strings.TrimSpace(segments[len(segments)-1])), nil
	}
	sym, ok := resolve(r, cell)
	if !ok {
		return Outcome{}, &UnknownSymbol{Token: cell}
	}
	return Success(sym), nil
}
