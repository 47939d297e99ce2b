package core

import "encoding/json"

// Bindings is a map from column names to their values.
//
// A Table never retains the Bindings given to Evaluate.
type Bindings map[string]interface{}

// Copy makes a shallow copy of the Bindings.
func (bs Bindings) Copy() Bindings {
	acc := make(Bindings, len(bs))
	for k, v := range bs {
		acc[k] = v
	}
	return acc
}

// Canonical returns a deep copy with the values that a JSON message
// would have: nested maps are map[string]interface{}, slices are
// []interface{}, structs are maps keyed by their JSON names, and
// numbers are float64.
func (bs Bindings) Canonical() (Bindings, error) {
	js, err := json.Marshal(bs)
	if err != nil {
		return nil, err
	}
	var acc Bindings
	if err = json.Unmarshal(js, &acc); err != nil {
		return nil, err
	}
	if acc == nil {
		acc = Bindings{}
	}
	return acc, nil
}
