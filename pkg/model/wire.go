package model

import (
	"encoding/json"
	"sort"
)

// Wire form of a result model. Outputs travel as an array of keyed entries
// rather than a JSON object so the map never collides with client-side
// field-name conventions.
type wireResult struct {
	Outputs    []wireOutput `json:"outputs"`
	Selections []Element    `json:"selections"`
}

type wireOutput struct {
	Key    string `json:"key"`
	Object Output `json:"object"`
}

// MarshalJSON encodes the result in its wire form. Output entries are
// ordered by key so encoding is deterministic.
func (r Result) MarshalJSON() ([]byte, error) {
	w := wireResult{
		Outputs:    make([]wireOutput, 0, len(r.Outputs)),
		Selections: r.Selections,
	}
	if w.Selections == nil {
		w.Selections = []Element{}
	}
	for key, out := range r.Outputs {
		w.Outputs = append(w.Outputs, wireOutput{Key: key, Object: out})
	}
	sort.Slice(w.Outputs, func(i, j int) bool { return w.Outputs[i].Key < w.Outputs[j].Key })
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire form. An output entry without a key falls
// back to its object id.
func (r *Result) UnmarshalJSON(data []byte) error {
	var w wireResult
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = NewResult()
	for _, entry := range w.Outputs {
		key := entry.Key
		if key == "" {
			key = entry.Object.ID
		}
		r.Outputs[key] = entry.Object
	}
	r.Selections = w.Selections
	return nil
}
