package trigger

import "math/rand/v2"

// Selector picks one response payload per firing, uniformly at
// random. It keeps no state across calls.
type Selector struct {
	intN func(int) int
}

func NewSelector() *Selector {
	return &Selector{intN: rand.IntN}
}

// NewSelectorWithSource builds a selector over an injected index
// source, for deterministic tests.
func NewSelectorWithSource(intN func(int) int) *Selector {
	return &Selector{intN: intN}
}

func (s *Selector) Select(t Trigger) Response {
	if len(t.Responses) == 0 {
		return Response{}
	}
	if len(t.Responses) == 1 {
		return t.Responses[0]
	}
	return t.Responses[s.intN(len(t.Responses))]
}
