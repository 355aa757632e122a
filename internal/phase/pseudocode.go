package phase

import "fmt"

// pseudocodePhase turns the specification's requirements into one algorithm
// sketch each, with the structures and flow connecting them.
type pseudocodePhase struct{}

func (pseudocodePhase) Name() string           { return Pseudocode }
func (pseudocodePhase) Dependencies() []string { return []string{Specification} }

func (p pseudocodePhase) Produce(in Inputs) (Payload, string, error) {
	requirements := upstreamList(in, Specification, "requirements")
	if len(requirements) == 0 {
		return nil, "", fmt.Errorf("specification result carries no requirements")
	}

	algorithms := make([]string, 0, len(requirements))
	complexity := make([]string, 0, len(requirements))
	for i, req := range requirements {
		algorithms = append(algorithms, fmt.Sprintf("algorithm %d: validate inputs, transform state, emit result for %q", i+1, req))
		complexity = append(complexity, fmt.Sprintf("algorithm %d: linear in input size", i+1))
	}

	structures := []string{
		"task descriptor (immutable input)",
		"result accumulator keyed by requirement",
		"ordered queue of pending steps",
	}
	controlFlow := fmt.Sprintf("sequential pass over %d algorithms; each consumes the accumulator state of its predecessors", len(algorithms))

	result := Payload{
		"phase":            Pseudocode,
		"task":             in.Task,
		"algorithms":       algorithms,
		"data_structures":  structures,
		"control_flow":     controlFlow,
		"complexity_notes": complexity,
	}
	applyRemediation(result, in)

	doc, err := renderDoc(Pseudocode, in.Task, result, in)
	if err != nil {
		return nil, "", err
	}
	return result, doc, nil
}
