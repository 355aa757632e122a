package phase

import "fmt"

// architecturePhase maps pseudocode algorithms onto named components and the
// interfaces and data flow between them.
type architecturePhase struct{}

func (architecturePhase) Name() string { return Architecture }
func (architecturePhase) Dependencies() []string {
	return []string{Specification, Pseudocode}
}

func (p architecturePhase) Produce(in Inputs) (Payload, string, error) {
	algorithms := upstreamList(in, Pseudocode, "algorithms")
	if len(algorithms) == 0 {
		return nil, "", fmt.Errorf("pseudocode result carries no algorithms")
	}

	components := []string{"entrypoint", "orchestrator"}
	for i := range algorithms {
		components = append(components, fmt.Sprintf("worker-%d", i+1))
	}
	components = append(components, "state store")

	interfaces := make([]string, 0, len(components))
	for i := 0; i+1 < len(components); i++ {
		interfaces = append(interfaces, fmt.Sprintf("%s -> %s: typed request/response", components[i], components[i+1]))
	}

	dataFlow := fmt.Sprintf("entrypoint feeds the orchestrator, which fans work across %d workers and persists through the state store", len(algorithms))

	stack := map[string]interface{}{
		"language":    "go",
		"persistence": "embedded key/value store",
		"transport":   "in-process interfaces",
		"delivery":    "single static binary",
	}

	result := Payload{
		"phase":            Architecture,
		"task":             in.Task,
		"components":       components,
		"interfaces":       interfaces,
		"data_flow":        dataFlow,
		"technology_stack": stack,
	}
	applyRemediation(result, in)

	doc, err := renderDoc(Architecture, in.Task, result, in)
	if err != nil {
		return nil, "", err
	}
	return result, doc, nil
}
