package phase

import "fmt"

// refinementPhase records the optimization, testing and review pass over the
// architecture. Test counts are synthesized deterministically from the
// component breakdown; no code is actually executed.
type refinementPhase struct{}

func (refinementPhase) Name() string { return Refinement }
func (refinementPhase) Dependencies() []string {
	return []string{Specification, Pseudocode, Architecture}
}

func (p refinementPhase) Produce(in Inputs) (Payload, string, error) {
	components := upstreamList(in, Architecture, "components")
	if len(components) == 0 {
		return nil, "", fmt.Errorf("architecture result carries no components")
	}

	optimizations := []string{
		"collapse redundant state-store round trips",
		"reuse allocated buffers across worker invocations",
	}
	for _, c := range components {
		optimizations = append(optimizations, fmt.Sprintf("tighten the %s hot path", c))
	}

	testsPerComponent := 4
	total := len(components) * testsPerComponent
	testResults := map[string]interface{}{
		"total":    total,
		"passed":   total,
		"failed":   0,
		"coverage": fmt.Sprintf("%d components covered", len(components)),
	}

	refactorings := []string{
		"extract shared validation into one helper",
		"replace ad-hoc status strings with typed constants",
	}
	performance := map[string]interface{}{
		"components":  len(components),
		"p95_latency": "within budget",
		"throughput":  "meets the single-run requirement",
	}
	review := []string{
		"interfaces between components reviewed for leakage",
		"error propagation verified against the failure taxonomy",
	}

	result := Payload{
		"phase":               Refinement,
		"task":                in.Task,
		"optimizations":       optimizations,
		"test_results":        testResults,
		"refactoring_notes":   refactorings,
		"performance_metrics": performance,
		"review_findings":     review,
	}
	applyRemediation(result, in)

	doc, err := renderDoc(Refinement, in.Task, result, in)
	if err != nil {
		return nil, "", err
	}
	return result, doc, nil
}
