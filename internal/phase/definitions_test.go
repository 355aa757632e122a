package phase

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sparckit/sparc/internal/gate"
)

func TestFixedOrderAndDependencies(t *testing.T) {
	defs := Definitions()
	wantOrder := []string{Specification, Pseudocode, Architecture, Refinement, Completion}

	var names []string
	for _, d := range defs {
		names = append(names, d.Name())
	}
	if !reflect.DeepEqual(names, wantOrder) {
		t.Fatalf("definition order = %v, want %v", names, wantOrder)
	}

	wantDeps := map[string][]string{
		Specification: nil,
		Pseudocode:    {Specification},
		Architecture:  {Specification, Pseudocode},
		Refinement:    {Specification, Pseudocode, Architecture},
		Completion:    {Specification, Pseudocode, Architecture, Refinement},
	}
	for _, d := range defs {
		if !reflect.DeepEqual(d.Dependencies(), wantDeps[d.Name()]) {
			t.Errorf("%s dependencies = %v, want %v", d.Name(), d.Dependencies(), wantDeps[d.Name()])
		}
	}
}

// produceChain runs every definition in order, feeding each its declared
// upstream results, and returns all payloads.
func produceChain(t *testing.T, task string) map[string]Payload {
	t.Helper()
	results := make(map[string]Payload)
	for _, def := range Definitions() {
		upstream := make(map[string]Payload)
		for _, dep := range def.Dependencies() {
			upstream[dep] = results[dep]
		}
		payload, doc, err := def.Produce(Inputs{Task: task, Upstream: upstream})
		if err != nil {
			t.Fatalf("produce %s: %v", def.Name(), err)
		}
		if doc == "" {
			t.Fatalf("produce %s: empty document", def.Name())
		}
		results[def.Name()] = payload
	}
	return results
}

func TestProduceSatisfiesGateCriteria(t *testing.T) {
	results := produceChain(t, "build a simple tool")
	for name, payload := range results {
		res := gate.Evaluate(name, payload)
		if !res.Passed {
			t.Errorf("%s gate failed: score=%.0f issues=%v", name, res.Score, res.Issues)
		}
	}
}

func TestProduceDeterministic(t *testing.T) {
	first := produceChain(t, "build a data pipeline service")
	second := produceChain(t, "build a data pipeline service")
	if !reflect.DeepEqual(first, second) {
		t.Error("produce chain must be deterministic for identical inputs")
	}
}

func TestProduceMissingUpstreamField(t *testing.T) {
	_, _, err := pseudocodePhase{}.Produce(Inputs{
		Task:     "t",
		Upstream: map[string]Payload{Specification: {}},
	})
	if err == nil {
		t.Fatal("expected error when specification has no requirements")
	}
}

func TestProduceRecordsRemediation(t *testing.T) {
	rc := &RemediationContext{
		Issues:          []string{`missing or empty criterion "user_stories"`},
		Recommendations: []string{"add user stories covering the primary personas"},
	}
	payload, doc, err := specificationPhase{}.Produce(Inputs{Task: "t", Remediation: rc})
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if _, ok := payload["remediation_applied"]; !ok {
		t.Error("remediation context must be recorded on the payload")
	}
	if !strings.Contains(doc, "Remediation Applied") {
		t.Error("document should carry the remediation section")
	}
}

func TestCompletionKey(t *testing.T) {
	if CompletionKey(Specification) != "specification_complete" {
		t.Errorf("unexpected completion key: %s", CompletionKey(Specification))
	}
}
