// Package gate evaluates phase results against fixed per-phase quality
// criteria. Evaluation is pure and never raises: an internal fault downgrades
// to a failing result with score 0.
package gate

import (
	"fmt"
	"sort"
	"time"
)

// Result is the immutable outcome of one gate evaluation. Remediation
// produces a new Result on re-run; existing Results are never mutated.
type Result struct {
	Phase           string    `json:"phase"`
	Passed          bool      `json:"passed"`
	Score           float64   `json:"score"`     // 0-100
	Threshold       float64   `json:"threshold"` // 0-1
	Issues          []string  `json:"issues,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
	EvaluatedAt     time.Time `json:"evaluated_at"`
}

// thresholds is the minimum fraction of criteria that must be met per phase.
var thresholds = map[string]float64{
	"specification": 0.90,
	"pseudocode":    0.85,
	"architecture":  0.85,
	"refinement":    0.80,
	"completion":    0.90,
}

// criteria lists the result fields each phase must populate.
var criteria = map[string][]string{
	"specification": {"requirements", "acceptance_criteria", "user_stories", "edge_cases"},
	"pseudocode":    {"algorithms", "data_structures", "control_flow", "complexity_notes"},
	"architecture":  {"components", "interfaces", "data_flow", "technology_stack"},
	"refinement":    {"optimizations", "test_results", "refactoring_notes", "performance_metrics", "review_findings"},
	"completion":    {"deliverables", "documentation", "validation_results", "deployment_notes"},
}

// hints maps a missing criterion to a fixed remediation recommendation.
var hints = map[string]string{
	"requirements":        "enumerate concrete functional requirements for the task",
	"acceptance_criteria": "define measurable acceptance criteria per requirement",
	"user_stories":        "add user stories covering the primary personas",
	"edge_cases":          "list boundary and failure-mode edge cases",
	"algorithms":          "describe one algorithm per requirement in pseudocode",
	"data_structures":     "name the data structures each algorithm operates on",
	"control_flow":        "document the control flow between pseudocode blocks",
	"complexity_notes":    "annotate algorithms with complexity estimates",
	"components":          "decompose the system into named components",
	"interfaces":          "specify the interface between each component pair",
	"data_flow":           "trace the data flow across components",
	"technology_stack":    "commit to a concrete technology per layer",
	"optimizations":       "record the optimizations applied during refinement",
	"test_results":        "increase test coverage",
	"refactoring_notes":   "summarize refactorings and their motivation",
	"performance_metrics": "capture before/after performance measurements",
	"review_findings":     "record review findings and their resolution",
	"deliverables":        "list every deliverable produced by the pipeline",
	"documentation":       "write user-facing documentation for the deliverables",
	"validation_results":  "validate deliverables against the acceptance criteria",
	"deployment_notes":    "document the deployment and rollback procedure",
}

// Threshold returns the fixed threshold for phase, or 0 for unknown phases.
func Threshold(phase string) float64 {
	return thresholds[phase]
}

// Criteria returns the required criteria for phase in stable order.
func Criteria(phase string) []string {
	out := make([]string, len(criteria[phase]))
	copy(out, criteria[phase])
	return out
}

// Evaluate scores result against the phase's criteria. Score is
// met/total x 100; passed requires score/100 >= threshold. A fault inside
// evaluation is downgraded to a failing result, never a panic.
func Evaluate(phase string, result map[string]interface{}) (res Result) {
	res = Result{
		Phase:       phase,
		Threshold:   thresholds[phase],
		EvaluatedAt: time.Now().UTC(),
	}
	defer func() {
		if r := recover(); r != nil {
			res.Passed = false
			res.Score = 0
			res.Issues = []string{fmt.Sprintf("evaluator fault: %v", r)}
			res.Recommendations = []string{"re-run the phase and re-evaluate"}
		}
	}()

	required := criteria[phase]
	if len(required) == 0 {
		res.Issues = []string{fmt.Sprintf("unknown phase %q", phase)}
		return res
	}

	met := 0
	for _, name := range required {
		if present(result[name]) {
			met++
			continue
		}
		res.Issues = append(res.Issues, fmt.Sprintf("missing or empty criterion %q", name))
		if hint, ok := hints[name]; ok {
			res.Recommendations = append(res.Recommendations, hint)
		}
	}
	sort.Strings(res.Issues)

	res.Score = float64(met) / float64(len(required)) * 100
	res.Passed = res.Score/100 >= res.Threshold
	return res
}

// present reports whether a criterion value counts as populated.
func present(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []string:
		return len(t) > 0
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	case map[string]string:
		return len(t) > 0
	default:
		// Numbers, bools and structured values count by existing.
		return true
	}
}
