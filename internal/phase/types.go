// Package phase implements the common phase lifecycle and the control logic
// of the five methodology phases. The document text a phase emits is plain
// templating (internal/docs); everything stateful lives here.
package phase

import "time"

// The five phase names, in mandatory execution order.
const (
	Specification = "specification"
	Pseudocode    = "pseudocode"
	Architecture  = "architecture"
	Refinement    = "refinement"
	Completion    = "completion"
)

// Order is the fixed execution order of the methodology.
var Order = []string{Specification, Pseudocode, Architecture, Refinement, Completion}

// completionKey is the well-known memory key suffix a phase writes on success.
const completionKeySuffix = "_complete"

// CompletionKey returns the memory key (pre-namespacing) under which a
// phase's result is persisted.
func CompletionKey(name string) string {
	return name + completionKeySuffix
}

// remediationKeySuffix stores an accepted remediation context.
const remediationKeySuffix = "_remediation"

// Payload is a phase's structured result. Keys are the phase's criteria
// fields plus free-form metadata; values are JSON-serializable.
type Payload map[string]interface{}

// RemediationContext carries a failed gate's findings into a re-execution.
type RemediationContext struct {
	Issues          []string  `json:"issues"`
	Recommendations []string  `json:"recommendations"`
	AttachedAt      time.Time `json:"attached_at"`
}

// Inputs is everything a Definition's Produce may read. All persisted-state
// reads happen before Produce runs; Produce itself is pure.
type Inputs struct {
	Task        string
	Upstream    map[string]Payload
	Remediation *RemediationContext
}

// Definition is one of the five phase implementations: a name, a fixed
// dependency set, and a pure result/document producer.
type Definition interface {
	Name() string
	Dependencies() []string
	Produce(in Inputs) (Payload, string, error)
}

// Definitions returns the five phase definitions in execution order.
func Definitions() []Definition {
	return []Definition{
		specificationPhase{},
		pseudocodePhase{},
		architecturePhase{},
		refinementPhase{},
		completionPhase{},
	}
}

// State is the lifecycle state of a phase instance.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateRunning       State = "running"
	StateSucceeded     State = "succeeded"
	StateFailed        State = "failed"
)
