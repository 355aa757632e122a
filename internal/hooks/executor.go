// Package hooks defines the call contract with the optional distributed-agent
// backend. The engine only ever talks to the backend through Executor; every
// call is best-effort and routed through Client so the swallow-and-log policy
// lives in one place.
package hooks

import "context"

// Operation names recognised by the backend. The engine treats all of them
// identically: a named operation with a JSON-serializable payload.
const (
	OpSwarmInit              = "swarm_init"
	OpAgentSpawn             = "agent_spawn"
	OpSetupDependencies      = "setup_dependencies"
	OpRegisterQualityGate    = "register_quality_gate"
	OpAgentAssign            = "agent_assign"
	OpCreateWorkspace        = "create_workspace"
	OpLoadArtifacts          = "load_artifacts"
	OpValidatePhase          = "validate_phase"
	OpUpdateAgentPerformance = "update_agent_performance"
	OpNeuralLoadContext      = "neural_load_context"
	OpNeuralRecordLearning   = "neural_record_learning"
	OpNeuralTrain            = "neural_train"
	OpPrepareHandoff         = "prepare_handoff"
	OpAgentPrewarm           = "agent_prewarm"
	OpMemoryStore            = "memory_store"
	OpMemoryRetrieve         = "memory_retrieve"
	OpAgentShutdown          = "agent_shutdown"
	OpSwarmShutdown          = "swarm_shutdown"
)

// Result is the backend's response to a single operation.
type Result map[string]interface{}

// Executor invokes a named operation against the distributed-agent backend.
// Implementations may fail for any reason; callers must not branch on which
// operation failed.
type Executor interface {
	Invoke(ctx context.Context, op string, payload map[string]interface{}) (Result, error)
}

// Noop is an Executor that accepts every operation and returns an empty
// result. Used when no backend is configured and as a stand-in in tests.
type Noop struct{}

// Invoke implements Executor.
func (Noop) Invoke(ctx context.Context, op string, payload map[string]interface{}) (Result, error) {
	return Result{}, nil
}
