package phase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/sparckit/sparc/internal/fsutil"
	"github.com/sparckit/sparc/internal/hooks"
	"github.com/sparckit/sparc/internal/memory"
)

// ErrDependencyMissing is returned when a declared upstream completion key is
// absent from the memory store. Fatal to the phase, never retried.
var ErrDependencyMissing = errors.New("dependencies incomplete")

// ErrBadState is returned when lifecycle methods run out of order.
var ErrBadState = errors.New("invalid phase state")

// Phase wraps a Definition with the shared lifecycle: initialize, execute,
// finalize, memory handoff, artifact persistence and remediation intake.
type Phase struct {
	def         Definition
	mem         *memory.Store
	backend     *hooks.Client
	artifactDir string
	log         *zap.Logger

	state        State
	startedAt    time.Time
	finishedAt   time.Time
	remediation  *RemediationContext
	swarmContext map[string]interface{}
	artifactPath string
}

// New creates a Phase for def. artifactDir is the root under which the
// namespace's documents are written.
func New(def Definition, mem *memory.Store, backend *hooks.Client, artifactDir string, logger *zap.Logger) *Phase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Phase{
		def:         def,
		mem:         mem,
		backend:     backend,
		artifactDir: artifactDir,
		log:         logger.Named("phase." + def.Name()),
		state:       StateUninitialized,
	}
}

// Name returns the wrapped definition's phase name.
func (p *Phase) Name() string { return p.def.Name() }

// State returns the current lifecycle state.
func (p *Phase) State() State { return p.state }

// StartedAt returns the initialize timestamp.
func (p *Phase) StartedAt() time.Time { return p.startedAt }

// Duration returns the initialize-to-finalize duration, or zero before
// finalization.
func (p *Phase) Duration() time.Duration {
	if p.finishedAt.IsZero() {
		return 0
	}
	return p.finishedAt.Sub(p.startedAt)
}

// ArtifactPath returns the path of the saved document, or "" if none was
// written.
func (p *Phase) ArtifactPath() string { return p.artifactPath }

// SetRemediation accepts a prior gate's findings ahead of a re-execution.
// The context is stored on the phase and persisted to the memory store so a
// restarted process can observe that remediation was requested.
func (p *Phase) SetRemediation(ctx context.Context, rc *RemediationContext) {
	if rc == nil {
		return
	}
	if rc.AttachedAt.IsZero() {
		rc.AttachedAt = time.Now().UTC()
	}
	p.remediation = rc
	p.mem.Put(ctx, p.def.Name()+remediationKeySuffix, map[string]interface{}{
		"issues":          rc.Issues,
		"recommendations": rc.Recommendations,
		"attached_at":     rc.AttachedAt.Format(time.RFC3339),
	})
}

// Initialize records the start timestamp and, when a backend is configured,
// loads any prior swarm context. Context-load failure degrades to an empty
// context.
func (p *Phase) Initialize(ctx context.Context) error {
	if p.state != StateUninitialized {
		return fmt.Errorf("%w: initialize from %s", ErrBadState, p.state)
	}
	p.state = StateInitializing
	p.startedAt = time.Now().UTC()
	p.swarmContext = map[string]interface{}{}

	if res, ok := p.backend.Try(ctx, hooks.OpNeuralLoadContext, map[string]interface{}{
		"namespace": p.mem.Namespace(),
		"phase":     p.def.Name(),
	}); ok {
		p.swarmContext = res
	}
	return nil
}

// Execute reads declared dependencies, runs the definition's pure Produce,
// persists the result under the phase's completion key and saves the derived
// document. An absent dependency fails the phase with ErrDependencyMissing;
// a document-write failure is logged and does not.
func (p *Phase) Execute(ctx context.Context, task string) (Payload, error) {
	if p.state != StateInitializing {
		return nil, fmt.Errorf("%w: execute from %s", ErrBadState, p.state)
	}
	p.state = StateRunning

	// All persisted-state reads happen up front.
	upstream := make(map[string]Payload, len(p.def.Dependencies()))
	var missing []string
	for _, dep := range p.def.Dependencies() {
		v, ok := p.mem.Get(ctx, CompletionKey(dep))
		if !ok {
			missing = append(missing, dep)
			continue
		}
		upstream[dep] = toPayload(v)
	}
	if len(missing) > 0 {
		p.state = StateFailed
		return nil, fmt.Errorf("%w for phase %s: %v", ErrDependencyMissing, p.def.Name(), missing)
	}

	result, doc, err := p.def.Produce(Inputs{
		Task:        task,
		Upstream:    upstream,
		Remediation: p.remediation,
	})
	if err != nil {
		p.state = StateFailed
		return nil, fmt.Errorf("produce %s: %w", p.def.Name(), err)
	}

	// All writes happen after computation.
	p.mem.Put(ctx, CompletionKey(p.def.Name()), map[string]interface{}(result))
	p.saveArtifact(doc)

	p.state = StateSucceeded
	return result, nil
}

// Finalize records the end timestamp and best-effort pushes a coordination
// snapshot to the backend.
func (p *Phase) Finalize(ctx context.Context) {
	p.finishedAt = time.Now().UTC()
	p.backend.Try(ctx, hooks.OpMemoryStore, map[string]interface{}{
		"key": p.mem.FullKey(p.def.Name() + "_snapshot"),
		"value": map[string]interface{}{
			"phase":       p.def.Name(),
			"state":       string(p.state),
			"duration_ms": p.Duration().Milliseconds(),
			"finished_at": p.finishedAt.Format(time.RFC3339),
		},
	})
}

// MarkFailed forces the failed state; used when the gate rejects a result
// that produced successfully.
func (p *Phase) MarkFailed() {
	p.state = StateFailed
}

// saveArtifact writes the phase document. Re-runs overwrite the prior file.
// A write failure is a warning: the structured result stays authoritative.
func (p *Phase) saveArtifact(doc string) {
	if p.artifactDir == "" || doc == "" {
		return
	}
	path := filepath.Join(p.artifactDir, p.mem.Namespace(), p.def.Name()+".md")
	if err := fsutil.WriteAtomic(path, []byte(doc)); err != nil {
		p.log.Warn("artifact write failed, structured result remains authoritative",
			zap.String("path", path),
			zap.Error(err))
		return
	}
	p.artifactPath = path
}

// toPayload normalises a memory value into a Payload.
func toPayload(v interface{}) Payload {
	switch t := v.(type) {
	case Payload:
		return t
	case map[string]interface{}:
		return Payload(t)
	default:
		return Payload{"value": v}
	}
}
