// Package memory provides the namespaced key/value store shared by the
// pipeline phases. Reads hit an in-process cache first; on a miss the store
// optionally asks the hook backend. Writes always land in the cache and are
// mirrored to the backend best-effort, so a later read in the same process
// never depends on the backend being up.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sparckit/sparc/internal/hooks"
)

// Entry is one stored value with its write timestamp.
type Entry struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	WrittenAt time.Time   `json:"written_at"`
}

// Store is a per-run key/value store. All keys are prefixed with the run's
// namespace. The cache is authoritative for the lifetime of the run; the
// backend mirror, if configured, merely outlives it.
type Store struct {
	namespace string
	backend   *hooks.Client
	log       *zap.Logger

	mu    sync.RWMutex
	cache map[string]Entry
}

// New creates a Store for namespace. backend may be nil.
func New(namespace string, backend *hooks.Client, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		namespace: namespace,
		backend:   backend,
		log:       logger.Named("memory"),
		cache:     make(map[string]Entry),
	}
}

// Namespace returns the namespace this store is scoped to.
func (s *Store) Namespace() string {
	return s.namespace
}

// FullKey returns the namespaced form of key: "{namespace}_{key}".
func (s *Store) FullKey(key string) string {
	return s.namespace + "_" + key
}

// Put stores value under key. The cache is updated unconditionally; the
// backend mirror is best-effort and a mirror failure never surfaces.
func (s *Store) Put(ctx context.Context, key string, value interface{}) {
	full := s.FullKey(key)
	entry := Entry{Key: full, Value: value, WrittenAt: time.Now().UTC()}

	s.mu.Lock()
	s.cache[full] = entry
	s.mu.Unlock()

	if _, ok := s.backend.Try(ctx, hooks.OpMemoryStore, map[string]interface{}{
		"key":   full,
		"value": value,
	}); !ok && s.backend.Enabled() {
		s.log.Warn("memory mirror failed, cache remains authoritative",
			zap.String("key", full))
	}
}

// Get returns the value stored under key. On a cache miss the backend is
// consulted once; a hit populates the cache.
func (s *Store) Get(ctx context.Context, key string) (interface{}, bool) {
	full := s.FullKey(key)

	s.mu.RLock()
	entry, ok := s.cache[full]
	s.mu.RUnlock()
	if ok {
		return entry.Value, true
	}

	res, ok := s.backend.Try(ctx, hooks.OpMemoryRetrieve, map[string]interface{}{
		"key": full,
	})
	if !ok {
		return nil, false
	}
	value, found := res["value"]
	if !found {
		return nil, false
	}

	s.mu.Lock()
	s.cache[full] = Entry{Key: full, Value: value, WrittenAt: time.Now().UTC()}
	s.mu.Unlock()
	return value, true
}

// Has reports whether key is readable without returning its value.
func (s *Store) Has(ctx context.Context, key string) bool {
	_, ok := s.Get(ctx, key)
	return ok
}

// Keys returns all namespaced keys currently cached, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.cache))
	for k := range s.cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of all cached entries keyed by namespaced key.
func (s *Store) Snapshot() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Entry, len(s.cache))
	for k, v := range s.cache {
		out[k] = v
	}
	return out
}
