// Package service implements the desk's event backbone and the services
// built on it. A Store is an upsertable keyed mapping with an append-only
// observer list; every Ingest replaces the stored entry and then runs the
// full downstream cascade synchronously, in registration order, before
// returning. Observers may themselves ingest into further stores, so one
// input record drives a depth-first call graph across the whole pipeline.
package service

// Observer receives fan-out callbacks from a Store. Only OnAdd is exercised
// by the feeds; there is no delete semantics anywhere in the pipeline.
type Observer[V any] interface {
	OnAdd(v V)
	OnRemove(v V)
	OnUpdate(v V)
}

// OnAddFunc adapts a function to an Observer that only reacts to adds.
type OnAddFunc[V any] func(V)

func (f OnAddFunc[V]) OnAdd(v V)  { f(v) }
func (f OnAddFunc[V]) OnRemove(V) {}
func (f OnAddFunc[V]) OnUpdate(V) {}

// Store is the generic keyed-service backbone. It has exactly one writer:
// the owning service's ingestion methods.
type Store[V any] struct {
	name      string
	key       func(V) string
	entries   map[string]V
	observers []Observer[V]
}

// NewStore builds a store whose entries are keyed by the given identity
// function.
func NewStore[V any](name string, key func(V) string) *Store[V] {
	return &Store[V]{
		name:    name,
		key:     key,
		entries: make(map[string]V),
	}
}

// Name returns the service type tag used by persisted sinks.
func (s *Store[V]) Name() string { return s.name }

// Ingest replaces the entry derived from v's identity and notifies every
// observer before returning. Last write wins; there is no merge.
func (s *Store[V]) Ingest(v V) {
	s.entries[s.key(v)] = v
	s.notify(v)
}

// put replaces the stored entry without notifying observers.
func (s *Store[V]) put(v V) { s.entries[s.key(v)] = v }

// notify fans v out without touching the store. Used by services that emit
// transient events (e.g. trade booking re-publication).
func (s *Store[V]) notify(v V) {
	for _, o := range s.observers {
		o.OnAdd(v)
	}
}

// AddObserver appends to the observer list. Removal is not supported.
func (s *Store[V]) AddObserver(o Observer[V]) {
	s.observers = append(s.observers, o)
}

// Lookup returns the stored value for key. The second result reports whether
// the key exists; absent keys never fabricate a default entry.
func (s *Store[V]) Lookup(key string) (V, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Len returns the number of stored entries.
func (s *Store[V]) Len() int { return len(s.entries) }
