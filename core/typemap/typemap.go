package typemap

import (
	"log/slog"
	"sort"
	"sync"
)

// Map is a type-keyed lazy initialization cache. Each distinct type
// parameter maps to at most one value of type V, computed exactly once
// by a caller-supplied producer. Entries are never replaced or removed,
// and every entry is individually heap allocated, so pointers returned
// from Get* calls stay valid for as long as the Map is alive.
//
// The producer runs while the Map's exclusive lock is held: a slow
// producer for one type blocks concurrent initialization of unrelated
// types, and a producer must not call back into the same Map. Use
// [FlightMap] when either matters.
//
// Map is safe for concurrent use. The zero value is not usable; create
// maps with [New].
type Map[V any] struct {
	mu      sync.RWMutex
	entries map[Key]*V

	name    string
	log     *slog.Logger
	metrics Metrics
}

// New creates an empty Map.
func New[V any](opts ...Option) *Map[V] {
	o := newOptions(opts)
	return &Map[V]{
		entries: make(map[Key]*V),
		name:    o.name,
		log:     o.log,
		metrics: o.metrics,
	}
}

// GetOrInit returns the value stored for type parameter T, invoking
// init to compute it if this is the first request for T. All callers,
// from any goroutine at any later time, receive a pointer to the same
// stored value; init runs at most once per T over the Map's lifetime.
//
// If init panics, nothing is recorded for T, the lock is released and
// the panic propagates; a later call may retry.
func GetOrInit[T any, V any](m *Map[V], init func() V) *V {
	return m.GetOrInitKey(KeyOf[T](), init)
}

// GetOrInitErr is like [GetOrInit] for producers that can fail. If init
// returns an error, nothing is recorded for T and the error is returned
// to the caller; the next call for T invokes its producer again.
func GetOrInitErr[T any, V any](m *Map[V], init func() (V, error)) (*V, error) {
	return m.GetOrInitKeyErr(KeyOf[T](), init)
}

// Lookup returns the value stored for type parameter T, if T has been
// initialized. It never triggers initialization.
func Lookup[T any, V any](m *Map[V]) (*V, bool) {
	return m.LookupKey(KeyOf[T]())
}

// GetOrInitKey is [GetOrInit] for a precomputed Key.
// Panics if k is the zero Key.
func (m *Map[V]) GetOrInitKey(k Key, init func() V) *V {
	p, _ := m.getOrInit(k, func() (V, error) {
		return init(), nil
	})
	return p
}

// GetOrInitKeyErr is [GetOrInitErr] for a precomputed Key.
// Panics if k is the zero Key.
func (m *Map[V]) GetOrInitKeyErr(k Key, init func() (V, error)) (*V, error) {
	return m.getOrInit(k, init)
}

// LookupKey is [Lookup] for a precomputed Key.
func (m *Map[V]) LookupKey(k Key) (*V, bool) {
	m.mu.RLock()
	p, ok := m.entries[k]
	m.mu.RUnlock()
	return p, ok
}

// getOrInit implements the double-checked locking protocol: fast-path
// lookup under the read lock, then re-check under the write lock before
// invoking the producer, so that two callers racing on the same missing
// key cannot both initialize it.
func (m *Map[V]) getOrInit(k Key, init func() (V, error)) (*V, error) {
	if k.IsZero() {
		panic("typemap: zero Key")
	}

	m.mu.RLock()
	p, ok := m.entries[k]
	m.mu.RUnlock()
	if ok {
		m.metrics.Hit(m.name, k.Name())
		return p, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Re-check: another goroutine may have initialized k between the
	// read unlock and the write lock.
	if p, ok := m.entries[k]; ok {
		m.metrics.Hit(m.name, k.Name())
		return p, nil
	}

	m.metrics.Miss(m.name, k.Name())
	timer := m.metrics.InitDuration(m.name, k.Name())
	v, err := init()
	timer.ObserveDuration()
	if err != nil {
		// The key stays absent; the next caller retries.
		m.metrics.InitFailed(m.name, k.Name())
		return nil, err
	}

	p = &v
	m.entries[k] = p
	m.metrics.Entries(m.name, len(m.entries))
	m.log.Debug("typemap: entry initialized",
		slog.String("map", m.name),
		slog.String("type", k.Name()),
	)
	return p, nil
}

// Name returns the map's configured or generated name.
func (m *Map[V]) Name() string { return m.name }

// Len returns the number of initialized entries.
func (m *Map[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Keys returns all initialized keys in deterministic (name) order.
func (m *Map[V]) Keys() []Key {
	m.mu.RLock()
	keys := make([]Key, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	m.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].Name() < keys[j].Name() })
	return keys
}
