package typemap

import (
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FlightMap is a type-keyed lazy initialization cache that invokes
// producers outside the map lock. Concurrent producers for the same key
// are deduplicated through a single-flight group: one runs, the rest
// wait and share its result. Exactly one completed producer is ever
// recorded per key.
//
// Compared to [Map]:
//
//   - Producers for unrelated types run concurrently.
//   - A producer may call back into the same FlightMap to initialize a
//     different key without deadlocking.
//
// Entries are never replaced or removed; returned pointers stay valid
// for as long as the FlightMap is alive. Safe for concurrent use.
// The zero value is not usable; create maps with [NewFlight].
type FlightMap[V any] struct {
	mu      sync.RWMutex
	entries map[Key]*V
	group   singleflight.Group

	name    string
	log     *slog.Logger
	metrics Metrics
}

// NewFlight creates an empty FlightMap.
func NewFlight[V any](opts ...Option) *FlightMap[V] {
	o := newOptions(opts)
	return &FlightMap[V]{
		entries: make(map[Key]*V),
		name:    o.name,
		log:     o.log,
		metrics: o.metrics,
	}
}

// FlightGetOrInit returns the value stored for type parameter T,
// invoking init to compute it if this is the first request for T.
// The producer runs without holding the map lock; concurrent callers
// for the same T wait for the in-flight producer and share its result.
func FlightGetOrInit[T any, V any](m *FlightMap[V], init func() V) *V {
	return m.GetOrInitKey(KeyOf[T](), init)
}

// FlightGetOrInitErr is like [FlightGetOrInit] for producers that can
// fail. If the winning producer returns an error, every caller waiting
// on that flight receives the error, nothing is recorded for T, and a
// later call invokes its producer again.
func FlightGetOrInitErr[T any, V any](m *FlightMap[V], init func() (V, error)) (*V, error) {
	return m.GetOrInitKeyErr(KeyOf[T](), init)
}

// FlightLookup returns the value stored for type parameter T, if T has
// been initialized. It never triggers initialization.
func FlightLookup[T any, V any](m *FlightMap[V]) (*V, bool) {
	return m.LookupKey(KeyOf[T]())
}

// GetOrInitKey is [FlightGetOrInit] for a precomputed Key.
// Panics if k is the zero Key.
func (m *FlightMap[V]) GetOrInitKey(k Key, init func() V) *V {
	p, _ := m.getOrInit(k, func() (V, error) {
		return init(), nil
	})
	return p
}

// GetOrInitKeyErr is [FlightGetOrInitErr] for a precomputed Key.
// Panics if k is the zero Key.
func (m *FlightMap[V]) GetOrInitKeyErr(k Key, init func() (V, error)) (*V, error) {
	return m.getOrInit(k, init)
}

// LookupKey is [FlightLookup] for a precomputed Key.
func (m *FlightMap[V]) LookupKey(k Key) (*V, bool) {
	m.mu.RLock()
	p, ok := m.entries[k]
	m.mu.RUnlock()
	return p, ok
}

func (m *FlightMap[V]) getOrInit(k Key, init func() (V, error)) (*V, error) {
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

	v, err, _ := m.group.Do(k.id(), func() (any, error) {
		// Re-check: a previous flight for k may have completed between
		// the read unlock and entering the group.
		m.mu.RLock()
		p, ok := m.entries[k]
		m.mu.RUnlock()
		if ok {
			m.metrics.Hit(m.name, k.Name())
			return p, nil
		}

		m.metrics.Miss(m.name, k.Name())
		timer := m.metrics.InitDuration(m.name, k.Name())
		val, err := init()
		timer.ObserveDuration()
		if err != nil {
			// The key stays absent; the flight is forgotten on return,
			// so the next caller retries.
			m.metrics.InitFailed(m.name, k.Name())
			return nil, err
		}

		p = &val
		m.mu.Lock()
		m.entries[k] = p
		n := len(m.entries)
		m.mu.Unlock()

		m.metrics.Entries(m.name, n)
		m.log.Debug("typemap: entry initialized",
			slog.String("map", m.name),
			slog.String("type", k.Name()),
		)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*V), nil
}

// Name returns the map's configured or generated name.
func (m *FlightMap[V]) Name() string { return m.name }

// Len returns the number of initialized entries.
func (m *FlightMap[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Keys returns all initialized keys in deterministic (name) order.
func (m *FlightMap[V]) Keys() []Key {
	m.mu.RLock()
	keys := make([]Key, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	m.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].Name() < keys[j].Name() })
	return keys
}
