package typemap

import "github.com/hukumka/generic-static/core/metrics"

// Metrics defines the instrumentation hooks for type-keyed maps.
// One Metrics implementation may serve many maps; the map's name is
// passed on every call. Implementations must be thread-safe.
type Metrics interface {
	// Hit records a lookup that found an initialized entry.
	Hit(mapName, typeName string)
	// Miss records a lookup that triggered initialization.
	Miss(mapName, typeName string)
	// InitDuration times one producer invocation.
	InitDuration(mapName, typeName string) metrics.Timer
	// InitFailed records a producer that returned an error.
	InitFailed(mapName, typeName string)
	// Entries reports the number of initialized entries after an insert.
	Entries(mapName string, count int)
}

// nopMetrics is a no-op implementation of Metrics.
type nopMetrics struct{}

func (nopMetrics) Hit(string, string)                        {}
func (nopMetrics) Miss(string, string)                       {}
func (nopMetrics) InitDuration(string, string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) InitFailed(string, string)                 {}
func (nopMetrics) Entries(string, int)                       {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
