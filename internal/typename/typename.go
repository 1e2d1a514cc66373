// Package typename produces canonical, human-readable names for
// reflect.Types. Names are used for log fields and metric labels and
// are cached for repeated lookups.
package typename

import (
	"reflect"
	"sync"
)

// maxCacheSize is the maximum number of entries in the name cache.
// Since the number of types in a typical Go program is bounded and small,
// this limit is rarely hit. When exceeded, the cache is cleared.
const maxCacheSize = 1024

var (
	muCache sync.RWMutex
	cache   = make(map[reflect.Type]string)
)

// For returns the canonical name of t: "pkg/path.TypeName" for named
// types, the builtin name for predeclared types, "*" followed by the
// element's name for pointers, and t.String() for unnamed composites.
// Pointers are NOT unwrapped into their element name: *T and T name
// distinct types. Results are cached; safe for concurrent use.
func For(t reflect.Type) string {
	if t == nil {
		return ""
	}

	// Check cache
	muCache.RLock()
	name, ok := cache[t]
	muCache.RUnlock()
	if ok {
		return name
	}

	name = compute(t)

	// Store in cache with size limit check
	muCache.Lock()
	// Double-check after acquiring write lock
	if existing, ok := cache[t]; ok {
		muCache.Unlock()
		return existing
	}
	if len(cache) >= maxCacheSize {
		// Clear cache when limit is reached (rare for typical programs)
		cache = make(map[reflect.Type]string)
	}
	cache[t] = name
	muCache.Unlock()

	return name
}

func compute(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + For(t.Elem())
	}
	if t.Name() == "" {
		// Unnamed composite: []int, map[string]int, chan int, ...
		return t.String()
	}
	if pkg := t.PkgPath(); pkg != "" {
		return pkg + "." + t.Name()
	}
	// Predeclared types: int, string, ...
	return t.Name()
}
