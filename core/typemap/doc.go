// Package typemap provides a concurrency-safe, type-keyed, lazy
// initialization cache: at most one stored value per distinct type
// parameter, each computed exactly once no matter how many goroutines
// race for it.
//
// # Problem
//
// A value that should be computed once *per instantiating type* of a
// generic function is, with a single package-level variable, computed
// once for *all* instantiations and incorrectly shared:
//
//	var once sync.Once
//	var value string
//
//	func describe[T fmt.Stringer]() string {
//	    once.Do(func() { value = compute[T]() })
//	    return value // every T observes the value of whichever T ran first
//	}
//
// typemap keys the lazy value by the type parameter instead:
//
//	var values = typemap.New[string]()
//
//	func describe[T fmt.Stringer]() string {
//	    return *typemap.GetOrInit[T](values, func() string {
//	        return compute[T]()
//	    })
//	}
//
// # Guarantees
//
//   - The producer runs at most once per distinct type parameter over
//     the map's lifetime, enforced by double-checked locking.
//   - Distinct type parameters never interfere; distinct instantiations
//     of the same generic wrapper are distinct keys, as are T and *T.
//   - Returned pointers are stable: entries are individually heap
//     allocated and never replaced, moved, or removed while the map is
//     alive, so a pointer handed out earlier stays valid as unrelated
//     entries are added later.
//
// # Choosing between Map and FlightMap
//
// [Map] invokes the producer while holding the map's exclusive lock.
// This is the simplest correct protocol, but a slow producer for one
// type blocks initialization of unrelated types, and a producer must
// never call back into the same Map (the lock is not re-entrant).
//
// [FlightMap] invokes the producer outside the map lock, deduplicating
// concurrent producers per key with a single-flight group. Unrelated
// types initialize concurrently, and a producer may initialize further
// keys of the same FlightMap.
//
// Neither variant supports removing or replacing entries. Typical usage
// embeds a map in a package-level variable so entries live for the rest
// of the process.
package typemap
