package typemap

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type typeA struct{}
type typeB struct{}
type typeC struct{}

type wrapper[T any] struct {
	value T
}

func TestMap_KeyIndependence(t *testing.T) {
	// Regression for the motivating defect: one shared lazy value for
	// all instantiations instead of one value per instantiating type.
	m := New[string]()

	a := GetOrInit[typeA](m, func() string { return "A" })
	b := GetOrInit[typeB](m, func() string { return "B" })

	if *a != "A" {
		t.Errorf("expected %q for typeA, got %q", "A", *a)
	}
	if *b != "B" {
		t.Errorf("expected %q for typeB, got %q", "B", *b)
	}
}

func TestMap_Idempotent(t *testing.T) {
	m := New[string]()

	first := GetOrInit[typeA](m, func() string { return "first" })
	second := GetOrInit[typeA](m, func() string {
		t.Error("second producer should not be invoked")
		return "second"
	})

	if first != second {
		t.Error("expected the same pointer from both calls")
	}
	if *second != "first" {
		t.Errorf("expected originally cached %q, got %q", "first", *second)
	}
}

func TestMap_ExactlyOncePerKey(t *testing.T) {
	const callers = 50

	m := New[string]()
	var produced atomic.Int32
	var wg sync.WaitGroup
	results := make([]*string, callers)

	wg.Add(callers)
	for i := 0; i < callers; i++ {
		i := i
		go func() {
			defer wg.Done()
			results[i] = GetOrInit[typeA](m, func() string {
				produced.Add(1)
				return "A"
			})
		}()
	}
	wg.Wait()

	if produced.Load() != 1 {
		t.Errorf("expected exactly 1 producer invocation, got %d", produced.Load())
	}
	for i, p := range results {
		if p != results[0] {
			t.Fatalf("caller %d observed a different pointer", i)
		}
		if *p != "A" {
			t.Fatalf("caller %d observed %q", i, *p)
		}
	}
}

func TestMap_Stress(t *testing.T) {
	const callers = 100

	m := New[string]()
	var produced atomic.Int32
	var wg sync.WaitGroup

	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			p := GetOrInit[typeA](m, func() string {
				produced.Add(1)
				time.Sleep(time.Millisecond)
				return "A"
			})
			if *p != "A" {
				t.Errorf("observed %q", *p)
			}
		}()
	}
	wg.Wait()

	if produced.Load() != 1 {
		t.Errorf("expected exactly 1 producer invocation, got %d", produced.Load())
	}
}

func TestMap_TypeDiscrimination(t *testing.T) {
	m := New[string]()

	a := GetOrInit[wrapper[typeA]](m, func() string { return "wrapped A" })
	b := GetOrInit[wrapper[typeB]](m, func() string { return "wrapped B" })

	if *a != "wrapped A" || *b != "wrapped B" {
		t.Errorf("instantiations of the same wrapper shared an entry: %q, %q", *a, *b)
	}

	v := GetOrInit[typeC](m, func() string { return "value" })
	p := GetOrInit[*typeC](m, func() string { return "pointer" })
	if *v != "value" || *p != "pointer" {
		t.Errorf("T and *T shared an entry: %q, %q", *v, *p)
	}
}

func TestMap_ReferenceStability(t *testing.T) {
	m := New[int]()

	p := GetOrInit[typeA](m, func() int { return 42 })

	// Grow the map with many unrelated keys; [n]int is a distinct type
	// for every n.
	for n := 1; n <= 1000; n++ {
		k := KeyForType(reflect.ArrayOf(n, reflect.TypeOf((*int)(nil)).Elem()))
		m.GetOrInitKey(k, func() int { return n })
	}

	if m.Len() != 1001 {
		t.Fatalf("expected 1001 entries, got %d", m.Len())
	}
	if *p != 42 {
		t.Errorf("earlier pointer no longer reads 42, got %d", *p)
	}
	if again := GetOrInit[typeA](m, func() int { return -1 }); again != p {
		t.Error("expected the originally returned pointer")
	}
}

func TestMap_ErrorLeavesKeyAbsent(t *testing.T) {
	m := New[string]()
	wantErr := errors.New("producer failed")

	_, err := GetOrInitErr[typeA](m, func() (string, error) {
		return "", wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected producer error, got %v", err)
	}
	if _, ok := Lookup[typeA, string](m); ok {
		t.Fatal("failed initialization must not record an entry")
	}

	// The next caller retries and may succeed.
	p, err := GetOrInitErr[typeA](m, func() (string, error) {
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if *p != "recovered" {
		t.Errorf("expected %q, got %q", "recovered", *p)
	}
}

func TestMap_PanicReleasesLock(t *testing.T) {
	m := New[string]()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected producer panic to propagate")
			}
		}()
		GetOrInit[typeA](m, func() string { panic("producer panic") })
	}()

	if _, ok := Lookup[typeA, string](m); ok {
		t.Fatal("panicked initialization must not record an entry")
	}

	// The lock must have been released and the key must be retryable.
	p := GetOrInit[typeA](m, func() string { return "after panic" })
	if *p != "after panic" {
		t.Errorf("expected %q, got %q", "after panic", *p)
	}
}

func TestMap_Lookup(t *testing.T) {
	m := New[string]()

	if _, ok := Lookup[typeA, string](m); ok {
		t.Error("expected miss before initialization")
	}

	p := GetOrInit[typeA](m, func() string { return "A" })
	got, ok := Lookup[typeA, string](m)
	if !ok || got != p {
		t.Error("expected Lookup to return the initialized entry")
	}
}

func TestMap_Keys(t *testing.T) {
	m := New[string]()

	GetOrInit[typeB](m, func() string { return "B" })
	GetOrInit[typeA](m, func() string { return "A" })

	keys := m.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	// Sorted by name: typeA before typeB.
	if keys[0] != KeyOf[typeA]() || keys[1] != KeyOf[typeB]() {
		t.Errorf("unexpected key order: %v", keys)
	}
}

func TestMap_ZeroKeyPanics(t *testing.T) {
	m := New[string]()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero Key")
		}
	}()
	m.GetOrInitKey(Key{}, func() string { return "" })
}

func TestMap_Name(t *testing.T) {
	if m := New[string](WithName("users")); m.Name() != "users" {
		t.Errorf("expected %q, got %q", "users", m.Name())
	}
	if m := New[string](); m.Name() == "" {
		t.Error("expected a generated default name")
	}
}
