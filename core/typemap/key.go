package typemap

import (
	"reflect"
	"strconv"

	"github.com/hukumka/generic-static/internal/typename"
)

// Key identifies a type parameter inside a map. Keys obtained for the
// same type parameter are equal; keys for distinct type parameters are
// distinct, including distinct instantiations of the same generic
// wrapper and T versus *T.
type Key struct {
	t    reflect.Type
	name string
}

// KeyOf returns the key for type parameter T.
func KeyOf[T any]() Key {
	return KeyForType(reflect.TypeOf((*T)(nil)).Elem())
}

// KeyForType returns the key for the given reflect.Type.
// A nil type yields the zero Key.
func KeyForType(t reflect.Type) Key {
	if t == nil {
		return Key{}
	}
	return Key{t: t, name: typename.For(t)}
}

// Type returns the reflect.Type the key was derived from.
func (k Key) Type() reflect.Type { return k.t }

// Name returns the canonical name of the keyed type, e.g.
// "pkg/path.TypeName". Names are for logs and metric labels; key
// equality is decided by the underlying reflect.Type.
func (k Key) Name() string { return k.name }

// IsZero reports whether the key does not identify a type.
func (k Key) IsZero() bool { return k.t == nil }

// String returns a human-readable representation.
func (k Key) String() string {
	if k.IsZero() {
		return "<zero>"
	}
	return k.name
}

// id returns a process-unique identifier for the keyed type, suitable
// as a single-flight key. Derived from the reflect.Type's runtime
// pointer, so it cannot collide even if two types share a display name.
func (k Key) id() string {
	return strconv.FormatUint(uint64(reflect.ValueOf(k.t).Pointer()), 16)
}
