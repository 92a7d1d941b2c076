package property

import (
	"fmt"
	"reflect"
)

type registration struct {
	typ  reflect.Type
	name string
}

// Register installs fn as the accessor for property on values of type t.
// Registrations are consulted before any other discovery step and survive
// ClearCache. Register at startup: a pair that is already cached keeps its
// cached outcome until the next ClearCache.
//
// Register covers what reflection cannot reach, such as unexported methods.
func (r *Resolver) Register(t reflect.Type, property string, fn AccessorFunc) {
	if t == nil || fn == nil {
		panic(fmt.Sprintf("property: Register(%v, %q) with nil type or func", t, property))
	}
	r.registry.Store(registration{typ: t, name: property}, fn)
}

// RegisterGetter registers get as the accessor for property on values of
// type T.
func RegisterGetter[T any, V any](r *Resolver, property string, get func(T) V) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	r.Register(t, property, func(target any, _ *Env) (any, error) {
		return get(target.(T)), nil
	})
}

func (r *Resolver) registered(t reflect.Type, name string) (AccessorFunc, bool) {
	v, ok := r.registry.Load(registration{typ: t, name: name})
	if !ok {
		return nil, false
	}
	return v.(AccessorFunc), true
}
