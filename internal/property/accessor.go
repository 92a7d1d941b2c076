package property

import (
	"reflect"
	"unsafe"
)

// accessor is a discovered way to read one property from values of one
// runtime type. Implementations are immutable once cached.
//
// invoke returns (value, true, nil) on success, (nil, false, nil) when the
// accessor does not apply to this call, and a non-nil error when the
// underlying read failed.
type accessor interface {
	invoke(target reflect.Value, env *Env) (any, bool, error)
	// exposed reports whether the accessor bypasses Go visibility and so
	// depends on the visibility override.
	exposed() bool
}

// methodAccessor calls a getter method.
type methodAccessor struct {
	name string
	// path leads from the target through embedded fields to the receiver.
	path []int
	// index is the method index in the receiver's method set, or in the
	// pointer method set when addr is set.
	index      int
	addr       bool
	private    bool
	takesEnv   bool
	returnsErr bool
}

func (a *methodAccessor) exposed() bool { return a.private }

func (a *methodAccessor) invoke(target reflect.Value, env *Env) (any, bool, error) {
	if a.takesEnv && env == nil {
		return nil, false, nil
	}
	recv, ok := walk(target, a.path, a.private || a.addr)
	if !ok {
		return nil, false, nil
	}
	if a.addr {
		recv = recv.Addr()
	}
	if isNilReceiver(recv) {
		return nil, false, nil
	}
	var in []reflect.Value
	if a.takesEnv {
		in = []reflect.Value{reflect.ValueOf(env)}
	}
	out := recv.Method(a.index).Call(in)
	if a.returnsErr && !out[1].IsNil() {
		return nil, false, out[1].Interface().(error)
	}
	return plain(out[0]), true, nil
}

// fieldAccessor reads a struct field.
type fieldAccessor struct {
	index   []int
	private bool
}

func (a *fieldAccessor) exposed() bool { return a.private }

func (a *fieldAccessor) invoke(target reflect.Value, _ *Env) (any, bool, error) {
	v, ok := walk(target, a.index, a.private)
	if !ok || !v.CanInterface() {
		return nil, false, nil
	}
	return plain(v), true, nil
}

// AccessorFunc reads a property from target. It is the shape of accessors
// registered explicitly with Resolver.Register.
type AccessorFunc func(target any, env *Env) (any, error)

// funcAccessor wraps a registered AccessorFunc.
type funcAccessor struct {
	fn AccessorFunc
}

func (a *funcAccessor) exposed() bool { return false }

func (a *funcAccessor) invoke(target reflect.Value, env *Env) (any, bool, error) {
	v, err := a.fn(target.Interface(), env)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// walk follows path from v through struct fields, dereferencing pointers on
// the way. With expose set it works on an addressable view of v and clears the
// read-only flag reflect puts on values reached through unexported fields. It
// reports false when a nil pointer blocks the path.
func walk(v reflect.Value, path []int, expose bool) (reflect.Value, bool) {
	if expose && v.Kind() != reflect.Pointer && !v.CanAddr() {
		cp := reflect.New(v.Type()).Elem()
		cp.Set(v)
		v = cp
	}
	for _, i := range path {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(i)
		if expose {
			v = exposeValue(v)
		}
	}
	return v, true
}

func exposeValue(v reflect.Value) reflect.Value {
	if v.CanInterface() || !v.CanAddr() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

func isNilReceiver(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// plain converts v to an interface value, turning nil pointers and nil
// interfaces into an untyped nil.
func plain(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
	case reflect.Invalid:
		return nil
	}
	return v.Interface()
}
