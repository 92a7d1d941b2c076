package property

import "reflect"

// cacheKey identifies a property on a runtime type. reflect.Type values are
// unique per defined type, so two types that share a name but come from
// different packages or scopes never share a key.
type cacheKey struct {
	typ  reflect.Type
	pkg  string
	name string
}

func newKey(t reflect.Type, name string) cacheKey {
	return cacheKey{typ: t, pkg: definingPackage(t), name: name}
}

// definingPackage returns the import path of the package that defined t,
// looking through unnamed pointer types.
func definingPackage(t reflect.Type) string {
	for t.Name() == "" && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.PkgPath()
}

func (k cacheKey) typeName() string { return k.typ.String() }
