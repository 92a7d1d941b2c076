package property

import (
	"context"
	"reflect"
)

// Env is the per-field execution context handed to getters that declare a
// single *Env parameter. The resolver passes it through without reading it.
type Env struct {
	Context context.Context
	// ObjectType is the GraphQL type name of the parent object.
	ObjectType string
	// Field is the GraphQL field being resolved.
	Field string
	// FieldType is the declared type of Field, if known.
	FieldType DeclaredType
	Source    any
	Args      map[string]any
}

// DeclaredType is the part of a GraphQL type description the resolver needs.
type DeclaredType interface {
	// IsBoolean reports whether the type is Boolean or Boolean!.
	IsBoolean() bool
}

var (
	envType   = reflect.TypeOf((*Env)(nil))
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

func isBoolean(t DeclaredType) bool {
	if t == nil {
		return false
	}
	return t.IsBoolean()
}

func (e *Env) context() context.Context {
	if e == nil || e.Context == nil {
		return context.Background()
	}
	return e.Context
}
