package hostrt

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/hanpama/hostgraph/internal/language"
	"github.com/hanpama/hostgraph/internal/schema"
)

// ProjectFields resolves each named field of source and returns the values
// keyed by field name. Fields the source lacks map to nil.
func (r *Runtime) ProjectFields(ctx context.Context, objectType string, source any, fields []string) (map[string]any, error) {
	tasks := make([]Task, len(fields))
	for i, f := range fields {
		tasks[i] = Task{ObjectType: objectType, Field: f, Source: source}
	}
	out := make(map[string]any, len(fields))
	for i, res := range r.BatchResolve(ctx, tasks) {
		if res.Error != nil {
			return nil, res.Error
		}
		out[fields[i]] = res.Value
	}
	return out, nil
}

// ProjectQuery projects source through the selection set of a single
// anonymous or named query, such as "{ name friends { name } }".
func (r *Runtime) ProjectQuery(ctx context.Context, objectType string, source any, query string) (map[string]any, error) {
	selection, err := language.ParseSelection(query)
	if err != nil {
		return nil, fmt.Errorf("parse selection: %w", err)
	}
	return r.Project(ctx, objectType, source, selection)
}

// Project resolves a selection set on source, descending into nested
// selections. Object values are projected with the declared type of their
// field; lists are projected element by element.
func (r *Runtime) Project(ctx context.Context, objectType string, source any, selection language.SelectionSet) (map[string]any, error) {
	return r.projectObject(ctx, objectType, source, selection, nil)
}

func (r *Runtime) projectObject(ctx context.Context, objectType string, source any, selection language.SelectionSet, path []string) (map[string]any, error) {
	objectType = r.concreteType(objectType, source)
	out := make(map[string]any, len(selection))
	if err := r.collect(ctx, objectType, source, selection, path, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Runtime) collect(ctx context.Context, objectType string, source any, selection language.SelectionSet, path []string, out map[string]any) error {
	for _, sel := range selection {
		switch sel := sel.(type) {
		case *language.Field:
			name := sel.Alias
			if name == "" {
				name = sel.Name
			}
			v, err := r.projectField(ctx, objectType, source, sel, child(path, name))
			if err != nil {
				return err
			}
			out[name] = v
		case *language.InlineFragment:
			if !r.fragmentApplies(sel.TypeCondition, objectType) {
				continue
			}
			if err := r.collect(ctx, objectType, source, sel.SelectionSet, path, out); err != nil {
				return err
			}
		case *language.FragmentSpread:
			return fmt.Errorf("%s: fragment spread ...%s is not supported", pathString(path), sel.Name)
		}
	}
	return nil
}

func (r *Runtime) projectField(ctx context.Context, objectType string, source any, sel *language.Field, path []string) (any, error) {
	var def *schema.Field
	if r.schema.Type(objectType) != nil && sel.Name != "__typename" {
		if def = r.schema.Field(objectType, sel.Name); def == nil {
			return nil, fmt.Errorf("%s: cannot query field %q on type %q", pathString(path), sel.Name, objectType)
		}
	}
	args, err := argumentValues(sel.Arguments)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pathString(path), err)
	}

	v, err := r.ResolveSync(ctx, objectType, sel.Name, source, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pathString(path), err)
	}

	var nested string
	if def != nil {
		nested = def.Type.GetNamedType()
		composite := r.schema.Type(nested).IsComposite()
		switch {
		case composite && len(sel.SelectionSet) == 0:
			return nil, fmt.Errorf("%s: field of type %s must have a selection of subfields", pathString(path), def.Type)
		case !composite && len(sel.SelectionSet) > 0:
			return nil, fmt.Errorf("%s: field of type %s must not have a selection", pathString(path), def.Type)
		}
	}
	if len(sel.SelectionSet) == 0 {
		return v, nil
	}
	return r.complete(ctx, nested, v, sel.SelectionSet, path)
}

// complete projects a resolved value that has a selection: nil stays nil,
// lists are completed per element, anything else is an object.
func (r *Runtime) complete(ctx context.Context, typeName string, v any, selection language.SelectionSet, path []string) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
	}
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items := make([]any, rv.Len())
		for i := range items {
			item, err := r.complete(ctx, typeName, rv.Index(i).Interface(), selection, child(path, fmt.Sprint(i)))
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return items, nil
	}
	return r.projectObject(ctx, typeName, v, selection, path)
}

// concreteType names the object type of source when typeName is an interface
// or union. The source's own __typename property decides; failing that, a
// protobuf message or Go type named like a possible type. Otherwise typeName
// is kept, and only fragments on typeName itself or an interface it extends
// apply to the value.
func (r *Runtime) concreteType(typeName string, source any) string {
	t := r.schema.Type(typeName)
	if t == nil || (t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion) {
		return typeName
	}
	if v, found, err := r.resolver.Resolve("__typename", source, nil); err == nil && found {
		if name, ok := v.(string); ok && r.possibleType(t, name) {
			return name
		}
	}
	if name := hostTypeName(source); r.possibleType(t, name) {
		return name
	}
	return typeName
}

func hostTypeName(source any) string {
	if m, ok := source.(protoreflect.ProtoMessage); ok {
		return string(m.ProtoReflect().Descriptor().Name())
	}
	t := reflect.TypeOf(source)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// possibleType reports whether the object type name is a member of the
// union or an implementation of the interface abstract.
func (r *Runtime) possibleType(abstract *schema.Type, name string) bool {
	switch abstract.Kind {
	case schema.TypeKindUnion:
		return slices.Contains(abstract.PossibleTypes, name)
	case schema.TypeKindInterface:
		t := r.schema.Type(name)
		return t != nil && t.Kind == schema.TypeKindObject && slices.Contains(t.Interfaces, abstract.Name)
	}
	return false
}

// fragmentApplies reports whether an inline fragment with the given type
// condition selects on a value of objectType.
func (r *Runtime) fragmentApplies(condition, objectType string) bool {
	if condition == "" || condition == objectType {
		return true
	}
	t := r.schema.Type(condition)
	if t == nil {
		return false
	}
	if r.possibleType(t, objectType) {
		return true
	}
	ot := r.schema.Type(objectType)
	return ot != nil && t.Kind == schema.TypeKindInterface && slices.Contains(ot.Interfaces, condition)
}

func argumentValues(list language.ArgumentList) (map[string]any, error) {
	if len(list) == 0 {
		return nil, nil
	}
	args := make(map[string]any, len(list))
	for _, a := range list {
		v, err := a.Value.Value(nil)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", a.Name, err)
		}
		args[a.Name] = v
	}
	return args, nil
}

func child(path []string, elem string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = elem
	return out
}

func pathString(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(path, ".")
}
