package schema

import (
	"fmt"

	"github.com/hanpama/hostgraph/internal/language"
)

// BuildFromSDL parses sdl and returns the corresponding Schema. Type
// extensions are merged into their base definitions. Without a schema
// definition, a type named Query becomes the query root.
func BuildFromSDL(name, sdl string) (*Schema, error) {
	doc, err := language.ParseSchema(name, sdl)
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	s := NewSchema(name)
	for _, def := range doc.Definitions {
		if IsBuiltinScalar(def.Name) {
			continue
		}
		s.AddType(buildType(def))
	}
	for _, ext := range doc.Extensions {
		base := s.Types[ext.Name]
		if base == nil {
			return nil, fmt.Errorf("schema %s: extension of undefined type %q", name, ext.Name)
		}
		if base.Kind != kindOf(ext.Kind) {
			return nil, fmt.Errorf("schema %s: cannot extend %s %q as %s", name, base.Kind, ext.Name, kindOf(ext.Kind))
		}
		mergeDefinition(base, ext)
	}

	for _, sd := range doc.Schema {
		s.Description = sd.Description
		for _, op := range sd.OperationTypes {
			switch op.Operation {
			case language.Query:
				s.SetQueryType(op.Type)
			case language.Mutation:
				s.SetMutationType(op.Type)
			case language.Subscription:
				s.SetSubscriptionType(op.Type)
			}
		}
	}
	if s.QueryType == "" && s.Types["Query"] != nil {
		s.SetQueryType("Query")
	}
	return s, nil
}

func kindOf(k language.DefinitionKind) TypeKind {
	switch k {
	case language.Object:
		return TypeKindObject
	case language.Interface:
		return TypeKindInterface
	case language.Union:
		return TypeKindUnion
	case language.Enum:
		return TypeKindEnum
	case language.InputObject:
		return TypeKindInputObject
	}
	return TypeKindScalar
}

func buildType(def *language.Definition) *Type {
	t := NewType(def.Name, kindOf(def.Kind), def.Description)
	mergeDefinition(t, def)
	return t
}

func mergeDefinition(t *Type, def *language.Definition) {
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	switch t.Kind {
	case TypeKindObject, TypeKindInterface:
		for _, fd := range def.Fields {
			t.AddField(buildField(fd))
		}
	case TypeKindInputObject:
		for _, fd := range def.Fields {
			t.AddInputField(&InputValue{
				Name:         fd.Name,
				Description:  fd.Description,
				Type:         buildTypeRef(fd.Type),
				DefaultValue: defaultValue(fd.DefaultValue),
			})
		}
	case TypeKindUnion:
		for _, name := range def.Types {
			t.AddPossibleType(name)
		}
	case TypeKindEnum:
		for _, ev := range def.EnumValues {
			t.AddEnumValue(buildEnumValue(ev))
		}
	}
}

func buildField(def *language.FieldDefinition) *Field {
	f := NewField(def.Name, def.Description, buildTypeRef(def.Type))
	if reason, ok := deprecation(def.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range def.Arguments {
		f.AddArgument(&InputValue{
			Name:         arg.Name,
			Description:  arg.Description,
			Type:         buildTypeRef(arg.Type),
			DefaultValue: defaultValue(arg.DefaultValue),
		})
	}
	return f
}

func buildEnumValue(def *language.EnumValueDefinition) *EnumValue {
	v := &EnumValue{Name: def.Name, Description: def.Description}
	if reason, ok := deprecation(def.Directives); ok {
		v.IsDeprecated, v.DeprecationReason = true, reason
	}
	return v
}

func buildTypeRef(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(buildTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = NonNullType(ref)
	}
	return ref
}

func deprecation(directives language.DirectiveList) (string, bool) {
	d := directives.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "", true
}

func defaultValue(v *language.Value) any {
	if v == nil {
		return nil
	}
	out, err := v.Value(nil)
	if err != nil {
		return v.Raw
	}
	return out
}
