package protoreg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jhump/protoreflect/v2/protobuilder"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/hanpama/hostgraph/internal/schema"
)

// Build derives one proto3 file describing the records behind the object and
// interface types of s, so host data can be carried as protobuf messages.
// Root operation types are skipped. Fields typed as unions, input objects or
// nested lists have no record representation and are left out. Enums and
// custom scalars are carried as strings.
func Build(s *schema.Schema, pkg string) (*Registry, error) {
	if pkg == "" {
		pkg = "hostgraph"
	}
	b := &builder{
		schema:   s,
		file:     protobuilder.NewFile(strings.ReplaceAll(pkg, ".", "/") + ".proto"),
		messages: make(map[string]*protobuilder.MessageBuilder),
	}
	b.file.SetPackageName(protoreflect.FullName(pkg))
	b.file.SetSyntax(protoreflect.Proto3)

	// Pass 1: one message per record type, so fields may refer to any of them.
	for _, name := range b.recordTypes() {
		typ := s.Types[name]
		mb := protobuilder.NewMessage(protoreflect.Name(name))
		mb.SetComments(comment(typ.Description))
		b.messages[name] = mb
		b.file.AddMessage(mb)
	}
	// Pass 2: fields.
	for _, name := range b.recordTypes() {
		b.addFields(s.Types[name])
	}

	fd, err := b.file.Build()
	if err != nil {
		return nil, fmt.Errorf("build proto file for %s: %w", pkg, err)
	}
	reg := &Registry{file: fd, messages: make(map[string]protoreflect.MessageDescriptor)}
	msgs := fd.Messages()
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		reg.messages[string(md.Name())] = md
	}
	return reg, nil
}

type builder struct {
	schema   *schema.Schema
	file     *protobuilder.FileBuilder
	messages map[string]*protobuilder.MessageBuilder
}

// recordTypes lists object and interface types in name order.
func (b *builder) recordTypes() []string {
	var names []string
	for name, typ := range b.schema.Types {
		if typ.Kind != schema.TypeKindObject && typ.Kind != schema.TypeKindInterface {
			continue
		}
		if name == b.schema.QueryType || name == b.schema.MutationType || name == b.schema.SubscriptionType {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *builder) addFields(typ *schema.Type) {
	mb := b.messages[typ.Name]
	fieldBuilders := make([]*protobuilder.FieldBuilder, 0, len(typ.Fields))
	for _, field := range typ.Fields {
		rt, ok := b.resolveTypeRef(field.Type)
		if !ok {
			continue
		}
		fb := protobuilder.NewField(nameProtoField(field.Name), rt.fieldType).
			SetJsonName(field.Name)
		fb.SetComments(comment(field.Description))
		if rt.isOptional {
			fb.SetOptional()
			fb.SetProto3Optional(true)
		}
		if rt.isRepeated {
			fb.SetRepeated()
		}
		mb.AddField(fb)
		fieldBuilders = append(fieldBuilders, fb)
	}
	allocateFieldNumbers(fieldBuilders)
}

type resolvedType struct {
	isRepeated bool
	isOptional bool
	fieldType  *protobuilder.FieldType
}

func (b *builder) resolveTypeRef(ref *schema.TypeRef) (resolvedType, bool) {
	switch ref.Kind {
	case schema.TypeRefKindNamed:
		ft, ok := b.mapNamedType(ref.Named)
		return resolvedType{isOptional: true, fieldType: ft}, ok
	case schema.TypeRefKindList:
		elem, ok := b.resolveTypeRef(ref.OfType)
		if !ok || elem.isRepeated {
			return resolvedType{}, false
		}
		return resolvedType{isRepeated: true, fieldType: elem.fieldType}, true
	case schema.TypeRefKindNonNull:
		inner, ok := b.resolveTypeRef(ref.OfType)
		inner.isOptional = false
		return inner, ok
	}
	return resolvedType{}, false
}

func (b *builder) mapNamedType(name string) (*protobuilder.FieldType, bool) {
	if kind, ok := scalars[name]; ok {
		return protobuilder.FieldTypeScalar(kind), true
	}
	if mb, ok := b.messages[name]; ok {
		return protobuilder.FieldTypeMessage(mb), true
	}
	typ := b.schema.Types[name]
	if typ != nil && (typ.Kind == schema.TypeKindEnum || typ.Kind == schema.TypeKindScalar) {
		return protobuilder.FieldTypeScalar(protoreflect.StringKind), true
	}
	return nil, false
}

var scalars = map[string]protoreflect.Kind{
	"String":  protoreflect.StringKind,
	"ID":      protoreflect.StringKind,
	"Int":     protoreflect.Int32Kind,
	"Float":   protoreflect.DoubleKind,
	"Boolean": protoreflect.BoolKind,
}
