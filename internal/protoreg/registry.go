package protoreg

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Registry holds the record messages built from a schema.
type Registry struct {
	file     protoreflect.FileDescriptor
	messages map[string]protoreflect.MessageDescriptor
}

// File returns the generated file descriptor.
func (r *Registry) File() protoreflect.FileDescriptor { return r.file }

// Message returns the record message for a GraphQL type name, or nil.
func (r *Registry) Message(typeName string) protoreflect.MessageDescriptor {
	return r.messages[typeName]
}

// Decode unmarshals protojson data into a dynamic message of the record type
// for typeName. Both proto and JSON field names are accepted.
func (r *Registry) Decode(typeName string, data []byte) (*dynamicpb.Message, error) {
	md := r.Message(typeName)
	if md == nil {
		return nil, fmt.Errorf("no record message for type %q", typeName)
	}
	msg := dynamicpb.NewMessage(md)
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", typeName, err)
	}
	return msg, nil
}
