package property

import (
	"reflect"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// readContainer reads name from target when target is a keyed container. The
// last result reports whether target was a container at all.
func readContainer(target any, name string) (any, bool, bool) {
	switch c := target.(type) {
	case map[string]any:
		v, ok := c[name]
		return v, ok, true
	case proto.Message:
		v, ok := readMessage(c.ProtoReflect(), name)
		return v, ok, true
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false, false
	}
	if rv.IsNil() {
		return nil, false, true
	}
	v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
	if !v.IsValid() {
		return nil, false, true
	}
	return plain(v), true, true
}

// readMessage looks a field up by proto name, then by JSON name.
func readMessage(msg protoreflect.Message, name string) (any, bool) {
	if !msg.IsValid() {
		return nil, false
	}
	fields := msg.Descriptor().Fields()
	fd := fields.ByName(protoreflect.Name(name))
	if fd == nil {
		fd = fields.ByJSONName(name)
	}
	if fd == nil {
		return nil, false
	}
	if fd.HasPresence() && !msg.Has(fd) {
		return nil, true
	}
	v := msg.Get(fd)
	switch {
	case fd.IsList():
		lst := v.List()
		out := make([]any, 0, lst.Len())
		for i := 0; i < lst.Len(); i++ {
			out = append(out, messageValue(fd, lst.Get(i)))
		}
		return out, true
	case fd.IsMap():
		out := make(map[string]any, v.Map().Len())
		v.Map().Range(func(k protoreflect.MapKey, mv protoreflect.Value) bool {
			out[k.String()] = messageValue(fd.MapValue(), mv)
			return true
		})
		return out, true
	}
	return messageValue(fd, v), true
}

// messageValue converts a singular protobuf value to a plain Go value.
func messageValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return v.Bool()
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return int32(v.Int())
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return v.Int()
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return uint32(v.Uint())
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return v.Uint()
	case protoreflect.FloatKind:
		return float32(v.Float())
	case protoreflect.DoubleKind:
		return v.Float()
	case protoreflect.StringKind:
		return v.String()
	case protoreflect.BytesKind:
		return v.Bytes()
	case protoreflect.EnumKind:
		if ev := fd.Enum().Values().ByNumber(v.Enum()); ev != nil {
			return string(ev.Name())
		}
		return int32(v.Enum())
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return v.Message().Interface()
	}
	return nil
}
