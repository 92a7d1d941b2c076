package schema

const (
	stringName  = "String"
	intName     = "Int"
	floatName   = "Float"
	booleanName = "Boolean"
	idName      = "ID"
)

func builtinScalars() []*Type {
	return []*Type{
		NewType(stringName, TypeKindScalar, "The `String` scalar type represents textual data, represented as UTF-8 character sequences."),
		NewType(intName, TypeKindScalar, "The `Int` scalar type represents non-fractional signed whole numeric values."),
		NewType(floatName, TypeKindScalar, "The `Float` scalar type represents signed double-precision fractional values."),
		NewType(booleanName, TypeKindScalar, "The `Boolean` scalar type represents `true` or `false`."),
		NewType(idName, TypeKindScalar, "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching."),
	}
}

// IsBuiltinScalar reports whether name is one of the specified scalars.
func IsBuiltinScalar(name string) bool {
	switch name {
	case stringName, intName, floatName, booleanName, idName:
		return true
	}
	return false
}
