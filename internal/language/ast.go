package language

import "github.com/vektah/gqlparser/v2/ast"

// SDL.
type (
	SchemaDocument      = ast.SchemaDocument
	Definition          = ast.Definition
	DefinitionKind      = ast.DefinitionKind
	FieldDefinition     = ast.FieldDefinition
	EnumValueDefinition = ast.EnumValueDefinition
	DirectiveList       = ast.DirectiveList
	Type                = ast.Type
	Value               = ast.Value
)

const (
	Object      DefinitionKind = ast.Object
	Interface   DefinitionKind = ast.Interface
	Union       DefinitionKind = ast.Union
	Enum        DefinitionKind = ast.Enum
	InputObject DefinitionKind = ast.InputObject
)

// Selections.
type (
	Operation      = ast.Operation
	SelectionSet   = ast.SelectionSet
	Field          = ast.Field
	InlineFragment = ast.InlineFragment
	FragmentSpread = ast.FragmentSpread
	ArgumentList   = ast.ArgumentList
)

const (
	Query        Operation = ast.Query
	Mutation     Operation = ast.Mutation
	Subscription Operation = ast.Subscription
)
