package language

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParseSchema parses SDL. name labels positions in errors.
func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseSelection parses a document holding exactly one query operation, such
// as "{ title author { name } }", and returns its selection set. Fragment
// definitions are rejected because selections are projected without them.
func ParseSelection(source string) (SelectionSet, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	if len(doc.Operations) != 1 {
		return nil, fmt.Errorf("selection must contain exactly one operation, got %d", len(doc.Operations))
	}
	op := doc.Operations[0]
	if op.Operation != Query {
		return nil, fmt.Errorf("selection must be a query, got %s", op.Operation)
	}
	if len(doc.Fragments) > 0 {
		return nil, fmt.Errorf("fragment definitions are not supported in a selection")
	}
	return op.SelectionSet, nil
}
