package domain

import (
	"fmt"
	"strings"
)

// scalarTypes need no selection set.
var scalarTypes = map[string]bool{
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
	"ID":      true,
}

// BuildDocument renders a single-operation document selecting field on the
// given root. Variables are declared and passed in argument order:
//
//	mutation($name: String!) {
//	  createUser(name: $name) { id name ... on User { __typename } }
//	}
func BuildDocument(kind OperationKind, field FieldDescriptor) string {
	var b strings.Builder

	b.WriteString(string(kind))
	if len(field.Args) > 0 {
		definitions := make([]string, 0, len(field.Args))
		for _, arg := range field.Args {
			definitions = append(definitions, fmt.Sprintf("$%s: %s", arg.Name, arg.Type.String()))
		}
		b.WriteString("(" + strings.Join(definitions, ", ") + ")")
	}
	b.WriteString(" {\n  ")

	b.WriteString(field.Name)
	if len(field.Args) > 0 {
		usages := make([]string, 0, len(field.Args))
		for _, arg := range field.Args {
			usages = append(usages, fmt.Sprintf("%s: $%s", arg.Name, arg.Name))
		}
		b.WriteString("(" + strings.Join(usages, ", ") + ")")
	}

	if selection := BuildSelectionSet(field.Type.NamedType()); selection != "" {
		b.WriteString(" " + selection)
	}
	b.WriteString("\n}")

	return b.String()
}

// BuildSelectionSet returns the selection requested for a return type.
// Scalars get none. Every other type is assumed to expose id and name;
// the backend rejects the document when it does not, and that surfaces as
// an ordinary execution error.
func BuildSelectionSet(typeName string) string {
	if scalarTypes[typeName] {
		return ""
	}
	return fmt.Sprintf("{ id name ... on %s { __typename } }", typeName)
}
