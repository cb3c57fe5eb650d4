package domain

import (
	"strings"
)

// TypeKind discriminates the variants of a TypeRef.
type TypeKind int

const (
	// NamedKind is a leaf naming a scalar, enum, input or object type
	NamedKind TypeKind = iota
	// NonNullKind wraps a type that may not be null
	NonNullKind
	// ListKind wraps the element type of a list
	ListKind
)

// String returns the introspection spelling of the kind.
func (k TypeKind) String() string {
	switch k {
	case NamedKind:
		return "NAMED"
	case NonNullKind:
		return "NON_NULL"
	case ListKind:
		return "LIST"
	default:
		return "unknown"
	}
}

// TypeRef is a GraphQL type reference: a named leaf, or a NON_NULL or LIST
// wrapper around another TypeRef. Construct values with Named, NonNull and
// ListOf so that every wrapper terminates in a named leaf.
type TypeRef struct {
	Kind   TypeKind
	Name   string   // set for NamedKind only
	OfType *TypeRef // set for NonNullKind and ListKind only
}

// Named returns a leaf TypeRef.
func Named(name string) TypeRef {
	return TypeRef{Kind: NamedKind, Name: name}
}

// NonNull wraps of in a NON_NULL modifier.
func NonNull(of TypeRef) TypeRef {
	return TypeRef{Kind: NonNullKind, OfType: &of}
}

// ListOf wraps of in a LIST modifier.
func ListOf(of TypeRef) TypeRef {
	return TypeRef{Kind: ListKind, OfType: &of}
}

// IsNonNull reports whether the outermost modifier is NON_NULL.
func (t TypeRef) IsNonNull() bool {
	return t.Kind == NonNullKind
}

// NamedType returns the name of the innermost leaf.
func (t TypeRef) NamedType() string {
	for t.Kind != NamedKind {
		if t.OfType == nil {
			return ""
		}
		t = *t.OfType
	}
	return t.Name
}

// String renders the reference in GraphQL notation, e.g. "[String!]!".
func (t TypeRef) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t TypeRef) write(b *strings.Builder) {
	switch t.Kind {
	case NonNullKind:
		if t.OfType != nil {
			t.OfType.write(b)
		}
		b.WriteByte('!')
	case ListKind:
		b.WriteByte('[')
		if t.OfType != nil {
			t.OfType.write(b)
		}
		b.WriteByte(']')
	default:
		b.WriteString(t.Name)
	}
}

// OperationKind is the root operation a field belongs to.
type OperationKind string

const (
	// QueryOperation marks fields of the query root
	QueryOperation OperationKind = "query"
	// MutationOperation marks fields of the mutation root
	MutationOperation OperationKind = "mutation"
)

// ArgumentDescriptor describes one argument of a root field.
type ArgumentDescriptor struct {
	Name         string
	Description  string
	Type         TypeRef
	DefaultValue *string
}

// FieldDescriptor describes a field of the query or mutation root.
// Args keep the order in which the schema declares them.
type FieldDescriptor struct {
	Name        string
	Description string
	Type        TypeRef
	Args        []ArgumentDescriptor
}

// RootType is an ordered set of fields of one operation root.
type RootType struct {
	Name   string
	Fields []FieldDescriptor
}

// Field returns the field with the given name.
func (r *RootType) Field(name string) (FieldDescriptor, bool) {
	if r == nil {
		return FieldDescriptor{}, false
	}
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// SchemaDescription is the part of an introspected schema the bridge needs:
// the query root and the optional mutation root.
// It is built once at startup and never modified.
type SchemaDescription struct {
	QueryType    *RootType
	MutationType *RootType
}
