package domain

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Validation schema kinds.
const (
	SchemaString  = "string"
	SchemaNumber  = "number"
	SchemaBoolean = "boolean"
	SchemaArray   = "array"
	SchemaObject  = "object"
)

// ValidationSchema is a JSON Schema node describing accepted tool input.
// Properties keep insertion order so they serialize in argument declaration order.
type ValidationSchema struct {
	Type        string                                            `json:"type"`
	Description string                                            `json:"description,omitempty"`
	Items       *ValidationSchema                                 `json:"items,omitempty"`
	Properties  *orderedmap.OrderedMap[string, *ValidationSchema] `json:"properties,omitempty"`
	Required    []string                                          `json:"required,omitempty"`
}

// NewObjectSchema returns an object schema with an empty, ordered property set.
func NewObjectSchema() *ValidationSchema {
	return &ValidationSchema{
		Type:       SchemaObject,
		Properties: orderedmap.New[string, *ValidationSchema](),
	}
}

// Property returns the schema of a named property.
func (s *ValidationSchema) Property(name string) (*ValidationSchema, bool) {
	if s == nil || s.Properties == nil {
		return nil, false
	}
	return s.Properties.Get(name)
}

// PropertyNames returns property names in insertion order.
func (s *ValidationSchema) PropertyNames() []string {
	if s == nil || s.Properties == nil {
		return nil
	}
	names := make([]string, 0, s.Properties.Len())
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// ToValidationSchema maps a GraphQL type reference to a validation schema.
//
// NON_NULL is unwrapped without trace; required-ness is decided by the caller
// from the outer TypeRef. LIST becomes an array of the mapped element type.
// Int and Float map to number, String and ID to string, Boolean to boolean.
// Every other named type (objects, enums, input objects, custom scalars) is
// narrowed to a string annotated with the original type name.
func ToValidationSchema(ref TypeRef) *ValidationSchema {
	switch ref.Kind {
	case NonNullKind:
		return ToValidationSchema(*ref.OfType)
	case ListKind:
		return &ValidationSchema{
			Type:  SchemaArray,
			Items: ToValidationSchema(*ref.OfType),
		}
	}

	switch ref.Name {
	case "Int", "Float":
		return &ValidationSchema{Type: SchemaNumber}
	case "String", "ID":
		return &ValidationSchema{Type: SchemaString}
	case "Boolean":
		return &ValidationSchema{Type: SchemaBoolean}
	default:
		return &ValidationSchema{
			Type:        SchemaString,
			Description: fmt.Sprintf("Represents GraphQL type '%s'", ref.Name),
		}
	}
}
