package domain

import (
	"encoding/json"
	"fmt"
)

// IntrospectionQuery is the standard GraphQL introspection document.
const IntrospectionQuery = `
    query IntrospectionQuery {
      __schema {
        queryType { name }
        mutationType { name }
        subscriptionType { name }
        types {
          ...FullType
        }
        directives {
          name
          description
          locations
          args {
            ...InputValue
          }
        }
      }
    }

    fragment FullType on __Type {
      kind
      name
      description
      fields(includeDeprecated: true) {
        name
        description
        args {
          ...InputValue
        }
        type {
          ...TypeRef
        }
        isDeprecated
        deprecationReason
      }
      inputFields {
        ...InputValue
      }
      interfaces {
        ...TypeRef
      }
      enumValues(includeDeprecated: true) {
        name
        description
        isDeprecated
        deprecationReason
      }
      possibleTypes {
        ...TypeRef
      }
    }

    fragment InputValue on __InputValue {
      name
      description
      type { ...TypeRef }
      defaultValue
    }

    fragment TypeRef on __Type {
      kind
      name
      ofType {
        kind
        name
        ofType {
          kind
          name
          ofType {
            kind
            name
            ofType {
              kind
              name
              ofType {
                kind
                name
                ofType {
                  kind
                  name
                  ofType {
                    kind
                    name
                  }
                }
              }
            }
          }
        }
      }
    }
`

// IntrospectionResult mirrors the data member of an introspection response.
type IntrospectionResult struct {
	Schema IntrospectionSchema `json:"__schema"`
}

// IntrospectionSchema is the __schema object.
type IntrospectionSchema struct {
	QueryType    *IntrospectionNamedRef `json:"queryType"`
	MutationType *IntrospectionNamedRef `json:"mutationType"`
	Types        []IntrospectionType    `json:"types"`
}

// IntrospectionNamedRef names a root operation type.
type IntrospectionNamedRef struct {
	Name string `json:"name"`
}

// IntrospectionType is one entry of __schema.types.
type IntrospectionType struct {
	Kind        string               `json:"kind"`
	Name        string               `json:"name"`
	Description *string              `json:"description"`
	Fields      []IntrospectionField `json:"fields"`
}

// IntrospectionField is a field of an object type.
type IntrospectionField struct {
	Name        string                    `json:"name"`
	Description *string                   `json:"description"`
	Args        []IntrospectionInputValue `json:"args"`
	Type        *IntrospectionTypeRef     `json:"type"`
}

// IntrospectionInputValue is a field argument.
type IntrospectionInputValue struct {
	Name         string                `json:"name"`
	Description  *string               `json:"description"`
	Type         *IntrospectionTypeRef `json:"type"`
	DefaultValue *string               `json:"defaultValue"`
}

// IntrospectionTypeRef is the kind/name/ofType chain describing a type reference.
type IntrospectionTypeRef struct {
	Kind   string                `json:"kind"`
	Name   *string               `json:"name"`
	OfType *IntrospectionTypeRef `json:"ofType"`
}

// ParseIntrospection decodes the data member of an introspection response
// and builds the SchemaDescription from it.
func ParseIntrospection(data []byte) (*SchemaDescription, error) {
	var result IntrospectionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode introspection result: %w", err)
	}
	return result.Schema.Describe()
}

// Describe extracts the query and mutation roots.
// A schema without a query root is rejected.
func (s *IntrospectionSchema) Describe() (*SchemaDescription, error) {
	if s.QueryType == nil || s.QueryType.Name == "" {
		return nil, fmt.Errorf("introspection result has no query type")
	}

	types := make(map[string]*IntrospectionType, len(s.Types))
	for i := range s.Types {
		types[s.Types[i].Name] = &s.Types[i]
	}

	query, err := s.rootType(types, s.QueryType.Name)
	if err != nil {
		return nil, err
	}

	desc := &SchemaDescription{QueryType: query}

	if s.MutationType != nil && s.MutationType.Name != "" {
		mutation, err := s.rootType(types, s.MutationType.Name)
		if err != nil {
			return nil, err
		}
		desc.MutationType = mutation
	}

	return desc, nil
}

func (s *IntrospectionSchema) rootType(types map[string]*IntrospectionType, name string) (*RootType, error) {
	t, ok := types[name]
	if !ok {
		return nil, fmt.Errorf("root type %s not found in introspection result", name)
	}

	root := &RootType{Name: name, Fields: make([]FieldDescriptor, 0, len(t.Fields))}
	for _, f := range t.Fields {
		field, err := f.descriptor()
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", name, f.Name, err)
		}
		root.Fields = append(root.Fields, field)
	}
	return root, nil
}

func (f *IntrospectionField) descriptor() (FieldDescriptor, error) {
	returnType, err := f.Type.toTypeRef()
	if err != nil {
		return FieldDescriptor{}, err
	}

	field := FieldDescriptor{
		Name:        f.Name,
		Description: deref(f.Description),
		Type:        returnType,
		Args:        make([]ArgumentDescriptor, 0, len(f.Args)),
	}

	for _, a := range f.Args {
		argType, err := a.Type.toTypeRef()
		if err != nil {
			return FieldDescriptor{}, fmt.Errorf("argument %s: %w", a.Name, err)
		}
		field.Args = append(field.Args, ArgumentDescriptor{
			Name:         a.Name,
			Description:  deref(a.Description),
			Type:         argType,
			DefaultValue: a.DefaultValue,
		})
	}

	return field, nil
}

// toTypeRef converts the introspection chain into a TypeRef.
func (r *IntrospectionTypeRef) toTypeRef() (TypeRef, error) {
	if r == nil {
		return TypeRef{}, fmt.Errorf("missing type reference")
	}

	switch r.Kind {
	case "NON_NULL":
		inner, err := r.OfType.toTypeRef()
		if err != nil {
			return TypeRef{}, err
		}
		return NonNull(inner), nil
	case "LIST":
		inner, err := r.OfType.toTypeRef()
		if err != nil {
			return TypeRef{}, err
		}
		return ListOf(inner), nil
	default:
		if r.Name == nil || *r.Name == "" {
			return TypeRef{}, fmt.Errorf("named type of kind %s has no name", r.Kind)
		}
		return Named(*r.Name), nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
