package domain

import (
	"context"
	"encoding/json"
)

// GraphQLRequest is the body POSTed to the backend.
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLError is one entry of a response's errors list.
type GraphQLError struct {
	Message    string          `json:"message"`
	Path       []interface{}   `json:"path,omitempty"`
	Extensions json.RawMessage `json:"extensions,omitempty"`
}

// GraphQLResponse is the decoded backend response.
// Data members are kept raw so key order and number precision survive.
type GraphQLResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []GraphQLError             `json:"errors,omitempty"`
}

// GraphQLClient sends documents to the backing GraphQL API.
type GraphQLClient interface {
	// Endpoint returns the configured backend URL.
	Endpoint() string

	// Execute POSTs a document with its variables.
	// Transport failures and non-2xx statuses are returned as errors;
	// GraphQL-level errors are returned in the response.
	Execute(ctx context.Context, req *GraphQLRequest) (*GraphQLResponse, error)

	// Introspect fetches and decodes the backend schema.
	Introspect(ctx context.Context) (*SchemaDescription, error)
}
