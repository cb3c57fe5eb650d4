package application

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nfishel48/conduit/internal/domain"
)

// usersSchema has Query.getUser(id: ID!): User, Query.version: String and
// Mutation.createUser(name: String!): User.
func usersSchema() *domain.SchemaDescription {
	return &domain.SchemaDescription{
		QueryType: &domain.RootType{
			Name: "Query",
			Fields: []domain.FieldDescriptor{
				{
					Name:        "getUser",
					Description: "Fetch a user by id",
					Type:        domain.Named("User"),
					Args: []domain.ArgumentDescriptor{
						{Name: "id", Type: domain.NonNull(domain.Named("ID"))},
					},
				},
				{
					Name: "version",
					Type: domain.Named("String"),
				},
			},
		},
		MutationType: &domain.RootType{
			Name: "Mutation",
			Fields: []domain.FieldDescriptor{
				{
					Name: "createUser",
					Type: domain.Named("User"),
					Args: []domain.ArgumentDescriptor{
						{Name: "name", Type: domain.NonNull(domain.Named("String"))},
						{Name: "email", Type: domain.Named("String")},
					},
				},
			},
		},
	}
}

// fakeGraphQLClient answers Execute from a canned response or error and
// records every request.
type fakeGraphQLClient struct {
	mu       sync.Mutex
	schema   *domain.SchemaDescription
	response *domain.GraphQLResponse
	err      error
	requests []*domain.GraphQLRequest
}

func (f *fakeGraphQLClient) Endpoint() string {
	return "http://backend.test/graphql"
}

func (f *fakeGraphQLClient) Execute(ctx context.Context, req *domain.GraphQLRequest) (*domain.GraphQLResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeGraphQLClient) Introspect(ctx context.Context) (*domain.SchemaDescription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.schema, nil
}

func (f *fakeGraphQLClient) lastRequest() *domain.GraphQLRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func dataResponse(field, payload string) *domain.GraphQLResponse {
	return &domain.GraphQLResponse{
		Data: map[string]json.RawMessage{field: json.RawMessage(payload)},
	}
}

// message builds a JSON-RPC request body.
func message(id interface{}, method string, params interface{}) []byte {
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
	}
	if id != nil {
		body["id"] = id
	}
	if params != nil {
		body["params"] = params
	}
	data, _ := json.Marshal(body)
	return data
}
