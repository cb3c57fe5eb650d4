package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nfishel48/conduit/internal/domain"
)

// maxErrorBody bounds how much of a failed response body is kept for diagnostics.
const maxErrorBody = 4096

// GraphQLClient handles interactions with the backing GraphQL API.
// It implements domain.GraphQLClient.
type GraphQLClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewGraphQLClient creates a new GraphQL API client.
// The httpClient should come from domain.NewAuthenticatedClient so the
// bearer credential is attached to every request.
func NewGraphQLClient(endpoint string, httpClient *http.Client) *GraphQLClient {
	return &GraphQLClient{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// Endpoint returns the configured backend URL.
func (c *GraphQLClient) Endpoint() string {
	return c.endpoint
}

// Do executes an HTTP request with the JSON headers set.
func (c *GraphQLClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// Execute POSTs the document and decodes the GraphQL response envelope.
// Non-2xx statuses come back as domain.HTTPError.
func (c *GraphQLClient) Execute(ctx context.Context, gqlReq *domain.GraphQLRequest) (*domain.GraphQLResponse, error) {
	body, err := json.Marshal(gqlReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, domain.NewHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode), string(errBody))
	}

	var gqlResp domain.GraphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &gqlResp, nil
}

// Introspect runs the standard introspection query and builds the schema description.
func (c *GraphQLClient) Introspect(ctx context.Context) (*domain.SchemaDescription, error) {
	resp, err := c.Execute(ctx, &domain.GraphQLRequest{Query: domain.IntrospectionQuery})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema: %w", err)
	}

	if len(resp.Errors) > 0 {
		encoded, _ := json.Marshal(resp.Errors)
		return nil, fmt.Errorf("GraphQL introspection query failed: %s", encoded)
	}

	// Re-assemble the data object so ParseIntrospection sees {"__schema": ...}
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode introspection data: %w", err)
	}

	schema, err := domain.ParseIntrospection(data)
	if err != nil {
		return nil, err
	}

	return schema, nil
}
