package application

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nfishel48/conduit/internal/domain"
	"github.com/nfishel48/conduit/internal/infrastructure"
)

// userBackend is a GraphQL API with getUser and createUser.
type userBackend struct {
	*httptest.Server

	mu        sync.Mutex
	documents []string
	auth      []string
	reply     string
}

func newUserBackend(t *testing.T) *userBackend {
	t.Helper()

	schema, err := os.ReadFile("testdata/scenario_schema.json")
	require.NoError(t, err)

	b := &userBackend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.GraphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		b.mu.Lock()
		b.documents = append(b.documents, req.Query)
		b.auth = append(b.auth, r.Header.Get("Authorization"))
		reply := b.reply
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(req.Query, "__schema") {
			w.Write([]byte(`{"data":` + string(schema) + `}`))
			return
		}
		w.Write([]byte(reply))
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *userBackend) respondWith(body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reply = body
}

func (b *userBackend) lastDocument() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.documents[len(b.documents)-1]
}

// bridgeServer wires the full stack behind an HTTP transport.
type bridgeServer struct {
	*httptest.Server
	backend *userBackend
}

func newBridgeServer(t *testing.T) *bridgeServer {
	t.Helper()

	backend := newUserBackend(t)
	client := infrastructure.NewGraphQLClient(backend.URL, domain.NewAuthenticatedClient("test-token", 0))

	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	bridge, err := BuildBridge(context.Background(), client, zap.NewNop(), metrics)
	require.NoError(t, err)

	transport := infrastructure.NewHTTPTransport(infrastructure.HTTPTransportConfig{Path: "/mcp"}, zap.NewNop())
	transport.HandleFunc(http.MethodGet, "/healthz", HealthHandler(bridge.Registry))
	transport.Handle(http.MethodGet, "/metrics", metrics.Handler())

	server := httptest.NewServer(transport.Routes(bridge.Session))
	t.Cleanup(server.Close)

	return &bridgeServer{Server: server, backend: backend}
}

func (s *bridgeServer) call(t *testing.T, session string, body string) (*http.Response, decoded) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, s.URL+"/mcp", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(domain.SessionHeader, session)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data := drain(t, resp)

	var d decoded
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &d), string(data))
	}
	return resp, d
}

func (s *bridgeServer) handshake(t *testing.T) string {
	t.Helper()
	resp, d := s.call(t, "", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`)
	require.Nil(t, d.Error)
	session := resp.Header.Get(domain.SessionHeader)
	require.NotEmpty(t, session)

	resp, _ = s.call(t, session, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	return session
}

func TestIntegration_ToolsList(t *testing.T) {
	server := newBridgeServer(t)
	session := server.handshake(t)

	_, d := server.call(t, session, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Nil(t, d.Error)

	var result struct {
		Tools []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			InputSchema struct {
				Type       string                     `json:"type"`
				Properties map[string]json.RawMessage `json:"properties"`
				Required   []string                   `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(d.Result, &result))

	require.Len(t, result.Tools, 2)
	assert.Equal(t, "getUser", result.Tools[0].Name)
	assert.Equal(t, "createUser", result.Tools[1].Name)

	for _, tool := range result.Tools {
		assert.NotEmpty(t, tool.Description)
		assert.Equal(t, "object", tool.InputSchema.Type)
	}
	assert.Equal(t, []string{"id"}, result.Tools[0].InputSchema.Required)
	assert.Contains(t, result.Tools[0].InputSchema.Properties, "id")
	assert.Equal(t, []string{"name"}, result.Tools[1].InputSchema.Required)
	assert.Contains(t, result.Tools[1].InputSchema.Properties, "name")
}

func TestIntegration_CreateUser(t *testing.T) {
	server := newBridgeServer(t)
	session := server.handshake(t)
	server.backend.respondWith(`{"data":{"createUser":{"id":"user-123","name":"Jane Doe"}}}`)

	_, d := server.call(t, session, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"createUser","arguments":{"name":"Jane Doe"}}}`)
	require.Nil(t, d.Error)

	var result domain.ToolResponse
	require.NoError(t, json.Unmarshal(d.Result, &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)

	var user map[string]string
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &user))
	assert.Equal(t, map[string]string{"id": "user-123", "name": "Jane Doe"}, user)

	document := server.backend.lastDocument()
	assert.Contains(t, document, "mutation")
	assert.Contains(t, document, "$name: String!")

	for _, auth := range server.backend.auth {
		assert.Equal(t, "Bearer test-token", auth)
	}
}

func TestIntegration_BackendError(t *testing.T) {
	server := newBridgeServer(t)
	session := server.handshake(t)
	server.backend.respondWith(`{"errors":[{"message":"User already exists"}]}`)

	_, d := server.call(t, session, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"createUser","arguments":{"name":"Jane Doe"}}}`)
	require.NotNil(t, d.Error)
	assert.Equal(t, domain.InternalError, d.Error.Code)
	assert.Contains(t, d.Error.Message, "User already exists")
}

func TestIntegration_UnknownTool(t *testing.T) {
	server := newBridgeServer(t)
	session := server.handshake(t)

	_, d := server.call(t, session, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"nonExistentTool","arguments":{}}}`)
	require.NotNil(t, d.Error)
	assert.Equal(t, domain.MethodNotFound, d.Error.Code)
	assert.Equal(t, "Tool not found: nonExistentTool", d.Error.Message)
}

func TestIntegration_MissingJSONRPC(t *testing.T) {
	server := newBridgeServer(t)

	resp, d := server.call(t, "", `{"id":6,"method":"tools/list"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, d.Error)
	assert.Equal(t, domain.InvalidRequest, d.Error.Code)
	assert.Equal(t, "6", string(d.ID))

	_, d = server.call(t, "", `{"method":"tools/list"}`)
	require.NotNil(t, d.Error)
	assert.Equal(t, domain.InvalidRequest, d.Error.Code)
	assert.Equal(t, "null", string(d.ID))
}

func TestIntegration_HeaderlessClient(t *testing.T) {
	server := newBridgeServer(t)

	_, d := server.call(t, "", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.NotNil(t, d.Error)
	assert.Equal(t, domain.ServerNotInitialized, d.Error.Code)

	_, d = server.call(t, "", `{"jsonrpc":"2.0","id":2,"method":"initialize"}`)
	require.Nil(t, d.Error)

	_, d = server.call(t, "", `{"jsonrpc":"2.0","id":3,"method":"tools/list"}`)
	assert.Nil(t, d.Error)
}

func TestIntegration_HealthAndMetrics(t *testing.T) {
	server := newBridgeServer(t)
	session := server.handshake(t)
	server.backend.respondWith(`{"data":{"getUser":{"id":"1","name":"Ada"}}}`)
	server.call(t, session, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"getUser","arguments":{"id":"1"}}}`)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","tools":2}`, string(drain(t, resp)))

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	body := string(drain(t, resp))
	assert.Contains(t, body, `conduit_registered_tools 2`)
	assert.Contains(t, body, `conduit_tool_calls_total{outcome="success",tool="getUser"} 1`)
	assert.Contains(t, body, `conduit_jsonrpc_requests_total{code="0",method="initialize"} 1`)
}
