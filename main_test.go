package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nfishel48/conduit/internal/application"
	"github.com/nfishel48/conduit/internal/domain"
	"github.com/nfishel48/conduit/internal/infrastructure"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testBridge() *application.Bridge {
	registry := application.NewToolRegistry()
	return &application.Bridge{
		Registry: registry,
		Session:  application.NewProtocolSession(registry, application.DefaultIdentity(), nil, zap.NewNop(), nil),
	}
}

// TestParseFlags tests that every flag lands in the overrides.
func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{
		"-c", "conduit.yaml",
		"--port", "8081",
		"--graphql-url", "https://api.example.com/graphql",
		"--token", "secret",
		"-t", "stdio",
	})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}

	if opts.configPath != "conduit.yaml" {
		t.Errorf("configPath = %s, want conduit.yaml", opts.configPath)
	}
	want := domain.Overrides{
		Transport:  "stdio",
		Port:       8081,
		GraphQLURL: "https://api.example.com/graphql",
		Token:      "secret",
	}
	if opts.overrides != want {
		t.Errorf("overrides = %+v, want %+v", opts.overrides, want)
	}
}

// TestParseFlags_Defaults tests that no flags leave the overrides empty.
func TestParseFlags_Defaults(t *testing.T) {
	opts, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if opts.configPath != "" || opts.overrides != (domain.Overrides{}) {
		t.Errorf("parseFlags(nil) = %+v, want zero options", opts)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		help bool
	}{
		{name: "help", args: []string{"--help"}, help: true},
		{name: "unknown flag", args: []string{"--verbose"}},
		{name: "non-numeric port", args: []string{"--port", "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args)
			if err == nil {
				t.Fatal("parseFlags() error = nil, want error")
			}
			if (err == pflag.ErrHelp) != tt.help {
				t.Errorf("parseFlags() error = %v, help = %v", err, tt.help)
			}
		})
	}
}

// TestNewTransport_Stdio tests transport selection for stdio.
func TestNewTransport_Stdio(t *testing.T) {
	config := domain.DefaultConfig()
	config.Transport.Type = "stdio"

	transport, err := newTransport(config, testBridge(), nil, zap.NewNop())
	if err != nil {
		t.Fatalf("newTransport() error = %v", err)
	}
	if _, ok := transport.(*domain.StdioTransport); !ok {
		t.Errorf("newTransport() = %T, want *domain.StdioTransport", transport)
	}
}

// TestNewTransport_HTTP tests that the HTTP transport serves health and metrics.
func TestNewTransport_HTTP(t *testing.T) {
	metrics, err := application.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	bridge := testBridge()

	transport, err := newTransport(domain.DefaultConfig(), bridge, metrics, zap.NewNop())
	if err != nil {
		t.Fatalf("newTransport() error = %v", err)
	}
	httpTransport, ok := transport.(*infrastructure.HTTPTransport)
	if !ok {
		t.Fatalf("newTransport() = %T, want *infrastructure.HTTPTransport", transport)
	}

	engine := httpTransport.Routes(bridge.Session)
	for _, path := range []string{"/healthz", "/metrics"} {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}

// TestNewTransport_MetricsDisabled tests that the metrics route is optional.
func TestNewTransport_MetricsDisabled(t *testing.T) {
	metrics, err := application.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	config := domain.DefaultConfig()
	config.Metrics.Enabled = false
	bridge := testBridge()

	transport, err := newTransport(config, bridge, metrics, zap.NewNop())
	if err != nil {
		t.Fatalf("newTransport() error = %v", err)
	}

	engine := transport.(*infrastructure.HTTPTransport).Routes(bridge.Session)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /metrics status = %d, want 404", rec.Code)
	}
}

func TestNewTransport_Invalid(t *testing.T) {
	config := domain.DefaultConfig()
	config.Transport.Type = "websocket"

	if _, err := newTransport(config, testBridge(), nil, zap.NewNop()); err == nil {
		t.Error("newTransport() error = nil, want error for unknown transport type")
	}
}
