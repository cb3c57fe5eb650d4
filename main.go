package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nfishel48/conduit/internal/application"
	"github.com/nfishel48/conduit/internal/domain"
	"github.com/nfishel48/conduit/internal/infrastructure"
)

// options holds the parsed command line.
type options struct {
	configPath string
	overrides  domain.Overrides
}

// parseFlags reads the command line. Flags override file and environment values.
func parseFlags(args []string) (*options, error) {
	fs := pflag.NewFlagSet("conduit", pflag.ContinueOnError)

	opts := &options{}
	fs.StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (.yaml, .yml or .toml)")
	fs.IntVarP(&opts.overrides.Port, "port", "p", 0, "HTTP listen port (overrides PORT)")
	fs.StringVar(&opts.overrides.GraphQLURL, "graphql-url", "", "GraphQL endpoint to proxy (overrides GRAPHQL_API_URL)")
	fs.StringVar(&opts.overrides.Token, "token", "", "Bearer token sent to the GraphQL endpoint (overrides API_AUTH_TOKEN)")
	fs.StringVarP(&opts.overrides.Transport, "transport", "t", "", "Transport type: http or stdio")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// newTransport selects the transport named by the configuration.
// The HTTP transport also serves health and, when enabled, metrics.
func newTransport(config *domain.Config, bridge *application.Bridge, metrics *application.Metrics, logger *zap.Logger) (domain.Transport, error) {
	switch config.Transport.Type {
	case "stdio":
		return domain.NewStdioTransport(), nil
	case "http":
		transport := infrastructure.NewHTTPTransport(infrastructure.HTTPTransportConfig{
			Host: config.Transport.HTTP.Host,
			Port: config.Transport.HTTP.Port,
			Path: config.Transport.HTTP.Path,
		}, logger)
		transport.HandleFunc(http.MethodGet, "/healthz", application.HealthHandler(bridge.Registry))
		if config.Metrics.Enabled && metrics != nil {
			transport.Handle(http.MethodGet, config.Metrics.Path, metrics.Handler())
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("invalid transport type: %s", config.Transport.Type)
	}
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		os.Exit(2)
	}

	config, err := domain.LoadConfig(opts.configPath, opts.overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := application.NewLogger(config.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(gin.ReleaseMode)

	registry := prometheus.NewRegistry()
	metrics, err := application.NewMetrics(registry)
	if err != nil {
		logger.Fatal("Failed to register metrics", zap.Error(err))
	}

	timeout := time.Duration(config.GraphQL.TimeoutSeconds) * time.Second
	httpClient := domain.NewAuthenticatedClient(config.GraphQL.Token, timeout)
	client := infrastructure.NewGraphQLClient(config.GraphQL.URL, httpClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A failed introspection aborts startup before any listener binds
	bridge, err := application.BuildBridge(ctx, client, logger, metrics)
	if err != nil {
		logger.Fatal("Failed to build tool registry", zap.Error(err))
	}

	transport, err := newTransport(config, bridge, metrics, logger)
	if err != nil {
		logger.Fatal("Failed to create transport", zap.Error(err))
	}

	server := application.NewServer(transport, bridge.Session, config, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server failed to start", zap.Error(err))
	}

	if config.Transport.Type == "stdio" {
		logger.Info(fmt.Sprintf("MCP server running on stdio, proxying to %s", config.GraphQL.URL))
	} else {
		logger.Info(fmt.Sprintf("MCP server running on http://%s:%d%s, proxying to %s",
			config.Transport.HTTP.Host, config.Transport.HTTP.Port, config.Transport.HTTP.Path, config.GraphQL.URL))
	}

	select {
	case sig := <-sigChan:
		logger.Info("Received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
		cancel()
	case <-server.Done():
		logger.Info("Transport stopped")
	}

	if err := server.Close(); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Server shutdown complete")
}
