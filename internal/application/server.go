package application

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nfishel48/conduit/internal/domain"
)

// Server is the main MCP server implementation.
// It ties a transport to the protocol session that answers its messages.
type Server struct {
	transport domain.Transport
	session   domain.MessageHandler
	config    *domain.Config
	logger    *zap.Logger
}

// NewServer creates a new MCP server instance.
func NewServer(transport domain.Transport, session domain.MessageHandler, config *domain.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		transport: transport,
		session:   session,
		config:    config,
		logger:    logger,
	}
}

// Start begins serving messages on the transport.
func (s *Server) Start(ctx context.Context) error {
	if err := s.transport.Start(ctx, s.session); err != nil {
		s.logger.Error("failed to start transport",
			zap.String("transport_type", s.config.Transport.Type),
			zap.Error(err))
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.logger.Info("server started",
		zap.String("transport_type", s.config.Transport.Type),
		zap.String("graphql_url", s.config.GraphQL.URL))
	return nil
}

// Done is closed when the transport stops serving.
func (s *Server) Done() <-chan struct{} {
	return s.transport.Done()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	s.logger.Info("server shutting down")
	return s.transport.Close()
}

// Bridge is the compiled state of a running bridge.
type Bridge struct {
	Registry *ToolRegistry
	Session  *ProtocolSession
}

// BuildBridge introspects the backend and compiles its root fields into tools.
// Introspection failure is returned, and no session is created.
func BuildBridge(ctx context.Context, client domain.GraphQLClient, logger *zap.Logger, metrics *Metrics) (*Bridge, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("introspecting GraphQL schema", zap.String("endpoint", client.Endpoint()))
	schema, err := client.Introspect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect GraphQL schema: %w", err)
	}

	executor := NewToolExecutor(client, domain.NewResponseMapper(), logger, metrics)
	registry := NewToolCompiler(executor, logger, metrics).Compile(schema)
	session := NewProtocolSession(registry, DefaultIdentity(), NewSessionStore(DefaultMaxSessions), logger, metrics)

	return &Bridge{
		Registry: registry,
		Session:  session,
	}, nil
}

// HealthHandler reports liveness and the number of compiled tools.
func HealthHandler(registry *ToolRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"tools":  registry.Len(),
		})
	}
}
