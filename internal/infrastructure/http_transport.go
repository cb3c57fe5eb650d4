package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nfishel48/conduit/internal/domain"
)

// maxMessageBytes bounds a single inbound JSON-RPC message.
const maxMessageBytes = 4 << 20

// HTTPTransport implements domain.Transport over plain request/response HTTP.
// Each POST to the message path carries one JSON-RPC message; the response
// body carries its answer, or is empty with 202 Accepted for notifications.
type HTTPTransport struct {
	config HTTPTransportConfig
	logger *zap.Logger
	routes []route

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	closed   bool
	done     chan struct{}
}

// HTTPTransportConfig is the listener configuration.
type HTTPTransportConfig struct {
	Host string
	Port int
	Path string
}

type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(config HTTPTransportConfig, logger *zap.Logger) *HTTPTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPTransport{
		config: config,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Handle registers an additional endpoint, such as metrics or health.
// It must be called before Start.
func (t *HTTPTransport) Handle(method, path string, handler http.Handler) {
	t.HandleFunc(method, path, gin.WrapH(handler))
}

// HandleFunc registers an additional gin endpoint. It must be called before Start.
func (t *HTTPTransport) HandleFunc(method, path string, handler gin.HandlerFunc) {
	t.routes = append(t.routes, route{method: method, path: path, handler: handler})
}

// Routes builds the gin engine serving handler on the message path.
func (t *HTTPTransport) Routes(handler domain.MessageHandler) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), t.accessLog())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Length", "Content-Type", "Accept", "Authorization", domain.SessionHeader},
		ExposeHeaders:   []string{domain.SessionHeader},
		MaxAge:          12 * time.Hour,
	}))

	engine.POST(t.config.Path, t.handleMessage(handler))

	for _, r := range t.routes {
		engine.Handle(r.method, r.path, r.handler)
	}

	return engine
}

// handleMessage hands the raw body to the message handler.
func (t *HTTPTransport) handleMessage(handler domain.MessageHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxMessageBytes))
		if err != nil {
			t.logger.Warn("failed to read request body", zap.Error(err))
			// An unreadable body is answered like malformed JSON
			body = nil
		}

		response := handler.HandleMessage(c.Request.Context(), c.GetHeader(domain.SessionHeader), body)
		if response == nil {
			c.Status(http.StatusAccepted)
			return
		}

		if response.SessionID != "" {
			c.Header(domain.SessionHeader, response.SessionID)
		}
		c.JSON(http.StatusOK, response)
	}
}

// accessLog logs each request through zap.
func (t *HTTPTransport) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		t.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("remote", c.ClientIP()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Start binds the listener and serves in the background.
// Bind failures are returned synchronously.
func (t *HTTPTransport) Start(ctx context.Context, handler domain.MessageHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transport is closed")
	}

	addr := net.JoinHostPort(t.config.Host, fmt.Sprintf("%d", t.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	t.listener = listener
	t.server = &http.Server{
		Handler:           t.Routes(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		defer close(t.done)
		if err := t.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			t.logger.Error("http server stopped", zap.Error(err))
		}
	}()

	// Monitor context for cancellation
	go func() {
		select {
		case <-ctx.Done():
			_ = t.Close()
		case <-t.done:
		}
	}()

	t.logger.Info("http transport listening", zap.String("addr", listener.Addr().String()), zap.String("path", t.config.Path))
	return nil
}

// Addr returns the bound address, or nil before Start.
func (t *HTTPTransport) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

// Done is closed when the server stops serving.
func (t *HTTPTransport) Done() <-chan struct{} {
	return t.done
}

// Close gracefully shuts down the HTTP server.
func (t *HTTPTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	server := t.server
	t.mu.Unlock()

	if server == nil {
		close(t.done)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
