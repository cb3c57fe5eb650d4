package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/nfishel48/conduit/internal/domain"
)

// Fixed identity announced on initialize.
const (
	ServerName    = "conduit-graphql-bridge"
	ServerVersion = "1.0.0"
)

// ServerIdentity is the identity and protocol revision echoed by initialize.
type ServerIdentity struct {
	Name            string
	Version         string
	ProtocolVersion string
}

// DefaultIdentity returns the identity of this server build.
func DefaultIdentity() ServerIdentity {
	return ServerIdentity{
		Name:            ServerName,
		Version:         ServerVersion,
		ProtocolVersion: domain.ProtocolVersion,
	}
}

// ProtocolSession is the MCP state machine. It validates each message
// envelope, enforces the initialize handshake per session and dispatches
// to the tool handler. It implements domain.MessageHandler and is safe for
// concurrent use.
type ProtocolSession struct {
	tools    domain.ToolHandler
	identity ServerIdentity
	sessions *SessionStore
	mapper   domain.ResponseMapper
	logger   *zap.Logger
	metrics  *Metrics
}

// NewProtocolSession creates a new ProtocolSession instance.
// A nil sessions store gets a default one.
func NewProtocolSession(tools domain.ToolHandler, identity ServerIdentity, sessions *SessionStore, logger *zap.Logger, metrics *Metrics) *ProtocolSession {
	if sessions == nil {
		sessions = NewSessionStore(DefaultMaxSessions)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProtocolSession{
		tools:    tools,
		identity: identity,
		sessions: sessions,
		mapper:   domain.NewResponseMapper(),
		logger:   logger,
		metrics:  metrics,
	}
}

// Sessions exposes the session store.
func (p *ProtocolSession) Sessions() *SessionStore {
	return p.sessions
}

// HandleMessage processes one raw JSON-RPC message for the given session.
// It returns nil for notifications that need no response.
func (p *ProtocolSession) HandleMessage(ctx context.Context, sessionID string, body []byte) (response *domain.Response) {
	method := ""
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic while handling message",
				zap.String("method", method),
				zap.Any("panic", r),
				zap.Stack("stack"))
			response = domain.NewErrorResponse(requestID(body), domain.InternalError, "Internal server error")
		}
		p.observe(method, response)
	}()

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		p.logger.Warn("received malformed JSON", zap.Int("bytes", len(body)))
		return domain.NewErrorResponse(nil, domain.ParseError, "Parse error")
	}

	var req domain.Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		p.logger.Warn("received invalid request", zap.Error(err))
		return domain.NewErrorResponse(requestID(trimmed), domain.InvalidRequest, "Invalid JSON-RPC request")
	}
	method = req.Method

	if req.JSONRPC != domain.JSONRPCVersion {
		p.logger.Warn("rejected request with bad jsonrpc version",
			zap.String("jsonrpc", req.JSONRPC),
			zap.String("method", req.Method))
		return domain.NewErrorResponse(req.ID, domain.InvalidRequest, "Invalid JSON-RPC request")
	}

	p.logger.Debug("received request",
		zap.String("method", req.Method),
		zap.ByteString("id", req.ID),
		zap.String("session", sessionID))

	return p.dispatch(ctx, sessionID, &req)
}

// dispatch applies the method table in priority order.
func (p *ProtocolSession) dispatch(ctx context.Context, sessionID string, req *domain.Request) *domain.Response {
	switch req.Method {
	case domain.MethodInitialize:
		return p.handleInitialize(sessionID, req)
	case domain.MethodNotificationInitialized:
		return nil
	}

	state := p.sessions.Get(sessionID)
	if state == nil || !state.Initialized() {
		return domain.NewErrorResponse(req.ID, domain.ServerNotInitialized, "Server not initialized")
	}

	switch req.Method {
	case domain.MethodToolsList:
		return domain.NewResult(req.ID, &domain.ToolsListResult{Tools: p.tools.ListTools()})
	case domain.MethodToolsCall:
		return p.handleToolsCall(ctx, req)
	default:
		return domain.NewErrorResponse(req.ID, domain.MethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

// handleInitialize always succeeds. A client without a session id
// initializes the shared default session and is handed a fresh id.
func (p *ProtocolSession) handleInitialize(sessionID string, req *domain.Request) *domain.Response {
	if sessionID == "" {
		p.sessions.Default().MarkInitialized()
	}
	state := p.sessions.Open(sessionID)
	state.MarkInitialized()

	p.logger.Info("session initialized", zap.String("session", state.ID))

	response := domain.NewResult(req.ID, &domain.InitializeResult{
		ProtocolVersion: p.identity.ProtocolVersion,
		Capabilities: domain.ServerCapabilities{
			Tools: domain.ToolsCapability{ListChanged: true},
		},
		ServerInfo: domain.Implementation{
			Name:    p.identity.Name,
			Version: p.identity.Version,
		},
	})
	response.SessionID = state.ID
	return response
}

func (p *ProtocolSession) handleToolsCall(ctx context.Context, req *domain.Request) *domain.Response {
	toolReq, err := parseToolRequest(req.Params)
	if err != nil {
		return &domain.Response{
			JSONRPC: domain.JSONRPCVersion,
			ID:      req.ID,
			Error:   p.mapper.MapError(err),
		}
	}

	result, err := p.tools.Handle(ctx, toolReq)
	if err != nil {
		rpcErr := p.mapper.MapError(err)
		p.logger.Warn("tool call failed",
			zap.String("tool", toolReq.Name),
			zap.Int("code", rpcErr.Code),
			zap.String("message", rpcErr.Message))
		return &domain.Response{
			JSONRPC: domain.JSONRPCVersion,
			ID:      req.ID,
			Error:   rpcErr,
		}
	}

	return domain.NewResult(req.ID, result)
}

func (p *ProtocolSession) observe(method string, response *domain.Response) {
	code := 0
	if response != nil && response.Error != nil {
		code = response.Error.Code
	}
	p.metrics.ObserveRequest(method, code)
}
