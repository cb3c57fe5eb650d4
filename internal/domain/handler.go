package domain

import (
	"context"
	"errors"
)

// ErrToolNotFound is returned by a ToolHandler asked to run an unknown tool.
var ErrToolNotFound = errors.New("tool not found")

// ToolHandler exposes a set of tools to the protocol session.
// The compiled GraphQL tool registry is the production implementation.
type ToolHandler interface {
	// Handle executes a tool call.
	// Returns ErrToolNotFound (possibly wrapped) when req.Name is not registered,
	// or an ExecutionError when the tool itself fails.
	Handle(ctx context.Context, req *ToolRequest) (*ToolResponse, error)

	// ListTools returns every tool in registration order.
	ListTools() []ToolDefinition
}

// MessageHandler processes one inbound JSON-RPC message.
// It returns nil when the message needs no response.
type MessageHandler interface {
	HandleMessage(ctx context.Context, sessionID string, body []byte) *Response
}
