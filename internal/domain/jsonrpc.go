package domain

import (
	"encoding/json"
)

// JSONRPCVersion is the only protocol version accepted on the envelope.
const JSONRPCVersion = "2.0"

// Request represents a JSON-RPC 2.0 request message.
// A request without an ID is a notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"` // Must be "2.0"
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no ID.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0 || string(r.ID) == "null"
}

// Response represents a JSON-RPC 2.0 response message.
// The ID is always serialized; a nil ID renders as null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"` // Must be "2.0"
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`

	// SessionID is set by the session when a new session was opened.
	// Transports that support sessions surface it out of band.
	SessionID string `json:"-"`
}

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	return e.Message
}

// JSON-RPC 2.0 error codes
const (
	// Standard JSON-RPC 2.0 error codes
	ParseError     = -32700 // Invalid JSON received
	InvalidRequest = -32600 // Invalid JSON-RPC request structure
	MethodNotFound = -32601 // Unknown MCP method or tool
	InvalidParams  = -32602 // Invalid method parameters
	InternalError  = -32603 // Server internal error or tool execution failure

	// Application-specific error codes
	ServerNotInitialized = -32002 // Method called before initialize
)

// NewResult builds a successful response for the given request ID.
func NewResult(id json.RawMessage, result interface{}) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse builds an error response for the given request ID.
func NewErrorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	}
}
