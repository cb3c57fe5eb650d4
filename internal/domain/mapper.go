package domain

import (
	"encoding/json"
)

// ResponseMapper converts backend payloads to MCP tool responses.
type ResponseMapper interface {
	// MapToToolResponse wraps the value extracted for a field as a single
	// text content block. A nil payload means the field was absent.
	MapToToolResponse(payload json.RawMessage) (*ToolResponse, error)

	// MapError converts a failure of the tool call into the JSON-RPC error
	// returned to the client.
	MapError(err error) *Error
}
