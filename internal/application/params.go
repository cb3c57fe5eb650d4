package application

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nfishel48/conduit/internal/domain"
)

// parseToolRequest decodes tools/call params into a ToolRequest.
// Returns an InvalidParams error when params are missing or malformed.
func parseToolRequest(params json.RawMessage) (*domain.ToolRequest, error) {
	if len(bytes.TrimSpace(params)) == 0 || bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		return nil, &domain.Error{
			Code:    domain.InvalidParams,
			Message: "Invalid params",
			Data:    "params is required for tools/call",
		}
	}

	var toolReq domain.ToolRequest
	if err := json.Unmarshal(params, &toolReq); err != nil {
		return nil, &domain.Error{
			Code:    domain.InvalidParams,
			Message: "Invalid params",
			Data:    fmt.Sprintf("failed to decode tool request: %v", err),
		}
	}

	if toolReq.Name == "" {
		return nil, &domain.Error{
			Code:    domain.InvalidParams,
			Message: "Invalid params",
			Data:    "tool name is required",
		}
	}

	if toolReq.Arguments == nil {
		toolReq.Arguments = make(map[string]interface{})
	}

	return &toolReq, nil
}

// requestID pulls the id out of a message that failed to decode as a
// Request, so envelope errors can still echo it. Returns nil if absent.
func requestID(body []byte) json.RawMessage {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil
	}
	return probe.ID
}
