package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultResponseMapper is the default implementation of ResponseMapper.
type DefaultResponseMapper struct{}

// NewResponseMapper creates a new instance of DefaultResponseMapper.
func NewResponseMapper() ResponseMapper {
	return &DefaultResponseMapper{}
}

// MapToToolResponse re-indents the payload with two spaces, keeping the
// backend's key order, and returns it as one text block.
func (m *DefaultResponseMapper) MapToToolResponse(payload json.RawMessage) (*ToolResponse, error) {
	if payload == nil {
		return &ToolResponse{
			Content: []ContentBlock{{Type: "text"}},
		}, nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to format response payload: %w", err)
	}

	return &ToolResponse{
		Content: []ContentBlock{
			{
				Type: "text",
				Text: buf.String(),
			},
		},
	}, nil
}

// MapError converts a tool failure to the JSON-RPC error returned to clients.
func (m *DefaultResponseMapper) MapError(err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrToolNotFound) {
		var notFound *ToolNotFoundError
		name := ""
		if errors.As(err, &notFound) {
			name = notFound.Name
		}
		return &Error{
			Code:    MethodNotFound,
			Message: fmt.Sprintf("Tool not found: %s", name),
		}
	}

	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	message := err.Error()
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		message = execErr.Message
	}
	if message == "" {
		message = "Unknown error"
	}

	return &Error{
		Code:    InternalError,
		Message: fmt.Sprintf("Tool execution failed: %s", message),
	}
}

// ToolNotFoundError names the tool that was not registered.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}

// Unwrap lets errors.Is match ErrToolNotFound.
func (e *ToolNotFoundError) Unwrap() error {
	return ErrToolNotFound
}

// ExecutionError is a failed tool execution. Message is what the client sees.
type ExecutionError struct {
	Tool    string
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	return e.Message
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// HTTPError represents a non-2xx response from the GraphQL backend.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error implements the error interface for HTTPError.
func (e HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Status, e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// NewHTTPError creates a new HTTPError with the given status code and text.
func NewHTTPError(statusCode int, status string, body string) HTTPError {
	return HTTPError{
		StatusCode: statusCode,
		Status:     status,
		Body:       body,
	}
}
