package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nfishel48/conduit/internal/domain"
)

// ToolExecutor runs compiled tools against the GraphQL backend.
// Every call is a single round trip: no retries, no caching.
type ToolExecutor struct {
	client  domain.GraphQLClient
	mapper  domain.ResponseMapper
	logger  *zap.Logger
	metrics *Metrics
}

// NewToolExecutor creates a new ToolExecutor instance.
func NewToolExecutor(client domain.GraphQLClient, mapper domain.ResponseMapper, logger *zap.Logger, metrics *Metrics) *ToolExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToolExecutor{
		client:  client,
		mapper:  mapper,
		logger:  logger,
		metrics: metrics,
	}
}

// Execute builds the document for field, sends it with args as variables
// and wraps data[field.Name] as the tool result.
// Failures are returned as *domain.ExecutionError.
func (e *ToolExecutor) Execute(ctx context.Context, kind domain.OperationKind, field domain.FieldDescriptor, args map[string]interface{}) (*domain.ToolResponse, error) {
	if args == nil {
		args = make(map[string]interface{})
	}

	document := domain.BuildDocument(kind, field)
	e.logger.Debug("executing tool",
		zap.String("tool", field.Name),
		zap.String("operation", string(kind)),
		zap.Strings("arguments", argumentNames(args)))

	start := time.Now()
	resp, err := e.client.Execute(ctx, &domain.GraphQLRequest{
		Query:     document,
		Variables: args,
	})
	elapsed := time.Since(start)

	if err != nil {
		e.metrics.ObserveToolCall(field.Name, OutcomeTransportError, elapsed)
		e.logger.Error("tool request failed", zap.String("tool", field.Name), zap.Error(err))
		return nil, &domain.ExecutionError{
			Tool:    field.Name,
			Message: transportMessage(err),
			Err:     err,
		}
	}

	if len(resp.Errors) > 0 {
		e.metrics.ObserveToolCall(field.Name, OutcomeGraphQLError, elapsed)
		e.logger.Warn("backend returned errors",
			zap.String("tool", field.Name),
			zap.Int("errors", len(resp.Errors)),
			zap.String("first", resp.Errors[0].Message))
		return nil, &domain.ExecutionError{
			Tool:    field.Name,
			Message: fmt.Sprintf("API Error: %s", resp.Errors[0].Message),
		}
	}

	// A missing key yields a nil payload, rendered as a block without text
	payload := resp.Data[field.Name]

	result, err := e.mapper.MapToToolResponse(payload)
	if err != nil {
		e.metrics.ObserveToolCall(field.Name, OutcomeTransportError, elapsed)
		return nil, &domain.ExecutionError{
			Tool:    field.Name,
			Message: err.Error(),
			Err:     err,
		}
	}

	e.metrics.ObserveToolCall(field.Name, OutcomeSuccess, elapsed)
	e.logger.Debug("tool execution succeeded", zap.String("tool", field.Name), zap.Duration("elapsed", elapsed))
	return result, nil
}

// transportMessage keeps the transport's diagnostic text in the client-visible message.
func transportMessage(err error) string {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("GraphQL request failed: %s", httpErr.Error())
	}
	return fmt.Sprintf("GraphQL request failed: %s", err.Error())
}

func argumentNames(args map[string]interface{}) []string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	return names
}
