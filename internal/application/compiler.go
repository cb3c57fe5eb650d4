package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nfishel48/conduit/internal/domain"
)

// FieldExecutor runs one root field against the backend.
// ToolExecutor is the production implementation.
type FieldExecutor interface {
	Execute(ctx context.Context, kind domain.OperationKind, field domain.FieldDescriptor, args map[string]interface{}) (*domain.ToolResponse, error)
}

// ToolCompiler turns the root fields of an introspected schema into tools.
type ToolCompiler struct {
	executor FieldExecutor
	logger   *zap.Logger
	metrics  *Metrics
}

// NewToolCompiler creates a new ToolCompiler instance.
func NewToolCompiler(executor FieldExecutor, logger *zap.Logger, metrics *Metrics) *ToolCompiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToolCompiler{
		executor: executor,
		logger:   logger,
		metrics:  metrics,
	}
}

// Compile registers one tool per query field, then one per mutation field,
// in schema order. A mutation sharing a query's name replaces it.
func (c *ToolCompiler) Compile(schema *domain.SchemaDescription) *ToolRegistry {
	var descriptors []*ToolDescriptor
	seen := make(map[string]domain.OperationKind)

	roots := []struct {
		kind domain.OperationKind
		root *domain.RootType
	}{
		{domain.QueryOperation, schema.QueryType},
		{domain.MutationOperation, schema.MutationType},
	}

	for _, r := range roots {
		if r.root == nil {
			continue
		}
		for _, field := range r.root.Fields {
			c.logger.Info(fmt.Sprintf("Registering %s: %s", r.kind, field.Name))

			if previous, exists := seen[field.Name]; exists {
				c.logger.Warn("tool name collision, later field replaces earlier",
					zap.String("tool", field.Name),
					zap.String("replaced", string(previous)),
					zap.String("by", string(r.kind)))
			}
			seen[field.Name] = r.kind

			descriptors = append(descriptors, c.compileField(r.kind, field))
		}
	}

	registry := NewToolRegistry(descriptors...)
	c.metrics.SetRegisteredTools(registry.Len())
	c.logger.Info("tool registry compiled", zap.Int("tools", registry.Len()))
	return registry
}

func (c *ToolCompiler) compileField(kind domain.OperationKind, field domain.FieldDescriptor) *ToolDescriptor {
	executor := c.executor
	return &ToolDescriptor{
		Name:        field.Name,
		Description: ToolDescription(field, kind),
		InputSchema: BuildInputSchema(field),
		Operation:   kind,
		Field:       field,
		execute: func(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
			return executor.Execute(ctx, kind, field, args)
		},
	}
}

// BuildInputSchema maps every argument of field into an object schema.
// Required-ness comes from the outer NonNull wrapper, which the mapping drops.
func BuildInputSchema(field domain.FieldDescriptor) *domain.ValidationSchema {
	schema := domain.NewObjectSchema()
	for _, arg := range field.Args {
		schema.Properties.Set(arg.Name, domain.ToValidationSchema(arg.Type))
		if arg.Type.IsNonNull() {
			schema.Required = append(schema.Required, arg.Name)
		}
	}
	return schema
}

// ToolDescription returns the field's own description or a generated one.
func ToolDescription(field domain.FieldDescriptor, kind domain.OperationKind) string {
	if field.Description != "" {
		return field.Description
	}
	return fmt.Sprintf("Executes the %s %s.", field.Name, kind)
}
