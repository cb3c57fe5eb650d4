package application

import (
	"context"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/nfishel48/conduit/internal/domain"
)

// ExecuteFunc runs a compiled tool with the caller's arguments.
type ExecuteFunc func(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error)

// ToolDescriptor is one compiled tool.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema *domain.ValidationSchema
	Operation   domain.OperationKind
	Field       domain.FieldDescriptor

	execute ExecuteFunc
}

// Definition returns the tools/list entry of the descriptor.
func (d *ToolDescriptor) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: d.InputSchema,
	}
}

// Execute invokes the bound executor.
func (d *ToolDescriptor) Execute(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	return d.execute(ctx, args)
}

// ToolRegistry dispatches tool calls to compiled tools by name.
// It is filled once by NewToolRegistry and read-only afterwards, so
// concurrent readers need no locking. It implements domain.ToolHandler.
type ToolRegistry struct {
	tools *orderedmap.OrderedMap[string, *ToolDescriptor]
}

// NewToolRegistry registers descriptors in order.
// A name seen twice keeps its first position and its last descriptor.
func NewToolRegistry(descriptors ...*ToolDescriptor) *ToolRegistry {
	tools := orderedmap.New[string, *ToolDescriptor](len(descriptors))
	for _, d := range descriptors {
		tools.Set(d.Name, d)
	}
	return &ToolRegistry{tools: tools}
}

// Handle runs the named tool.
// Returns a *domain.ToolNotFoundError when no tool has that name.
func (r *ToolRegistry) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	tool, exists := r.tools.Get(req.Name)
	if !exists {
		return nil, &domain.ToolNotFoundError{Name: req.Name}
	}

	return tool.Execute(ctx, req.Arguments)
}

// ListTools returns every tool definition in registration order.
// This is used for MCP tool discovery (tools/list method).
func (r *ToolRegistry) ListTools() []domain.ToolDefinition {
	definitions := make([]domain.ToolDefinition, 0, r.tools.Len())
	for pair := r.tools.Oldest(); pair != nil; pair = pair.Next() {
		definitions = append(definitions, pair.Value.Definition())
	}
	return definitions
}

// Lookup returns the descriptor for a tool name.
// This is useful for testing and debugging.
func (r *ToolRegistry) Lookup(name string) (*ToolDescriptor, bool) {
	return r.tools.Get(name)
}

// Len returns the number of registered tools.
func (r *ToolRegistry) Len() int {
	return r.tools.Len()
}
