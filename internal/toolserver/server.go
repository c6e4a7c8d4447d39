package toolserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/tools"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/logger"
)

const (
	Name    = "task-tools"
	Version = "1.0.0"

	// UserIDEnv carries the tenant into the tool process.
	UserIDEnv = "TASKTOOLSUSERID"
)

type executor interface {
	Execute(ctx context.Context, uid, name string, args map[string]any) dto.ToolResult
}

// New builds an MCP server whose tools all act for uid. The tenant is fixed
// when the server is built; tool arguments can't change it.
func New(exec executor, uid string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(Name, Version, server.WithToolCapabilities(false))
	for _, schema := range tools.Schemas() {
		s.AddTool(ToMCPTool(schema), handler(exec, uid, schema.Name, log))
	}
	return s
}

func handler(exec executor, uid, name string, log *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = logger.ToContext(ctx, log.With("tool", name))

		args := req.GetArguments()
		delete(args, "user_id")

		result := exec.Execute(ctx, uid, name, args)
		payload, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError("failed to encode tool result"), nil
		}
		out := mcp.NewToolResultText(string(payload))
		out.IsError = !result.Success
		return out, nil
	}
}

// ToMCPTool converts a tool schema to the MCP wire form.
func ToMCPTool(schema dto.ToolSchema) mcp.Tool {
	tool := mcp.Tool{
		Name:        schema.Name,
		Description: schema.Description,
		InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
	}
	if schema.Parameters == nil {
		return tool
	}
	for name, prop := range schema.Parameters.Properties {
		tool.InputSchema.Properties[name] = propertyMap(prop)
	}
	tool.InputSchema.Required = schema.Parameters.Required
	return tool
}

func propertyMap(s *dto.Schema) map[string]any {
	out := map[string]any{"type": s.Type}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Items != nil {
		out["items"] = propertyMap(s.Items)
	}
	if len(s.Properties) > 0 {
		props := map[string]any{}
		for name, p := range s.Properties {
			props[name] = propertyMap(p)
		}
		out["properties"] = props
	}
	return out
}
