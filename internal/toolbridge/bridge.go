package toolbridge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/toolserver"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/logger"
)

const serviceName = "tool server"

// ToolSession is a live connection to a tool server bound to one tenant.
type ToolSession interface {
	Tools() []dto.ToolSchema
	Call(ctx context.Context, name string, args map[string]any) (dto.ToolResult, error)
}

type mcpClient interface {
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

type Bridge struct {
	connect func(ctx context.Context, uid string) (mcpClient, error)
}

// New returns a bridge that spawns command (split on whitespace) as an MCP
// stdio server for every session. The child inherits the process environment
// plus the tenant variable.
func New(command string) *Bridge {
	return &Bridge{connect: stdioConnector(command)}
}

func stdioConnector(command string) func(context.Context, string) (mcpClient, error) {
	return func(ctx context.Context, uid string) (mcpClient, error) {
		parts := strings.Fields(command)
		if len(parts) == 0 {
			return nil, errors.New("tool server command is empty")
		}
		env := []string{toolserver.UserIDEnv + "=" + uid}
		return client.NewStdioMCPClient(parts[0], env, parts[1:]...)
	}
}

// WithSession starts a tool server for uid, runs fn against it and shuts the
// server down on every exit path. Errors from fn are returned unchanged.
func (b *Bridge) WithSession(ctx context.Context, uid string, fn func(ToolSession) error) error {
	log := logger.FromContext(ctx)

	c, err := b.connect(ctx, uid)
	if err != nil {
		return errs.NewExternalServiceError(serviceName, "failed to start tool server", true, err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn("tool server close failed", "error", err)
		}
	}()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "todo-chat-agent", Version: toolserver.Version}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		return errs.NewExternalServiceError(serviceName, "failed to initialize tool server", true, err)
	}

	listed, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return errs.NewExternalServiceError(serviceName, "failed to list tools", true, err)
	}
	schemas := make([]dto.ToolSchema, 0, len(listed.Tools))
	for _, t := range listed.Tools {
		schemas = append(schemas, toSchema(t))
	}
	log.Debug("tool session started", "tools", len(schemas))

	return fn(&session{client: c, tools: schemas})
}

type session struct {
	client mcpClient
	tools  []dto.ToolSchema
}

func (s *session) Tools() []dto.ToolSchema {
	return s.tools
}

// Call forwards a tool call. Tool failures are part of the result; only
// transport problems come back as errors.
func (s *session) Call(ctx context.Context, name string, args map[string]any) (dto.ToolResult, error) {
	clean := make(map[string]any, len(args))
	for k, v := range args {
		if k == "user_id" {
			continue
		}
		clean[k] = v
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = clean

	res, err := s.client.CallTool(ctx, req)
	if err != nil {
		return dto.ToolResult{}, errs.NewExternalServiceError(serviceName, "tool call failed", true, err)
	}
	return decodeResult(res), nil
}

func decodeResult(res *mcp.CallToolResult) dto.ToolResult {
	text := resultText(res)
	var out dto.ToolResult
	if err := json.Unmarshal([]byte(text), &out); err == nil && (out.Success || out.Error != "") {
		return out
	}
	if res.IsError {
		if text == "" {
			text = "Tool call failed"
		}
		return dto.ToolResult{Success: false, Error: text}
	}
	return dto.ToolResult{Success: true, Data: map[string]any{"result": text}}
}

func resultText(res *mcp.CallToolResult) string {
	var b strings.Builder
	for _, c := range res.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			b.WriteString(tc.Text)
		case *mcp.TextContent:
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func toSchema(t mcp.Tool) dto.ToolSchema {
	params := &dto.Schema{
		Type:       "object",
		Properties: map[string]*dto.Schema{},
		Required:   t.InputSchema.Required,
	}
	for name, raw := range t.InputSchema.Properties {
		if name == "user_id" {
			continue
		}
		if prop, ok := raw.(map[string]any); ok {
			params.Properties[name] = schemaFromMap(prop)
		}
	}
	return dto.ToolSchema{Name: t.Name, Description: t.Description, Parameters: params}
}

func schemaFromMap(m map[string]any) *dto.Schema {
	s := &dto.Schema{}
	s.Type, _ = m["type"].(string)
	s.Description, _ = m["description"].(string)
	switch enum := m["enum"].(type) {
	case []string:
		s.Enum = enum
	case []any:
		for _, v := range enum {
			if str, ok := v.(string); ok {
				s.Enum = append(s.Enum, str)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = schemaFromMap(items)
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = map[string]*dto.Schema{}
		for name, raw := range props {
			if p, ok := raw.(map[string]any); ok {
				s.Properties[name] = schemaFromMap(p)
			}
		}
	}
	return s
}
