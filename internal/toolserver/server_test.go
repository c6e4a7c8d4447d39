package toolserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/tools"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/helpers"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/logger"
)

type call struct {
	uid  string
	name string
	args map[string]any
}

type fakeExecutor struct {
	calls  []call
	result dto.ToolResult
}

func (f *fakeExecutor) Execute(ctx context.Context, uid, name string, args map[string]any) dto.ToolResult {
	f.calls = append(f.calls, call{uid: uid, name: name, args: args})
	return f.result
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func decodeResult(t *testing.T, res *mcp.CallToolResult) dto.ToolResult {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	var out dto.ToolResult
	if err := json.Unmarshal([]byte(text.Text), &out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return out
}

func TestHandlerBindsTenantAndStripsUserID(t *testing.T) {
	exec := &fakeExecutor{result: dto.ToolResult{Success: true, Data: map[string]any{"id": "t1"}}}
	h := handler(exec, "alice", dto.ToolAddTask, logger.FromContext(helpers.TestCtx()))

	res, err := h(context.Background(), callRequest(dto.ToolAddTask, map[string]any{
		"title":   "Buy milk",
		"user_id": "mallory",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(exec.calls) != 1 || exec.calls[0].uid != "alice" {
		t.Fatalf("expected call as alice, got %+v", exec.calls)
	}
	if _, ok := exec.calls[0].args["user_id"]; ok {
		t.Fatalf("user_id should be stripped")
	}
	if res.IsError {
		t.Fatalf("successful result flagged as error")
	}
	if got := decodeResult(t, res); !got.Success || got.Data["id"] != "t1" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestHandlerFlagsFailedResults(t *testing.T) {
	exec := &fakeExecutor{result: dto.ToolResult{Success: false, Error: "Task not found"}}
	h := handler(exec, "alice", dto.ToolDeleteTask, logger.FromContext(helpers.TestCtx()))

	res, err := h(context.Background(), callRequest(dto.ToolDeleteTask, nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected IsError for failed tool result")
	}
	if got := decodeResult(t, res); got.Error != "Task not found" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestToMCPToolKeepsSchema(t *testing.T) {
	for _, schema := range tools.Schemas() {
		tool := ToMCPTool(schema)
		if tool.Name != schema.Name || tool.InputSchema.Type != "object" {
			t.Fatalf("bad conversion for %s: %+v", schema.Name, tool)
		}
		if _, ok := tool.InputSchema.Properties["user_id"]; ok {
			t.Fatalf("%s exposes user_id", schema.Name)
		}
		if len(tool.InputSchema.Required) != len(schema.Parameters.Required) {
			t.Fatalf("%s lost required fields", schema.Name)
		}
	}
	status := ToMCPTool(tools.Schemas()[1]).InputSchema.Properties["status"].(map[string]any)
	if enum, ok := status["enum"].([]string); !ok || len(enum) != 2 {
		t.Fatalf("status enum lost: %v", status)
	}
}
