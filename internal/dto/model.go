package dto

const (
	ModelRoleUser      = "user"
	ModelRoleAssistant = "assistant"
	ModelRoleTool      = "tool"
)

// ModelRequest is provider neutral; the vertex and openai adapters translate it.
type ModelRequest struct {
	Model           string
	System          string
	Messages        []ModelMessage
	Tools           []ToolSchema
	Temperature     *float32
	MaxOutputTokens *int32
}

type ModelMessage struct {
	Role       string
	Text       string
	ToolCalls  []ModelToolCall
	ToolResult *ModelToolResult
}

type ModelResponse struct {
	Text      string
	ToolCalls []ModelToolCall
	Raw       any
}

type ModelToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

type ModelToolResult struct {
	CallID   string
	Name     string
	Response map[string]any
}

type ToolSchema struct {
	Name        string
	Description string
	Parameters  *Schema
}

type Schema struct {
	Type        string
	Description string
	Enum        []string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
}
