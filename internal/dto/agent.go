package dto

// Turn is one prior or current message handed to the agent runner.
type Turn struct {
	Role    string
	Content string
}

// AgentResult is consumed once by the chat service.
type AgentResult struct {
	Text      string
	ToolCalls []ToolCallInfo
}
