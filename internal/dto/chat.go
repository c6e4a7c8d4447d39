package dto

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ChatResponse is identical whichever agent mode produced it.
type ChatResponse struct {
	ConversationID string         `json:"conversationId"`
	Response       string         `json:"response"`
	ToolCalls      []ToolCallInfo `json:"toolCalls"`
}

type ToolCallInfo struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}
