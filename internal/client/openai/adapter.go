package openaiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
)

// Groq reports tool calls it could not parse with this code.
const codeToolUseFailed = "tool_use_failed"

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Adapter talks to any OpenAI compatible chat completions endpoint.
type Adapter struct {
	client chatCompleter
	model  string
	log    *slog.Logger
}

func NewAdapter(log *slog.Logger, apiKey, baseURL, model string) *Adapter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Adapter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log,
	}
}

func (a *Adapter) GenerateContent(ctx context.Context, req dto.ModelRequest) (dto.ModelResponse, error) {
	out := dto.ModelResponse{}

	modelName := req.Model
	if modelName == "" {
		modelName = a.model
	}
	if modelName == "" {
		return out, fmt.Errorf("openai model is required")
	}

	messages, err := toChatMessages(req.System, req.Messages)
	if err != nil {
		return out, err
	}
	if len(messages) == 0 {
		return out, fmt.Errorf("openai request has no content")
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    modelName,
		Messages: messages,
		Tools:    toOpenAITools(req.Tools),
	}
	if req.Temperature != nil {
		chatReq.Temperature = *req.Temperature
	}
	if req.MaxOutputTokens != nil {
		chatReq.MaxTokens = int(*req.MaxOutputTokens)
	}

	resp, err := a.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && fmt.Sprint(apiErr.Code) == codeToolUseFailed {
			return out, errs.NewMalformedFunctionCallError()
		}
		return out, err
	}
	if len(resp.Choices) == 0 {
		return out, fmt.Errorf("openai returned no choices")
	}

	msg := resp.Choices[0].Message
	out.Raw = resp
	out.Text = msg.Content
	for _, call := range msg.ToolCalls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				if a.log != nil {
					a.log.Warn("model sent unparsable tool arguments", "tool", call.Function.Name)
				}
				return dto.ModelResponse{}, errs.NewMalformedFunctionCallError()
			}
		}
		out.ToolCalls = append(out.ToolCalls, dto.ModelToolCall{
			ID:   call.ID,
			Name: call.Function.Name,
			Args: args,
		})
	}
	return out, nil
}

func toChatMessages(system string, messages []dto.ModelMessage) ([]openai.ChatCompletionMessage, error) {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, msg := range messages {
		switch msg.Role {
		case dto.ModelRoleUser:
			out = append(out, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: msg.Text,
			})
		case dto.ModelRoleAssistant:
			m := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: msg.Text,
			}
			for _, call := range msg.ToolCalls {
				raw, err := json.Marshal(call.Args)
				if err != nil {
					return nil, err
				}
				m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
					ID:   call.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      call.Name,
						Arguments: string(raw),
					},
				})
			}
			out = append(out, m)
		case dto.ModelRoleTool:
			if msg.ToolResult == nil {
				continue
			}
			raw, err := json.Marshal(msg.ToolResult.Response)
			if err != nil {
				return nil, err
			}
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    string(raw),
				Name:       msg.ToolResult.Name,
				ToolCallID: msg.ToolResult.CallID,
			})
		}
	}
	return out, nil
}

func toOpenAITools(tools []dto.ToolSchema) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  toJSONSchema(tool.Parameters),
			},
		})
	}
	return out
}

func toJSONSchema(s *dto.Schema) map[string]any {
	if s == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	out := map[string]any{"type": s.Type}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Items != nil {
		out["items"] = toJSONSchema(s.Items)
	}
	if s.Type == "object" {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = toJSONSchema(p)
		}
		out["properties"] = props
		if len(s.Required) > 0 {
			out["required"] = s.Required
		}
	}
	return out
}
