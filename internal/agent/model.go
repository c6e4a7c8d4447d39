package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/toolbridge"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/logger"
)

const (
	maxToolRounds = 8

	replyRoundLimit = "I wasn't able to finish that request. Could you break it into smaller steps?"
	replyMalformed  = "I couldn't work out which action to take. Could you rephrase that?"
)

// modelRunner drives a model through tool calls served by a per-request
// tool server session.
type modelRunner struct {
	model   modelClient
	bridge  toolBridge
	timeout time.Duration
}

func NewModelRunner(model modelClient, bridge toolBridge, timeout time.Duration) *modelRunner {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &modelRunner{model: model, bridge: bridge, timeout: timeout}
}

// Run returns an *errs.ExternalServiceError when the model or the tool server
// can't be reached, fails, or the turn runs past the timeout.
func (r *modelRunner) Run(ctx context.Context, turns []dto.Turn, uid string) (dto.AgentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var result dto.AgentResult
	err := r.bridge.WithSession(ctx, uid, func(s toolbridge.ToolSession) error {
		var err error
		result, err = r.loop(ctx, s, turns)
		return err
	})
	if err == nil {
		return result, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return dto.AgentResult{}, errs.NewExternalServiceError("agent", "agent timed out", true, err)
	}
	var ext *errs.ExternalServiceError
	if errors.As(err, &ext) {
		return dto.AgentResult{}, ext
	}
	return dto.AgentResult{}, errs.NewExternalServiceError("agent", "agent run failed", true, err)
}

func (r *modelRunner) loop(ctx context.Context, s toolbridge.ToolSession, turns []dto.Turn) (dto.AgentResult, error) {
	log := logger.FromContext(ctx)

	tools := s.Tools()
	known := make(map[string]bool, len(tools))
	for _, t := range tools {
		known[t.Name] = true
	}

	result := dto.AgentResult{ToolCalls: []dto.ToolCallInfo{}}
	messages := toModelMessages(turns)
	system := systemPrompt()
	retried := false

	for round := 0; round < maxToolRounds; round++ {
		resp, err := r.model.GenerateContent(ctx, dto.ModelRequest{
			System:   system,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			var malformed *errs.MalformedFunctionCallError
			if errors.As(err, &malformed) {
				if retried {
					log.Warn("model sent a malformed function call after retry")
					result.Text = replyMalformed
					return result, nil
				}
				log.Warn("model sent a malformed function call, retrying with strict prompt")
				system = strictSystemPrompt()
				retried = true
				continue
			}
			return dto.AgentResult{}, errs.NewExternalServiceError("model", "model request failed", true, err)
		}

		if len(resp.ToolCalls) == 0 {
			result.Text = resp.Text
			return result, nil
		}

		messages = append(messages, dto.ModelMessage{
			Role:      dto.ModelRoleAssistant,
			Text:      resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			args := withoutTenant(call.Args)

			var toolResult dto.ToolResult
			if known[call.Name] {
				result.ToolCalls = append(result.ToolCalls, dto.ToolCallInfo{Tool: call.Name, Args: args})
				log.Info("executing tool", "tool", call.Name, "round", round)
				toolResult, err = s.Call(ctx, call.Name, args)
				if err != nil {
					return dto.AgentResult{}, err
				}
			} else {
				log.Warn("model requested unknown tool", "tool", call.Name)
				toolResult = dto.ToolResult{Success: false, Error: fmt.Sprintf("Unknown tool: %s", call.Name)}
			}

			payload, err := toMap(toolResult)
			if err != nil {
				return dto.AgentResult{}, err
			}
			messages = append(messages, dto.ModelMessage{
				Role: dto.ModelRoleTool,
				ToolResult: &dto.ModelToolResult{
					CallID:   call.ID,
					Name:     call.Name,
					Response: payload,
				},
			})
		}
	}

	log.Warn("tool round limit reached", "rounds", maxToolRounds)
	result.Text = replyRoundLimit
	return result, nil
}

func toModelMessages(turns []dto.Turn) []dto.ModelMessage {
	out := make([]dto.ModelMessage, 0, len(turns))
	for _, t := range turns {
		role := dto.ModelRoleUser
		if t.Role == dto.ModelRoleAssistant {
			role = dto.ModelRoleAssistant
		}
		out = append(out, dto.ModelMessage{Role: role, Text: t.Content})
	}
	return out
}

func withoutTenant(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if k == "user_id" {
			continue
		}
		out[k] = v
	}
	return out
}

func toMap(value any) (map[string]any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
