package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/logger"
)

const replyFallbackFailure = "Sorry, something went wrong while handling that. Please try again."

// fallbackRunner answers from keyword rules and calls at most one tool in
// process. It never returns an error.
type fallbackRunner struct {
	exec toolExecutor
}

func NewFallbackRunner(exec toolExecutor) *fallbackRunner {
	return &fallbackRunner{exec: exec}
}

func (r *fallbackRunner) Run(ctx context.Context, turns []dto.Turn, uid string) (result dto.AgentResult, err error) {
	log := logger.FromContext(ctx)
	defer func() {
		if p := recover(); p != nil {
			log.Error("fallback agent panicked", "panic", fmt.Sprint(p))
			result = dto.AgentResult{Text: replyFallbackFailure, ToolCalls: []dto.ToolCallInfo{}}
			err = nil
		}
	}()

	intent := Classify(lastUserText(turns))
	if intent.Tool == "" {
		return dto.AgentResult{Text: intent.Reply, ToolCalls: []dto.ToolCallInfo{}}, nil
	}

	log.Info("fallback agent calling tool", "tool", intent.Tool)
	res := r.exec.Execute(ctx, uid, intent.Tool, intent.Args)

	return dto.AgentResult{
		Text:      formatToolResult(intent.Tool, res),
		ToolCalls: []dto.ToolCallInfo{{Tool: intent.Tool, Args: intent.Args}},
	}, nil
}

func formatToolResult(tool string, res dto.ToolResult) string {
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "Unknown error"
		}
		return "❌ " + msg
	}

	switch tool {
	case dto.ToolAddTask:
		return fmt.Sprintf("✅ Task created: **%s**", stringField(res.Data, "title", "Untitled"))
	case dto.ToolListTasks:
		return formatTaskList(res.Data)
	case dto.ToolCompleteTask:
		return fmt.Sprintf("✅ Task completed: **%s**", stringField(res.Data, "title", "task"))
	case dto.ToolDeleteTask:
		return fmt.Sprintf("🗑️ Task deleted: **%s**", stringField(res.Data, "title", "task"))
	case dto.ToolUpdateTask:
		return fmt.Sprintf("✏️ Task updated: **%s**", stringField(res.Data, "title", "task"))
	default:
		return fmt.Sprintf("Done! (%s)", tool)
	}
}

func formatTaskList(data map[string]any) string {
	tasks, _ := data["tasks"].([]map[string]any)
	if len(tasks) == 0 {
		return "📋 You don't have any tasks yet. Try \"add task Buy groceries\"!"
	}

	lines := []string{fmt.Sprintf("📋 **Your Tasks** (%d):", len(tasks))}
	for _, t := range tasks {
		mark := "⬜"
		if done, _ := t["completed"].(bool); done {
			mark = "✅"
		}
		id := stringField(t, "id", "?")
		if len(id) > 8 {
			id = id[:8]
		}
		lines = append(lines, fmt.Sprintf("  %s %s (`%s...`)", mark, stringField(t, "title", "Untitled"), id))
	}
	return strings.Join(lines, "\n")
}

func stringField(data map[string]any, key, fallback string) string {
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
