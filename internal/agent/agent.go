package agent

import (
	"context"
	"time"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/config"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/toolbridge"
)

// Runner executes one conversational turn. Both implementations return the
// same result shape so callers can't tell which one ran.
type Runner interface {
	Run(ctx context.Context, turns []dto.Turn, uid string) (dto.AgentResult, error)
}

type modelClient interface {
	GenerateContent(ctx context.Context, req dto.ModelRequest) (dto.ModelResponse, error)
}

type toolBridge interface {
	WithSession(ctx context.Context, uid string, fn func(toolbridge.ToolSession) error) error
}

type toolExecutor interface {
	Execute(ctx context.Context, uid, name string, args map[string]any) dto.ToolResult
}

const (
	ModeModel    = "model"
	ModeFallback = "fallback"
)

// New picks the runner once for the life of the process.
func New(cfg *config.Config, model modelClient, bridge toolBridge, exec toolExecutor) (Runner, string) {
	if cfg.HasModelCredential() && model != nil && bridge != nil {
		return NewModelRunner(model, bridge, cfg.AgentTimeout), ModeModel
	}
	return NewFallbackRunner(exec), ModeFallback
}

func lastUserText(turns []dto.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == dto.ModelRoleUser {
			return turns[i].Content
		}
	}
	return ""
}

const defaultTimeout = 60 * time.Second
