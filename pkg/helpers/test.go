package helpers

import (
	"context"
	"log/slog"

	"github.com/AsgharZaheer/todo-app-chatbot/pkg/logger"
)

// TestCtx returns a context carrying a discarding logger.
func TestCtx() context.Context {
	log := slog.New(logger.NewTestHandler(slog.LevelDebug))
	return logger.ToContext(context.Background(), log)
}
