package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/bootstrap"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/config"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/tools"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/toolserver"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

// tasktools serves the task tools over stdio for a single user. The chat
// API starts one process per tool session.
func main() {
	cfg := config.New()
	bs, err := bootstrap.RunToolServer(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	uid := os.Getenv(toolserver.UserIDEnv)
	if uid == "" {
		exitOnError("tool server start failed", errors.New(toolserver.UserIDEnv+" is not set"), bs.Log)
	}
	log := bs.Log.With("uid", uid)

	srv := toolserver.New(tools.NewExecutor(bs.Tasks), uid, log)
	err = server.ServeStdio(srv)
	exitOnError("tool server stopped", err, log)
}
