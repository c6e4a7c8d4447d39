package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/agent"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/bootstrap"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/config"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/handlers"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/middleware"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/response"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/router"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/services"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/toolbridge"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/tools"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// agent
	executor := tools.NewExecutor(bs.Tasks)
	bridge := toolbridge.New(cfg.ToolServerCommand)
	runner, mode := agent.New(cfg, bs.Model, bridge, executor)
	bs.Log.Info("agent ready", "mode", mode, "provider", cfg.ModelProvider)

	// services
	chatSvc := services.NewChatService(bs.Conversations, runner)
	taskSvc := services.NewTaskService(bs.Tasks)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.ChatSvc = chatSvc
	deps.TaskSvc = taskSvc
	deps.AgentMode = mode

	// router
	r := router.NewRouter(deps, middleware.NewMiddleware(bs.Firebase))
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
