package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/middleware"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	ChatSvc         chatService
	TaskSvc         taskService
	AgentMode       string
}

// tenant returns the authenticated uid, provided it matches the {userID}
// path segment.
func tenant(r *http.Request) (string, error) {
	uid := middleware.UID(r.Context())
	if uid == "" || chi.URLParam(r, "userID") != uid {
		return "", errs.NewForbiddenError("Access denied")
	}
	return uid, nil
}
