package handlers

import (
	"net/http"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/response"
)

type healthHandlers struct {
	ResponseHandler response.ResponseHandler
	AgentMode       string
}

func NewHealthHandlers(deps *Deps) *healthHandlers {
	return &healthHandlers{
		ResponseHandler: deps.ResponseHandler,
		AgentMode:       deps.AgentMode,
	}
}

func (h *healthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{
		"status": "ok",
		"agent":  h.AgentMode,
	})
}
