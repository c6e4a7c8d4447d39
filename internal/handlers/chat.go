package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/models"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/response"
)

type chatService interface {
	Chat(ctx context.Context, uid string, req dto.ChatRequest) (dto.ChatResponse, error)
	History(ctx context.Context, uid, conversationID string, limit int) ([]models.Message, error)
}

type chatHandlers struct {
	ResponseHandler response.ResponseHandler
	ChatSvc         chatService
}

func NewChatHandlers(deps *Deps) *chatHandlers {
	return &chatHandlers{
		ResponseHandler: deps.ResponseHandler,
		ChatSvc:         deps.ChatSvc,
	}
}

func (h *chatHandlers) ChatRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/chat", h.Chat)
	r.Get("/conversations/{conversationID}/messages", h.Messages)
	return r
}

func (h *chatHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	uid, err := tenant(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	var body dto.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}

	resp, err := h.ChatSvc.Chat(r.Context(), uid, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *chatHandlers) Messages(w http.ResponseWriter, r *http.Request) {
	uid, err := tenant(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("limit must be a positive integer"))
			return
		}
	}

	msgs, err := h.ChatSvc.History(r.Context(), uid, chi.URLParam(r, "conversationID"), limit)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, msgs)
}
