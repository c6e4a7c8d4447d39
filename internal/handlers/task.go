package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/response"
)

type taskService interface {
	List(ctx context.Context, uid string, filter dto.TaskFilter) (dto.TaskListResponse, error)
	Create(ctx context.Context, uid string, req dto.TaskCreateRequest) (dto.TaskView, error)
	Get(ctx context.Context, uid, taskID string) (dto.TaskView, error)
	Update(ctx context.Context, uid, taskID string, req dto.TaskUpdateRequest) (dto.TaskView, error)
	Toggle(ctx context.Context, uid, taskID string) (dto.TaskView, error)
	Delete(ctx context.Context, uid, taskID string) error
}

type taskHandlers struct {
	ResponseHandler response.ResponseHandler
	TaskSvc         taskService
}

func NewTaskHandlers(deps *Deps) *taskHandlers {
	return &taskHandlers{
		ResponseHandler: deps.ResponseHandler,
		TaskSvc:         deps.TaskSvc,
	}
}

func (h *taskHandlers) TaskRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{taskID}", h.Get)
	r.Patch("/{taskID}", h.Update)
	r.Delete("/{taskID}", h.Delete)
	r.Patch("/{taskID}/toggle", h.Toggle)
	return r
}

func (h *taskHandlers) List(w http.ResponseWriter, r *http.Request) {
	uid, err := tenant(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	q := r.URL.Query()
	resp, err := h.TaskSvc.List(r.Context(), uid, dto.TaskFilter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Tag:      q.Get("tag"),
	})
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *taskHandlers) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := tenant(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	var body dto.TaskCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}

	task, err := h.TaskSvc.Create(r.Context(), uid, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, task)
}

func (h *taskHandlers) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := tenant(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	task, err := h.TaskSvc.Get(r.Context(), uid, chi.URLParam(r, "taskID"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, task)
}

func (h *taskHandlers) Update(w http.ResponseWriter, r *http.Request) {
	uid, err := tenant(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	var body dto.TaskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}

	task, err := h.TaskSvc.Update(r.Context(), uid, chi.URLParam(r, "taskID"), body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, task)
}

func (h *taskHandlers) Toggle(w http.ResponseWriter, r *http.Request) {
	uid, err := tenant(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	task, err := h.TaskSvc.Toggle(r.Context(), uid, chi.URLParam(r, "taskID"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, task)
}

func (h *taskHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	uid, err := tenant(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	if err := h.TaskSvc.Delete(r.Context(), uid, chi.URLParam(r, "taskID")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteNoContent(w, r)
}
