package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/middleware"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/models"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/response"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/logger"
)

type stubChatService struct {
	called  bool
	uid     string
	req     dto.ChatRequest
	resp    dto.ChatResponse
	history []models.Message
	limit   int
	err     error
}

func (s *stubChatService) Chat(ctx context.Context, uid string, req dto.ChatRequest) (dto.ChatResponse, error) {
	s.called = true
	s.uid = uid
	s.req = req
	return s.resp, s.err
}

func (s *stubChatService) History(ctx context.Context, uid, conversationID string, limit int) ([]models.Message, error) {
	s.called = true
	s.uid = uid
	s.limit = limit
	return s.history, s.err
}

type stubTaskService struct {
	calls   []string
	taskID  string
	created dto.TaskCreateRequest
	err     error
}

func (s *stubTaskService) List(ctx context.Context, uid string, filter dto.TaskFilter) (dto.TaskListResponse, error) {
	s.calls = append(s.calls, "list:"+filter.Status)
	return dto.TaskListResponse{Tasks: []dto.TaskView{}}, s.err
}

func (s *stubTaskService) Create(ctx context.Context, uid string, req dto.TaskCreateRequest) (dto.TaskView, error) {
	s.calls = append(s.calls, "create")
	s.created = req
	return dto.TaskView{ID: "t1", Title: req.Title}, s.err
}

func (s *stubTaskService) Get(ctx context.Context, uid, taskID string) (dto.TaskView, error) {
	s.calls = append(s.calls, "get")
	s.taskID = taskID
	return dto.TaskView{ID: taskID}, s.err
}

func (s *stubTaskService) Update(ctx context.Context, uid, taskID string, req dto.TaskUpdateRequest) (dto.TaskView, error) {
	s.calls = append(s.calls, "update")
	s.taskID = taskID
	return dto.TaskView{ID: taskID}, s.err
}

func (s *stubTaskService) Toggle(ctx context.Context, uid, taskID string) (dto.TaskView, error) {
	s.calls = append(s.calls, "toggle")
	s.taskID = taskID
	return dto.TaskView{ID: taskID, Completed: true}, s.err
}

func (s *stubTaskService) Delete(ctx context.Context, uid, taskID string) error {
	s.calls = append(s.calls, "delete")
	s.taskID = taskID
	return s.err
}

func testRouter(deps *Deps) http.Handler {
	log := slog.New(logger.NewTestHandler(slog.LevelInfo))
	deps.ResponseHandler = response.New(log)

	r := chi.NewRouter()
	r.Route("/api/{userID}", func(r chi.Router) {
		r.Mount("/", NewChatHandlers(deps).ChatRoutes())
		r.Mount("/tasks", NewTaskHandlers(deps).TaskRoutes())
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, uid, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	ctx := logger.ToContext(req.Context(), slog.New(logger.NewTestHandler(slog.LevelInfo)))
	if uid != "" {
		ctx = context.WithValue(ctx, middleware.UIDKey, uid)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req.WithContext(ctx))
	return rr
}

func TestChatHandlerSuccess(t *testing.T) {
	chat := &stubChatService{resp: dto.ChatResponse{
		ConversationID: "c1",
		Response:       "✅ Task created: **Buy milk**",
		ToolCalls:      []dto.ToolCallInfo{{Tool: "add_task", Args: map[string]any{"title": "Buy milk"}}},
	}}
	h := testRouter(&Deps{ChatSvc: chat})

	rr := do(t, h, http.MethodPost, "/api/alice/chat", "alice", `{"message":"add Buy milk","conversationId":"c1"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if chat.uid != "alice" || chat.req.Message != "add Buy milk" || chat.req.ConversationID != "c1" {
		t.Fatalf("service called with unexpected args: %+v", chat)
	}
	var body struct {
		Data dto.ChatResponse `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ConversationID != "c1" || len(body.Data.ToolCalls) != 1 || body.Data.ToolCalls[0].Tool != "add_task" {
		t.Fatalf("unexpected body: %+v", body.Data)
	}
}

func TestChatHandlerRejectsOtherUsersPath(t *testing.T) {
	chat := &stubChatService{}
	h := testRouter(&Deps{ChatSvc: chat})

	rr := do(t, h, http.MethodPost, "/api/bob/chat", "alice", `{"message":"hi"}`)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if chat.called {
		t.Fatalf("service should not be called")
	}
}

func TestChatHandlerInvalidJSON(t *testing.T) {
	chat := &stubChatService{}
	h := testRouter(&Deps{ChatSvc: chat})

	rr := do(t, h, http.MethodPost, "/api/alice/chat", "alice", "not-json")

	if rr.Code != http.StatusBadRequest || chat.called {
		t.Fatalf("expected 400 without service call, got %d", rr.Code)
	}
}

func TestChatHandlerServiceUnavailable(t *testing.T) {
	chat := &stubChatService{err: errs.NewExternalServiceError("agent", "agent timed out", true, errors.New("deadline exceeded"))}
	h := testRouter(&Deps{ChatSvc: chat})

	rr := do(t, h, http.MethodPost, "/api/alice/chat", "alice", `{"message":"hi"}`)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "deadline") {
		t.Fatalf("internal detail leaked: %s", rr.Body.String())
	}
}

func TestMessagesHandler(t *testing.T) {
	chat := &stubChatService{history: []models.Message{{ID: "m1", Role: "user", Content: "hi"}}}
	h := testRouter(&Deps{ChatSvc: chat})

	rr := do(t, h, http.MethodGet, "/api/alice/conversations/c1/messages?limit=10", "alice", "")
	if rr.Code != http.StatusOK || chat.limit != 10 {
		t.Fatalf("expected 200 with limit 10, got %d/%d", rr.Code, chat.limit)
	}

	rr = do(t, h, http.MethodGet, "/api/alice/conversations/c1/messages?limit=abc", "alice", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rr.Code)
	}
}

func TestTaskRoutes(t *testing.T) {
	tasks := &stubTaskService{}
	h := testRouter(&Deps{TaskSvc: tasks})

	cases := []struct {
		method string
		path   string
		body   string
		status int
		call   string
	}{
		{http.MethodGet, "/api/alice/tasks?status=pending", "", http.StatusOK, "list:pending"},
		{http.MethodPost, "/api/alice/tasks", `{"title":"Buy milk"}`, http.StatusCreated, "create"},
		{http.MethodGet, "/api/alice/tasks/t1", "", http.StatusOK, "get"},
		{http.MethodPatch, "/api/alice/tasks/t1", `{"title":"x"}`, http.StatusOK, "update"},
		{http.MethodPatch, "/api/alice/tasks/t1/toggle", "", http.StatusOK, "toggle"},
		{http.MethodDelete, "/api/alice/tasks/t1", "", http.StatusNoContent, "delete"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			tasks.calls = nil
			rr := do(t, h, tc.method, tc.path, "alice", tc.body)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
			if len(tasks.calls) != 1 || tasks.calls[0] != tc.call {
				t.Fatalf("expected call %q, got %v", tc.call, tasks.calls)
			}
		})
	}
	if tasks.taskID != "t1" {
		t.Fatalf("task id not passed through: %q", tasks.taskID)
	}
}

func TestTaskHandlerErrors(t *testing.T) {
	tasks := &stubTaskService{err: errs.NewAlreadyDoneError("Task is already completed")}
	h := testRouter(&Deps{TaskSvc: tasks})

	rr := do(t, h, http.MethodPatch, "/api/alice/tasks/t1/toggle", "alice", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/api/alice/tasks", "", "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without uid, got %d", rr.Code)
	}
}
