package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/helpers"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/logger"
)

func TestHandleErrorMapping(t *testing.T) {
	h := New(slog.New(logger.NewTestHandler(slog.LevelInfo)))

	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", errs.NewNotFoundError("Task not found"), http.StatusNotFound, "not_found", "Task not found"},
		{"wrapped validation", fmt.Errorf("decode: %w", errs.NewValidationError("Title is required")), http.StatusBadRequest, "invalid_input", "Title is required"},
		{"already done", errs.NewAlreadyDoneError("Task is already completed"), http.StatusConflict, "already_done", "Task is already completed"},
		{"forbidden", errs.NewForbiddenError("Access denied"), http.StatusForbidden, "forbidden", "Access denied"},
		{"database", errs.NewDatabaseError("create", "failed to create task", errors.New("disk full")), http.StatusInternalServerError, "internal_error", "An error occurred"},
		{"transient external", errs.NewExternalServiceError("model", "model request failed", true, errors.New("429")), http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable"},
		{"permanent external", errs.NewExternalServiceError("model", "bad key", false, nil), http.StatusBadGateway, "service_unavailable", "Service temporarily unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error", "An unexpected error occurred"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(helpers.TestCtx())
			rr := httptest.NewRecorder()

			h.HandleError(rr, req, tc.err)

			if rr.Code != tc.status {
				t.Fatalf("status: want %d, got %d", tc.status, rr.Code)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Code != tc.code || body.Message != tc.message {
				t.Fatalf("body mismatch: %+v", body)
			}
			if strings.Contains(rr.Body.String(), "disk full") || strings.Contains(rr.Body.String(), "429") {
				t.Fatalf("internal detail leaked: %s", rr.Body.String())
			}
		})
	}
}

func TestWriteSuccessEnvelope(t *testing.T) {
	h := New(slog.New(logger.NewTestHandler(slog.LevelInfo)))
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(helpers.TestCtx())
	rr := httptest.NewRecorder()

	h.WriteSuccess(rr, req, http.StatusCreated, map[string]string{"id": "t1"})

	if rr.Code != http.StatusCreated || rr.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected response: %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.Data["id"] != "t1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
