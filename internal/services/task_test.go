package services

import (
	"errors"
	"testing"
	"time"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/config"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/store/sqlstore"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/helpers"
)

func newTaskService(t *testing.T) *taskService {
	t.Helper()
	db, err := sqlstore.Open(config.StoreSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlstore.Close(db) })
	return NewTaskService(sqlstore.NewTaskStore(db))
}

func isValidation(err error) bool {
	var v *errs.ValidationError
	return errors.As(err, &v)
}

func TestTaskServiceCreateDefaultsAndValidation(t *testing.T) {
	svc := newTaskService(t)
	ctx := helpers.TestCtx()

	view, err := svc.Create(ctx, "alice", dto.TaskCreateRequest{
		Title: "  Water plants ",
		Tags:  []string{" home ", "garden"},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if view.Title != "Water plants" || view.Priority != "medium" || view.Recurrence != "none" || view.Completed {
		t.Fatalf("unexpected defaults: %+v", view)
	}
	if len(view.Tags) != 2 || view.Tags[0] != "home" {
		t.Fatalf("tags not normalized: %v", view.Tags)
	}

	bad := []dto.TaskCreateRequest{
		{Title: ""},
		{Title: "x", Priority: "urgent"},
		{Title: "x", Tags: []string{"ok", "  "}},
		{Title: "x", Recurrence: "weekly"},
	}
	for _, req := range bad {
		if _, err := svc.Create(ctx, "alice", req); !isValidation(err) {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}

	due := time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)
	if _, err := svc.Create(ctx, "alice", dto.TaskCreateRequest{Title: "Rent", Recurrence: "monthly", DueDate: &due}); err != nil {
		t.Fatalf("recurrence with due date should pass: %v", err)
	}
}

func TestTaskServiceUpdateToggleDelete(t *testing.T) {
	svc := newTaskService(t)
	ctx := helpers.TestCtx()

	due := time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)
	created, err := svc.Create(ctx, "alice", dto.TaskCreateRequest{Title: "Report", DueDate: &due})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Update(ctx, "alice", created.ID, dto.TaskUpdateRequest{}); !isValidation(err) {
		t.Fatalf("expected no fields error, got %v", err)
	}
	if _, err := svc.Update(ctx, "alice", created.ID, dto.TaskUpdateRequest{
		Recurrence:   helpers.Ptr("weekly"),
		ClearDueDate: true,
	}); !isValidation(err) {
		t.Fatalf("recurrence without due date should fail, got %v", err)
	}

	updated, err := svc.Update(ctx, "alice", created.ID, dto.TaskUpdateRequest{
		Title:      helpers.Ptr("Quarterly report"),
		Priority:   helpers.Ptr("HIGH"),
		Recurrence: helpers.Ptr("weekly"),
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Title != "Quarterly report" || updated.Priority != "high" || updated.Recurrence != "weekly" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	toggled, err := svc.Toggle(ctx, "alice", created.ID)
	if err != nil || !toggled.Completed {
		t.Fatalf("expected completed after toggle, got %+v (%v)", toggled, err)
	}
	toggled, err = svc.Toggle(ctx, "alice", created.ID)
	if err != nil || toggled.Completed {
		t.Fatalf("expected pending after second toggle, got %+v (%v)", toggled, err)
	}

	var nf *errs.NotFoundError
	if err := svc.Delete(ctx, "bob", created.ID); !errors.As(err, &nf) {
		t.Fatalf("expected not found for other tenant, got %v", err)
	}
	if err := svc.Delete(ctx, "alice", created.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := svc.Get(ctx, "alice", created.ID); !errors.As(err, &nf) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if _, err := svc.Get(ctx, "alice", "nope"); !isValidation(err) {
		t.Fatalf("expected invalid id, got %v", err)
	}
}

func TestTaskServiceListFilters(t *testing.T) {
	svc := newTaskService(t)
	ctx := helpers.TestCtx()

	a, _ := svc.Create(ctx, "alice", dto.TaskCreateRequest{Title: "a", Priority: "high", Tags: []string{"work"}})
	_, _ = svc.Create(ctx, "alice", dto.TaskCreateRequest{Title: "b"})
	_, _ = svc.Create(ctx, "bob", dto.TaskCreateRequest{Title: "c", Priority: "high"})
	if _, err := svc.Toggle(ctx, "alice", a.ID); err != nil {
		t.Fatalf("Toggle error: %v", err)
	}

	all, err := svc.List(ctx, "alice", dto.TaskFilter{})
	if err != nil || all.Count != 2 {
		t.Fatalf("expected two tasks, got %+v (%v)", all, err)
	}
	high, _ := svc.List(ctx, "alice", dto.TaskFilter{Priority: "high"})
	if high.Count != 1 || high.Tasks[0].Title != "a" {
		t.Fatalf("priority filter mismatch: %+v", high)
	}
	done, _ := svc.List(ctx, "alice", dto.TaskFilter{Status: "completed"})
	if done.Count != 1 {
		t.Fatalf("status filter mismatch: %+v", done)
	}
	work, _ := svc.List(ctx, "alice", dto.TaskFilter{Tag: "work"})
	if work.Count != 1 {
		t.Fatalf("tag filter mismatch: %+v", work)
	}
	if _, err := svc.List(ctx, "alice", dto.TaskFilter{Status: "archived"}); !isValidation(err) {
		t.Fatalf("expected status validation, got %v", err)
	}
}
