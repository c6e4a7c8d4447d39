package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/models"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/logger"
)

type taskStore interface {
	Create(ctx context.Context, uid string, task *models.Task) error
	List(ctx context.Context, uid string, filter dto.TaskFilter) ([]*models.Task, error)
	Complete(ctx context.Context, uid, taskID string) (*models.Task, error)
	Update(ctx context.Context, uid, taskID string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, uid, taskID string) (*models.Task, error)
}

// Executor is the only path from the assistant to task data. Every method
// takes the tenant explicitly and reports failures inside the result.
type Executor struct {
	store taskStore
}

func NewExecutor(store taskStore) *Executor {
	return &Executor{store: store}
}

// Execute dispatches by tool name. Unknown tools, undecodable arguments and
// panics all come back as failed results.
func (e *Executor) Execute(ctx context.Context, uid, name string, args map[string]any) (result dto.ToolResult) {
	log := logger.FromContext(ctx).With("tool", name)
	defer func() {
		if r := recover(); r != nil {
			log.Error("tool panicked", "panic", fmt.Sprint(r))
			result = failure(errors.New("Something went wrong while running the tool"))
		}
	}()

	switch name {
	case dto.ToolAddTask:
		a, err := decodeArgs[dto.AddTaskArgs](args)
		if err != nil {
			return invalidArgs(name)
		}
		return e.AddTask(ctx, uid, a)
	case dto.ToolListTasks:
		a, err := decodeArgs[dto.ListTasksArgs](args)
		if err != nil {
			return invalidArgs(name)
		}
		return e.ListTasks(ctx, uid, a)
	case dto.ToolCompleteTask:
		a, err := decodeArgs[dto.TaskIDArgs](args)
		if err != nil {
			return invalidArgs(name)
		}
		return e.CompleteTask(ctx, uid, a)
	case dto.ToolDeleteTask:
		a, err := decodeArgs[dto.TaskIDArgs](args)
		if err != nil {
			return invalidArgs(name)
		}
		return e.DeleteTask(ctx, uid, a)
	case dto.ToolUpdateTask:
		a, err := decodeArgs[dto.UpdateTaskArgs](args)
		if err != nil {
			return invalidArgs(name)
		}
		return e.UpdateTask(ctx, uid, a)
	default:
		log.Warn("unknown tool requested")
		return failure(errs.NewValidationError(fmt.Sprintf("Unknown tool: %s", name)))
	}
}

func (e *Executor) AddTask(ctx context.Context, uid string, args dto.AddTaskArgs) dto.ToolResult {
	log := logger.FromContext(ctx)

	title, err := ValidateTitle(args.Title)
	if err != nil {
		return failure(err)
	}
	description, err := ValidateDescription(args.Description)
	if err != nil {
		return failure(err)
	}

	task := &models.Task{
		Title:      title,
		Status:     models.TaskStatusPending,
		Priority:   models.PriorityMedium,
		Recurrence: models.RecurrenceNone,
	}
	if description != "" {
		task.Description = &description
	}

	if err := e.store.Create(ctx, uid, task); err != nil {
		log.Error("add_task failed", "error", err)
		return failure(err)
	}

	log.Info("add_task succeeded", "task_id", task.ID)
	return success(map[string]any{
		"id":          task.ID,
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
		"completed":   false,
	})
}

func (e *Executor) ListTasks(ctx context.Context, uid string, args dto.ListTasksArgs) dto.ToolResult {
	status, err := ValidateStatusFilter(args.Status)
	if err != nil {
		return failure(err)
	}

	tasks, err := e.store.List(ctx, uid, dto.TaskFilter{Status: status})
	if err != nil {
		logger.FromContext(ctx).Error("list_tasks failed", "error", err)
		return failure(err)
	}

	items := make([]map[string]any, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, map[string]any{
			"id":          t.ID,
			"title":       t.Title,
			"description": t.Description,
			"status":      t.Status,
			"completed":   t.Completed(),
			"priority":    t.Priority,
			"created_at":  t.CreatedAt,
		})
	}
	return success(map[string]any{
		"tasks": items,
		"count": len(items),
	})
}

func (e *Executor) CompleteTask(ctx context.Context, uid string, args dto.TaskIDArgs) dto.ToolResult {
	id, err := ParseTaskID(args.TaskID)
	if err != nil {
		return failure(err)
	}

	task, err := e.store.Complete(ctx, uid, id)
	if err != nil {
		logTaskFailure(ctx, "complete_task", id, err)
		return failure(err)
	}
	return success(map[string]any{
		"id":        task.ID,
		"title":     task.Title,
		"completed": true,
	})
}

func (e *Executor) DeleteTask(ctx context.Context, uid string, args dto.TaskIDArgs) dto.ToolResult {
	id, err := ParseTaskID(args.TaskID)
	if err != nil {
		return failure(err)
	}

	task, err := e.store.Delete(ctx, uid, id)
	if err != nil {
		logTaskFailure(ctx, "delete_task", id, err)
		return failure(err)
	}
	return success(map[string]any{
		"id":      task.ID,
		"title":   task.Title,
		"deleted": true,
	})
}

// UpdateTask treats whitespace-only fields as absent; a call where nothing is
// left after trimming is rejected with "No fields to update".
func (e *Executor) UpdateTask(ctx context.Context, uid string, args dto.UpdateTaskArgs) dto.ToolResult {
	id, err := ParseTaskID(args.TaskID)
	if err != nil {
		return failure(err)
	}

	var patch models.TaskPatch
	if title, err := ValidateTitle(args.Title); err == nil {
		patch.Title = &title
	} else if !isEmptyTitle(err) {
		return failure(err)
	}
	description, err := ValidateDescription(args.Description)
	if err != nil {
		return failure(err)
	}
	if description != "" {
		patch.Description = &description
	}
	if patch.Empty() {
		return failure(errs.NewValidationError("No fields to update"))
	}

	task, err := e.store.Update(ctx, uid, id, patch)
	if err != nil {
		logTaskFailure(ctx, "update_task", id, err)
		return failure(err)
	}
	return success(map[string]any{
		"id":          task.ID,
		"title":       task.Title,
		"description": task.Description,
		"completed":   task.Completed(),
	})
}

func isEmptyTitle(err error) bool {
	var v *errs.ValidationError
	return errors.As(err, &v) && v.Message == "Title is required"
}

// Domain outcomes are expected and logged quietly; store failures are errors.
func logTaskFailure(ctx context.Context, tool, taskID string, err error) {
	log := logger.FromContext(ctx)
	var dbErr *errs.DatabaseError
	if errors.As(err, &dbErr) {
		log.Error(tool+" failed", "task_id", taskID, "operation", dbErr.Operation, "error", dbErr.Err)
		return
	}
	log.Info(tool+" rejected", "task_id", taskID, "reason", err.Error())
}

func success(data map[string]any) dto.ToolResult {
	return dto.ToolResult{Success: true, Data: data}
}

// failure never exposes database internals to the model or the user.
func failure(err error) dto.ToolResult {
	var dbErr *errs.DatabaseError
	if errors.As(err, &dbErr) {
		return dto.ToolResult{Success: false, Error: "Database error: " + dbErr.Message}
	}
	return dto.ToolResult{Success: false, Error: err.Error()}
}

func invalidArgs(tool string) dto.ToolResult {
	return failure(errs.NewValidationError(fmt.Sprintf("Invalid arguments for %s", tool)))
}

func decodeArgs[T any](args map[string]any) (T, error) {
	var out T
	if len(args) == 0 {
		return out, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}
