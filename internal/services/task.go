package services

import (
	"context"
	"strings"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/models"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/tools"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/helpers"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/logger"
)

type taskStore interface {
	Create(ctx context.Context, uid string, task *models.Task) error
	List(ctx context.Context, uid string, filter dto.TaskFilter) ([]*models.Task, error)
	Get(ctx context.Context, uid, taskID string) (*models.Task, error)
	Update(ctx context.Context, uid, taskID string, patch models.TaskPatch) (*models.Task, error)
	Toggle(ctx context.Context, uid, taskID string) (*models.Task, error)
	Delete(ctx context.Context, uid, taskID string) (*models.Task, error)
}

type taskService struct {
	store taskStore
}

func NewTaskService(store taskStore) *taskService {
	return &taskService{store: store}
}

func (s *taskService) List(ctx context.Context, uid string, filter dto.TaskFilter) (dto.TaskListResponse, error) {
	status, err := tools.ValidateStatusFilter(filter.Status)
	if err != nil {
		return dto.TaskListResponse{}, err
	}
	filter.Status = status
	if filter.Priority != "" {
		if filter.Priority, err = validatePriority(filter.Priority); err != nil {
			return dto.TaskListResponse{}, err
		}
	}
	filter.Tag = strings.TrimSpace(filter.Tag)

	tasks, err := s.store.List(ctx, uid, filter)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list tasks", "error", err)
		return dto.TaskListResponse{}, err
	}

	out := dto.TaskListResponse{Tasks: make([]dto.TaskView, 0, len(tasks))}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, toTaskView(t))
	}
	out.Count = len(out.Tasks)
	return out, nil
}

func (s *taskService) Create(ctx context.Context, uid string, req dto.TaskCreateRequest) (dto.TaskView, error) {
	log := logger.FromContext(ctx)

	title, err := tools.ValidateTitle(req.Title)
	if err != nil {
		return dto.TaskView{}, err
	}
	task := &models.Task{
		Title:      title,
		Status:     models.TaskStatusPending,
		Priority:   models.PriorityMedium,
		Recurrence: models.RecurrenceNone,
		Tags:       []string{},
		DueDate:    req.DueDate,
	}
	if req.Description != nil {
		description, err := tools.ValidateDescription(*req.Description)
		if err != nil {
			return dto.TaskView{}, err
		}
		if description != "" {
			task.Description = &description
		}
	}
	if req.Priority != "" {
		if task.Priority, err = validatePriority(req.Priority); err != nil {
			return dto.TaskView{}, err
		}
	}
	if req.Tags != nil {
		if task.Tags, err = normalizeTags(req.Tags); err != nil {
			return dto.TaskView{}, err
		}
	}
	if req.Recurrence != "" {
		if task.Recurrence, err = validateRecurrence(req.Recurrence); err != nil {
			return dto.TaskView{}, err
		}
	}
	if err := checkRecurrence(task); err != nil {
		return dto.TaskView{}, err
	}

	if err := s.store.Create(ctx, uid, task); err != nil {
		log.Error("failed to create task", "error", err)
		return dto.TaskView{}, err
	}
	log.Info("task created", "task_id", task.ID)
	return toTaskView(task), nil
}

func (s *taskService) Get(ctx context.Context, uid, taskID string) (dto.TaskView, error) {
	id, err := tools.ParseTaskID(taskID)
	if err != nil {
		return dto.TaskView{}, err
	}
	task, err := s.store.Get(ctx, uid, id)
	if err != nil {
		return dto.TaskView{}, err
	}
	return toTaskView(task), nil
}

// Update applies a partial update. The store rejects a result that recurs
// without a due date, inside the same transaction as the write.
func (s *taskService) Update(ctx context.Context, uid, taskID string, req dto.TaskUpdateRequest) (dto.TaskView, error) {
	log := logger.FromContext(ctx)

	id, err := tools.ParseTaskID(taskID)
	if err != nil {
		return dto.TaskView{}, err
	}
	patch, err := buildPatch(req)
	if err != nil {
		return dto.TaskView{}, err
	}
	if patch.Empty() {
		return dto.TaskView{}, errs.NewValidationError("No fields to update")
	}

	task, err := s.store.Update(ctx, uid, id, patch)
	if err != nil {
		log.Info("task update failed", "task_id", id, "error", err)
		return dto.TaskView{}, err
	}
	log.Info("task updated", "task_id", id)
	return toTaskView(task), nil
}

// Toggle flips a task between pending and completed.
func (s *taskService) Toggle(ctx context.Context, uid, taskID string) (dto.TaskView, error) {
	id, err := tools.ParseTaskID(taskID)
	if err != nil {
		return dto.TaskView{}, err
	}
	task, err := s.store.Toggle(ctx, uid, id)
	if err != nil {
		return dto.TaskView{}, err
	}
	logger.FromContext(ctx).Info("task toggled", "task_id", id, "status", task.Status)
	return toTaskView(task), nil
}

func (s *taskService) Delete(ctx context.Context, uid, taskID string) error {
	id, err := tools.ParseTaskID(taskID)
	if err != nil {
		return err
	}
	if _, err := s.store.Delete(ctx, uid, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("task deleted", "task_id", id)
	return nil
}

func buildPatch(req dto.TaskUpdateRequest) (models.TaskPatch, error) {
	var patch models.TaskPatch
	if req.Title != nil {
		title, err := tools.ValidateTitle(*req.Title)
		if err != nil {
			return patch, err
		}
		patch.Title = &title
	}
	if req.Description != nil {
		description, err := tools.ValidateDescription(*req.Description)
		if err != nil {
			return patch, err
		}
		patch.Description = &description
	}
	if req.Priority != nil {
		priority, err := validatePriority(*req.Priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &priority
	}
	if req.Tags != nil {
		tags, err := normalizeTags(*req.Tags)
		if err != nil {
			return patch, err
		}
		patch.Tags, patch.SetTags = tags, true
	}
	if req.ClearDueDate {
		patch.DueDate, patch.SetDueDate = nil, true
	} else if req.DueDate != nil {
		patch.DueDate, patch.SetDueDate = req.DueDate, true
	}
	if req.Recurrence != nil {
		recurrence, err := validateRecurrence(*req.Recurrence)
		if err != nil {
			return patch, err
		}
		patch.Recurrence = &recurrence
	}
	return patch, nil
}

func validatePriority(priority string) (string, error) {
	priority = strings.ToLower(strings.TrimSpace(priority))
	switch priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return priority, nil
	default:
		return "", errs.NewValidationError("Priority must be 'low', 'medium', or 'high'")
	}
}

func validateRecurrence(recurrence string) (string, error) {
	recurrence = strings.ToLower(strings.TrimSpace(recurrence))
	switch recurrence {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
		return recurrence, nil
	default:
		return "", errs.NewValidationError("Recurrence must be 'none', 'daily', 'weekly', or 'monthly'")
	}
}

func checkRecurrence(task *models.Task) error {
	if !task.Schedulable() {
		return errs.NewValidationError(models.MsgRecurrenceNeedsDueDate)
	}
	return nil
}

func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return nil, errs.NewValidationError("Each tag must be a non-empty string")
		}
		out = append(out, tag)
	}
	return out, nil
}

func toTaskView(t *models.Task) dto.TaskView {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: helpers.TrimmedPtr(t.Description),
		Status:      t.Status,
		Completed:   t.Completed(),
		Priority:    t.Priority,
		Tags:        tags,
		DueDate:     t.DueDate,
		Recurrence:  t.Recurrence,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
