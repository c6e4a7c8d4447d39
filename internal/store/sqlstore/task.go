package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/models"
)

const msgTaskNotFound = "Task not found"

type taskStore struct {
	db       *gorm.DB
	clockNow func() time.Time
}

func NewTaskStore(db *gorm.DB) *taskStore {
	return &taskStore{db: db, clockNow: time.Now}
}

// owned scopes every statement to one user; no query in this file runs
// without it.
func owned(uid, taskID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ? AND user_id = ?", taskID, uid)
	}
}

func (s *taskStore) Create(ctx context.Context, uid string, task *models.Task) error {
	now := s.clockNow().UTC()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.UserID = uid
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return errs.NewDatabaseError("create", "failed to create task", err)
	}
	return nil
}

func (s *taskStore) List(ctx context.Context, uid string, filter dto.TaskFilter) ([]*models.Task, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", uid)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Tag != "" {
		query = query.Where(`tags LIKE ? ESCAPE '\'`, tagPattern(filter.Tag))
	}

	tasks := make([]*models.Task, 0)
	if err := query.Order("created_at DESC").Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list tasks", err)
	}
	return tasks, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// tagPattern matches one element of the JSON-encoded tags column exactly.
func tagPattern(tag string) string {
	encoded, _ := json.Marshal(tag)
	return "%" + likeEscaper.Replace(string(encoded)) + "%"
}

func (s *taskStore) Get(ctx context.Context, uid, taskID string) (*models.Task, error) {
	return getTask(s.db.WithContext(ctx), uid, taskID)
}

// Complete is a single conditional UPDATE; when nothing changed, a follow-up
// read tells NotFound apart from AlreadyDone.
func (s *taskStore) Complete(ctx context.Context, uid, taskID string) (*models.Task, error) {
	var out *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Scopes(owned(uid, taskID)).
			Where("status = ?", models.TaskStatusPending).
			Updates(map[string]any{
				"status":     models.TaskStatusCompleted,
				"updated_at": s.clockNow().UTC(),
			})
		if res.Error != nil {
			return errs.NewDatabaseError("update", "failed to complete task", res.Error)
		}

		task, err := getTask(tx, uid, taskID)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return errs.NewAlreadyDoneError("Task is already completed")
		}
		out = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *taskStore) Update(ctx context.Context, uid, taskID string, patch models.TaskPatch) (*models.Task, error) {
	var out *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := getTask(tx, uid, taskID)
		if err != nil {
			return err
		}
		task.Apply(patch, s.clockNow().UTC())
		if !task.Schedulable() {
			return errs.NewValidationError(models.MsgRecurrenceNeedsDueDate)
		}
		if err := saveTask(tx, uid, task); err != nil {
			return errs.NewDatabaseError("update", "failed to update task", err)
		}
		out = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *taskStore) Toggle(ctx context.Context, uid, taskID string) (*models.Task, error) {
	var out *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := getTask(tx, uid, taskID)
		if err != nil {
			return err
		}
		next := models.TaskStatusCompleted
		if task.Completed() {
			next = models.TaskStatusPending
		}
		task.Apply(models.TaskPatch{Status: &next}, s.clockNow().UTC())
		if err := saveTask(tx, uid, task); err != nil {
			return errs.NewDatabaseError("update", "failed to toggle task", err)
		}
		out = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *taskStore) Delete(ctx context.Context, uid, taskID string) (*models.Task, error) {
	var out *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := getTask(tx, uid, taskID)
		if err != nil {
			return err
		}
		if err := tx.Scopes(owned(uid, taskID)).Delete(&models.Task{}).Error; err != nil {
			return errs.NewDatabaseError("delete", "failed to delete task", err)
		}
		out = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func getTask(db *gorm.DB, uid, taskID string) (*models.Task, error) {
	var task models.Task
	err := db.Scopes(owned(uid, taskID)).Take(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError(msgTaskNotFound)
		}
		return nil, errs.NewDatabaseError("read", "failed to get task", err)
	}
	return &task, nil
}

// saveTask writes every mutable column, including zero values, without
// touching identity or ownership.
func saveTask(db *gorm.DB, uid string, task *models.Task) error {
	return db.Model(task).
		Scopes(owned(uid, task.ID)).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(task).Error
}
