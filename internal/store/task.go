package store

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/models"
	"github.com/AsgharZaheer/todo-app-chatbot/pkg/helpers"
)

const msgTaskNotFound = "Task not found"

type taskStore struct {
	client   *firestore.Client
	clockNow func() time.Time
}

func NewTaskStore(client *firestore.Client) *taskStore {
	return &taskStore{client: client, clockNow: time.Now}
}

// Tasks live under the owning user's document, so every lookup is scoped by
// path rather than by a post-read ownership check.
func (s *taskStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("tasks")
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

	if _, err := s.collection(uid).Doc(task.ID).Create(ctx, task); err != nil {
		return errs.NewDatabaseError("create", "failed to create task", err)
	}
	return nil
}

func (s *taskStore) List(ctx context.Context, uid string, filter dto.TaskFilter) ([]*models.Task, error) {
	query := s.collection(uid).Query
	if filter.Status != "" {
		query = query.Where("status", "==", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority", "==", filter.Priority)
	}
	if filter.Tag != "" {
		query = query.Where("tags", "array-contains", filter.Tag)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	tasks := make([]*models.Task, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list tasks", err)
		}
		var t models.Task
		if err := doc.DataTo(&t); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse task data", err)
		}
		tasks = append(tasks, &t)
	}
	return tasks, nil
}

func (s *taskStore) Get(ctx context.Context, uid, taskID string) (*models.Task, error) {
	doc, err := s.collection(uid).Doc(taskID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError(msgTaskNotFound)
		}
		return nil, errs.NewDatabaseError("read", "failed to get task", err)
	}
	return decodeTask(doc)
}

// Complete checks and flips the status inside one transaction so a
// concurrent completion can't be applied twice.
func (s *taskStore) Complete(ctx context.Context, uid, taskID string) (*models.Task, error) {
	ref := s.collection(uid).Doc(taskID)
	var out *models.Task
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		task, err := txGetTask(tx, ref)
		if err != nil {
			return err
		}
		if task.Completed() {
			return errs.NewAlreadyDoneError("Task is already completed")
		}
		task.Apply(models.TaskPatch{Status: helpers.Ptr(models.TaskStatusCompleted)}, s.clockNow().UTC())
		out = task
		return tx.Set(ref, task)
	})
	if err != nil {
		return nil, wrapTxError("update", "failed to complete task", err)
	}
	return out, nil
}

func (s *taskStore) Update(ctx context.Context, uid, taskID string, patch models.TaskPatch) (*models.Task, error) {
	ref := s.collection(uid).Doc(taskID)
	var out *models.Task
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		task, err := txGetTask(tx, ref)
		if err != nil {
			return err
		}
		task.Apply(patch, s.clockNow().UTC())
		if !task.Schedulable() {
			return errs.NewValidationError(models.MsgRecurrenceNeedsDueDate)
		}
		out = task
		return tx.Set(ref, task)
	})
	if err != nil {
		return nil, wrapTxError("update", "failed to update task", err)
	}
	return out, nil
}

// Toggle flips pending <-> completed.
func (s *taskStore) Toggle(ctx context.Context, uid, taskID string) (*models.Task, error) {
	ref := s.collection(uid).Doc(taskID)
	var out *models.Task
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		task, err := txGetTask(tx, ref)
		if err != nil {
			return err
		}
		next := models.TaskStatusCompleted
		if task.Completed() {
			next = models.TaskStatusPending
		}
		task.Apply(models.TaskPatch{Status: &next}, s.clockNow().UTC())
		out = task
		return tx.Set(ref, task)
	})
	if err != nil {
		return nil, wrapTxError("update", "failed to toggle task", err)
	}
	return out, nil
}

func (s *taskStore) Delete(ctx context.Context, uid, taskID string) (*models.Task, error) {
	ref := s.collection(uid).Doc(taskID)
	var out *models.Task
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		task, err := txGetTask(tx, ref)
		if err != nil {
			return err
		}
		out = task
		return tx.Delete(ref)
	})
	if err != nil {
		return nil, wrapTxError("delete", "failed to delete task", err)
	}
	return out, nil
}

func txGetTask(tx *firestore.Transaction, ref *firestore.DocumentRef) (*models.Task, error) {
	doc, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError(msgTaskNotFound)
		}
		return nil, err
	}
	return decodeTask(doc)
}

func decodeTask(doc *firestore.DocumentSnapshot) (*models.Task, error) {
	var t models.Task
	if err := doc.DataTo(&t); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse task data", err)
	}
	return &t, nil
}

// wrapTxError passes domain errors raised inside a transaction through
// untouched and wraps everything else as a database failure.
func wrapTxError(op, message string, err error) error {
	var (
		notFound    *errs.NotFoundError
		alreadyDone *errs.AlreadyDoneError
		dbErr       *errs.DatabaseError
		invalid     *errs.ValidationError
	)
	if errors.As(err, &notFound) || errors.As(err, &alreadyDone) || errors.As(err, &dbErr) || errors.As(err, &invalid) {
		return err
	}
	return errs.NewDatabaseError(op, message, err)
}
