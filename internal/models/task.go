package models

import (
	"time"
)

const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	RecurrenceNone    = "none"
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

const MsgRecurrenceNeedsDueDate = "Recurrence requires a due date. Set a due date or change recurrence to 'none'."

// Task is scoped to one user. In Firestore it lives under
// users/{uid}/tasks/{taskId}; in SQL every query filters on user_id.
type Task struct {
	ID          string     `firestore:"id" json:"id" gorm:"primaryKey;size:36"`
	UserID      string     `firestore:"userId" json:"-" gorm:"size:128;not null;index:idx_task_user_status,priority:1"`
	Title       string     `firestore:"title" json:"title" gorm:"size:200;not null"`
	Description *string    `firestore:"description,omitempty" json:"description"`
	Status      string     `firestore:"status" json:"status" gorm:"size:16;not null;default:pending;index:idx_task_user_status,priority:2"`
	Priority    string     `firestore:"priority" json:"priority" gorm:"size:16;not null;default:medium"`
	Tags        []string   `firestore:"tags" json:"tags" gorm:"type:text;serializer:json"`
	DueDate     *time.Time `firestore:"dueDate,omitempty" json:"dueDate"`
	Recurrence  string     `firestore:"recurrence" json:"recurrence" gorm:"size:16;not null;default:none"`
	CreatedAt   time.Time  `firestore:"createdAt" json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time  `firestore:"updatedAt" json:"updatedAt"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) Completed() bool {
	return t.Status == TaskStatusCompleted
}

// TaskPatch carries the fields an update overwrites; nil leaves a field
// unchanged. Tags and DueDate use explicit Set flags so they can be cleared.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Tags        []string
	SetTags     bool
	DueDate     *time.Time
	SetDueDate  bool
	Recurrence  *string
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		!p.SetTags && !p.SetDueDate && p.Recurrence == nil
}

// Apply copies the patch onto t and stamps UpdatedAt.
func (t *Task) Apply(p TaskPatch, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.SetTags {
		t.Tags = p.Tags
	}
	if p.SetDueDate {
		t.DueDate = p.DueDate
	}
	if p.Recurrence != nil {
		t.Recurrence = *p.Recurrence
	}
	t.UpdatedAt = now
}

// Schedulable reports whether a recurring task has the due date it needs.
func (t *Task) Schedulable() bool {
	return t.Recurrence == "" || t.Recurrence == RecurrenceNone || t.DueDate != nil
}
