package tools

import (
	"github.com/AsgharZaheer/todo-app-chatbot/internal/dto"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/models"
)

// Schemas describes the five task tools. None of them takes a user id; the
// tenant is bound by whoever hosts the executor.
func Schemas() []dto.ToolSchema {
	taskID := &dto.Schema{
		Type:        "string",
		Description: "The task ID (UUID) as returned by add_task or list_tasks",
	}
	return []dto.ToolSchema{
		{
			Name:        dto.ToolAddTask,
			Description: "Create a new task for the user",
			Parameters: &dto.Schema{
				Type: "object",
				Properties: map[string]*dto.Schema{
					"title":       {Type: "string", Description: "Task title, 1-200 characters"},
					"description": {Type: "string", Description: "Optional task description, up to 1000 characters"},
				},
				Required: []string{"title"},
			},
		},
		{
			Name:        dto.ToolListTasks,
			Description: "List the user's tasks, newest first, optionally filtered by status",
			Parameters: &dto.Schema{
				Type: "object",
				Properties: map[string]*dto.Schema{
					"status": {
						Type:        "string",
						Description: "Filter by status; omit for all tasks",
						Enum:        []string{models.TaskStatusPending, models.TaskStatusCompleted},
					},
				},
			},
		},
		{
			Name:        dto.ToolCompleteTask,
			Description: "Mark a task as completed",
			Parameters: &dto.Schema{
				Type:       "object",
				Properties: map[string]*dto.Schema{"task_id": taskID},
				Required:   []string{"task_id"},
			},
		},
		{
			Name:        dto.ToolDeleteTask,
			Description: "Permanently delete a task",
			Parameters: &dto.Schema{
				Type:       "object",
				Properties: map[string]*dto.Schema{"task_id": taskID},
				Required:   []string{"task_id"},
			},
		},
		{
			Name:        dto.ToolUpdateTask,
			Description: "Change the title and/or description of a task",
			Parameters: &dto.Schema{
				Type: "object",
				Properties: map[string]*dto.Schema{
					"task_id":     taskID,
					"title":       {Type: "string", Description: "New title, 1-200 characters"},
					"description": {Type: "string", Description: "New description, up to 1000 characters"},
				},
				Required: []string{"task_id"},
			},
		},
	}
}
