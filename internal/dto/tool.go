package dto

const (
	ToolAddTask      = "add_task"
	ToolListTasks    = "list_tasks"
	ToolCompleteTask = "complete_task"
	ToolDeleteTask   = "delete_task"
	ToolUpdateTask   = "update_task"
)

// ToolResult is the flat payload every tool returns, success or not.
type ToolResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type AddTaskArgs struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type ListTasksArgs struct {
	Status string `json:"status,omitempty"`
}

type TaskIDArgs struct {
	TaskID string `json:"task_id"`
}

type UpdateTaskArgs struct {
	TaskID      string `json:"task_id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// TaskFilter narrows a task listing. Empty fields don't filter.
type TaskFilter struct {
	Status   string
	Priority string
	Tag      string
}
