package tools

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/AsgharZaheer/todo-app-chatbot/internal/errs"
	"github.com/AsgharZaheer/todo-app-chatbot/internal/models"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// ValidateTitle trims and checks a title; the trimmed value is what gets stored.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errs.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", errs.NewValidationError("Title must be 200 characters or less")
	}
	return title, nil
}

func ValidateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return "", errs.NewValidationError("Description must be 1000 characters or less")
	}
	return description, nil
}

// ParseTaskID accepts any form uuid.Parse does and returns the canonical
// lower-case 8-4-4-4-12 spelling used as the storage key.
func ParseTaskID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", errs.NewValidationError("Invalid task ID format")
	}
	return parsed.String(), nil
}

func ValidateStatusFilter(status string) (string, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "", models.TaskStatusPending, models.TaskStatusCompleted:
		return status, nil
	default:
		return "", errs.NewValidationError("Status must be 'pending', 'completed', or empty")
	}
}
