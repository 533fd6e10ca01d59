package tasks

import (
	"time"

	"github.com/pblonline/ops-dashboard/internal/types"
)

type CreateTaskRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	ColumnID    types.ColumnID  `json:"columnId"`
	Position    *int            `json:"position" binding:"omitempty,min=0"`
	AssigneeID  *string         `json:"assigneeId"`
	DueDate     *time.Time      `json:"dueDate"`
	Priority    types.Priority  `json:"priority"`
	Subtasks    []types.Subtask `json:"subtasks"`
}

// UpdateTaskRequest edits a task; nil fields keep their value. An empty
// assigneeId clears the assignee.
type UpdateTaskRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	ColumnID    *types.ColumnID  `json:"columnId"`
	Position    *int             `json:"position" binding:"omitempty,min=0"`
	AssigneeID  *string          `json:"assigneeId"`
	DueDate     *time.Time       `json:"dueDate"`
	Priority    *types.Priority  `json:"priority"`
	Subtasks    *[]types.Subtask `json:"subtasks"`
}

type BulkUpdateRequest struct {
	Updates []types.TaskMove `json:"updates" binding:"required,min=1,dive"`
}

type BulkUpdateResponse struct {
	Updated int `json:"updated"`
}

type CreateUserRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	AvatarURL string `json:"avatarUrl" binding:"omitempty,url"`
}
