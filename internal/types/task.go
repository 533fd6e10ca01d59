package types

import "time"

type ColumnID string

const (
	ColumnTodo       ColumnID = "todo"
	ColumnInProgress ColumnID = "in_progress"
	ColumnReview     ColumnID = "review"
	ColumnDone       ColumnID = "done"
)

// BoardColumns is the fixed left-to-right order of the kanban board.
var BoardColumns = []struct {
	ID    ColumnID
	Title string
}{
	{ColumnTodo, "To Do"},
	{ColumnInProgress, "In Progress"},
	{ColumnReview, "Review"},
	{ColumnDone, "Done"},
}

// ValidColumn reports whether id names a board column.
func ValidColumn(id ColumnID) bool {
	for _, col := range BoardColumns {
		if col.ID == id {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Subtask struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ColumnID    ColumnID   `json:"columnId"`
	Position    int        `json:"position"`
	AssigneeID  *string    `json:"assigneeId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    Priority   `json:"priority"`
	Subtasks    []Subtask  `json:"subtasks"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskMove is one drag-and-drop placement in a bulk reorder.
type TaskMove struct {
	ID       string   `json:"id" binding:"required"`
	ColumnID ColumnID `json:"columnId" binding:"required"`
	Position int      `json:"position" binding:"min=0"`
}

type BoardColumn struct {
	ID    ColumnID `json:"id"`
	Title string   `json:"title"`
	Tasks []Task   `json:"tasks"`
}

type Board struct {
	Columns []BoardColumn `json:"columns"`
	Users   []User        `json:"users"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
