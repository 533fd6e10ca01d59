// Package tasks serves the team kanban board and its assignees.
package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

type Store interface {
	ListTasks(ctx context.Context) ([]types.Task, error)
	GetTask(ctx context.Context, id string) (*types.Task, error)
	CreateTask(ctx context.Context, t types.Task) (*types.Task, error)
	SaveTask(ctx context.Context, t types.Task) (*types.Task, error)
	DeleteTask(ctx context.Context, id string) error
	MoveTasks(ctx context.Context, moves []types.TaskMove) error
	ListUsers(ctx context.Context) ([]types.User, error)
	CreateUser(ctx context.Context, u types.User) (*types.User, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func checkID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s %s: %w", kind, id, types.ErrNotFound)
	}
	return nil
}

func validPriority(p types.Priority) bool {
	switch p {
	case types.PriorityLow, types.PriorityMedium, types.PriorityHigh:
		return true
	}
	return false
}

// Board groups tasks into the fixed columns, each ordered by position.
func (s *Service) Board(ctx context.Context) (*types.Board, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	byColumn := make(map[types.ColumnID][]types.Task, len(types.BoardColumns))
	for _, t := range tasks {
		byColumn[t.ColumnID] = append(byColumn[t.ColumnID], t)
	}

	board := &types.Board{Users: users}
	for _, col := range types.BoardColumns {
		colTasks := byColumn[col.ID]
		if colTasks == nil {
			colTasks = []types.Task{}
		}
		sort.SliceStable(colTasks, func(i, j int) bool {
			if colTasks[i].Position != colTasks[j].Position {
				return colTasks[i].Position < colTasks[j].Position
			}
			return colTasks[i].CreatedAt.Before(colTasks[j].CreatedAt)
		})
		board.Columns = append(board.Columns, types.BoardColumn{ID: col.ID, Title: col.Title, Tasks: colTasks})
	}
	return board, nil
}

// List returns tasks, optionally narrowed to one column or assignee.
func (s *Service) List(ctx context.Context, column types.ColumnID, assigneeID string) ([]types.Task, error) {
	if column != "" && !types.ValidColumn(column) {
		return nil, fmt.Errorf("%w: unknown column %q", types.ErrValidation, column)
	}
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := []types.Task{}
	for _, t := range tasks {
		if column != "" && t.ColumnID != column {
			continue
		}
		if assigneeID != "" && (t.AssigneeID == nil || *t.AssigneeID != assigneeID) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*types.Task, error) {
	if err := checkID("task", id); err != nil {
		return nil, err
	}
	return s.store.GetTask(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateTaskRequest) (*types.Task, error) {
	t := types.Task{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ColumnID:    req.ColumnID,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		Subtasks:    withSubtaskIDs(req.Subtasks),
	}
	if t.ColumnID == "" {
		t.ColumnID = types.ColumnTodo
	}
	if t.Priority == "" {
		t.Priority = types.PriorityMedium
	}
	if t.AssigneeID != nil && *t.AssigneeID == "" {
		t.AssigneeID = nil
	}
	if err := s.validate(ctx, t); err != nil {
		return nil, err
	}

	if req.Position != nil {
		t.Position = *req.Position
	} else {
		pos, err := s.nextPosition(ctx, t.ColumnID)
		if err != nil {
			return nil, err
		}
		t.Position = pos
	}

	created, err := s.store.CreateTask(ctx, t)
	if err != nil {
		return nil, err
	}
	utils.Zlog.Info("Task created",
		zap.String("id", created.ID),
		zap.String("column", string(created.ColumnID)))
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateTaskRequest) (*types.Task, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.ColumnID != nil {
		t.ColumnID = *req.ColumnID
	}
	if req.Position != nil {
		t.Position = *req.Position
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			t.AssigneeID = nil
		} else {
			t.AssigneeID = req.AssigneeID
		}
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.Subtasks != nil {
		t.Subtasks = withSubtaskIDs(*req.Subtasks)
	}

	if err := s.validate(ctx, *t); err != nil {
		return nil, err
	}
	return s.store.SaveTask(ctx, *t)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := checkID("task", id); err != nil {
		return err
	}
	return s.store.DeleteTask(ctx, id)
}

// BulkMove applies a drag-and-drop reorder. Either every move lands or none.
func (s *Service) BulkMove(ctx context.Context, moves []types.TaskMove) (*BulkUpdateResponse, error) {
	seen := make(map[string]bool, len(moves))
	for _, m := range moves {
		if err := checkID("task", m.ID); err != nil {
			return nil, err
		}
		if !types.ValidColumn(m.ColumnID) {
			return nil, fmt.Errorf("%w: unknown column %q", types.ErrValidation, m.ColumnID)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("%w: task %s appears more than once", types.ErrValidation, m.ID)
		}
		seen[m.ID] = true
	}

	if err := s.store.MoveTasks(ctx, moves); err != nil {
		return nil, err
	}
	utils.Zlog.Info("Tasks reordered", zap.Int("count", len(moves)))
	return &BulkUpdateResponse{Updated: len(moves)}, nil
}

func (s *Service) Users(ctx context.Context) ([]types.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*types.User, error) {
	return s.store.CreateUser(ctx, types.User{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
	})
}

func (s *Service) validate(ctx context.Context, t types.Task) error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", types.ErrValidation)
	}
	if !types.ValidColumn(t.ColumnID) {
		return fmt.Errorf("%w: unknown column %q", types.ErrValidation, t.ColumnID)
	}
	if !validPriority(t.Priority) {
		return fmt.Errorf("%w: priority must be low, medium or high", types.ErrValidation)
	}
	for _, st := range t.Subtasks {
		if strings.TrimSpace(st.Title) == "" {
			return fmt.Errorf("%w: subtask title is required", types.ErrValidation)
		}
	}
	if t.AssigneeID == nil {
		return nil
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.ID == *t.AssigneeID {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown assignee %s", types.ErrValidation, *t.AssigneeID)
}

// nextPosition places a new task at the bottom of its column.
func (s *Service) nextPosition(ctx context.Context, column types.ColumnID) (int, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return 0, err
	}
	next := 0
	for _, t := range tasks {
		if t.ColumnID == column && t.Position >= next {
			next = t.Position + 1
		}
	}
	return next, nil
}

func withSubtaskIDs(subtasks []types.Subtask) []types.Subtask {
	out := make([]types.Subtask, len(subtasks))
	for i, st := range subtasks {
		if st.ID == "" {
			st.ID = uuid.New().String()
		}
		out[i] = st
	}
	return out
}
