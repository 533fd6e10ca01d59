package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pblonline/ops-dashboard/internal/types"
)

type memoryStore struct {
	tasks map[string]types.Task
	users []types.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tasks: map[string]types.Task{}}
}

func (m *memoryStore) ListTasks(context.Context) ([]types.Task, error) {
	out := []types.Task{}
	for _, t := range m.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (m *memoryStore) GetTask(_ context.Context, id string) (*types.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &t, nil
}

func (m *memoryStore) CreateTask(_ context.Context, t types.Task) (*types.Task, error) {
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.tasks[t.ID] = t
	return &t, nil
}

func (m *memoryStore) SaveTask(_ context.Context, t types.Task) (*types.Task, error) {
	if _, ok := m.tasks[t.ID]; !ok {
		return nil, types.ErrNotFound
	}
	m.tasks[t.ID] = t
	return &t, nil
}

func (m *memoryStore) DeleteTask(_ context.Context, id string) error {
	if _, ok := m.tasks[id]; !ok {
		return types.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memoryStore) MoveTasks(_ context.Context, moves []types.TaskMove) error {
	for _, mv := range moves {
		if _, ok := m.tasks[mv.ID]; !ok {
			return fmt.Errorf("task %s: %w", mv.ID, types.ErrNotFound)
		}
	}
	for _, mv := range moves {
		t := m.tasks[mv.ID]
		t.ColumnID = mv.ColumnID
		t.Position = mv.Position
		m.tasks[mv.ID] = t
	}
	return nil
}

func (m *memoryStore) ListUsers(context.Context) ([]types.User, error) {
	return m.users, nil
}

func (m *memoryStore) CreateUser(_ context.Context, u types.User) (*types.User, error) {
	for _, existing := range m.users {
		if existing.Email == types.NormalizeEmail(u.Email) {
			return nil, types.ErrConflict
		}
	}
	u.Email = types.NormalizeEmail(u.Email)
	m.users = append(m.users, u)
	return &u, nil
}

func TestCreate_DefaultsAndAppendsToColumn(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryStore())

	first, err := svc.Create(ctx, CreateTaskRequest{Title: "Plan webinar"})
	require.NoError(t, err)
	assert.Equal(t, types.ColumnTodo, first.ColumnID)
	assert.Equal(t, types.PriorityMedium, first.Priority)
	assert.Equal(t, 0, first.Position)

	second, err := svc.Create(ctx, CreateTaskRequest{
		Title:    "Record intro",
		Subtasks: []types.Subtask{{Title: "Write script"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Position)
	require.Len(t, second.Subtasks, 1)
	assert.NotEmpty(t, second.Subtasks[0].ID)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryStore())

	_, err := svc.Create(ctx, CreateTaskRequest{Title: "x", ColumnID: "backlog"})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = svc.Create(ctx, CreateTaskRequest{Title: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, types.ErrValidation)

	ghost := uuid.New().String()
	_, err = svc.Create(ctx, CreateTaskRequest{Title: "x", AssigneeID: &ghost})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = svc.Create(ctx, CreateTaskRequest{Title: "x", Subtasks: []types.Subtask{{Title: " "}}})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestBoard_FixedColumnOrder(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewService(store)

	for _, req := range []CreateTaskRequest{
		{Title: "b", ColumnID: types.ColumnDone, Position: intPtr(2)},
		{Title: "a", ColumnID: types.ColumnDone, Position: intPtr(1)},
		{Title: "c", ColumnID: types.ColumnReview},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	board, err := svc.Board(ctx)
	require.NoError(t, err)
	require.Len(t, board.Columns, 4)
	ids := []types.ColumnID{}
	for _, col := range board.Columns {
		ids = append(ids, col.ID)
	}
	assert.Equal(t, []types.ColumnID{types.ColumnTodo, types.ColumnInProgress, types.ColumnReview, types.ColumnDone}, ids)
	assert.Empty(t, board.Columns[0].Tasks)
	assert.NotNil(t, board.Columns[0].Tasks)
	require.Len(t, board.Columns[3].Tasks, 2)
	assert.Equal(t, "a", board.Columns[3].Tasks[0].Title)
	assert.Equal(t, "b", board.Columns[3].Tasks[1].Title)
}

func TestUpdate_PartialAndClearAssignee(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.users = []types.User{{ID: uuid.New().String(), Name: "Sam"}}
	svc := NewService(store)

	task, err := svc.Create(ctx, CreateTaskRequest{Title: "Edit video", AssigneeID: &store.users[0].ID})
	require.NoError(t, err)

	high := types.PriorityHigh
	updated, err := svc.Update(ctx, task.ID, UpdateTaskRequest{Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, "Edit video", updated.Title)
	assert.Equal(t, types.PriorityHigh, updated.Priority)
	require.NotNil(t, updated.AssigneeID)

	empty := ""
	updated, err = svc.Update(ctx, task.ID, UpdateTaskRequest{AssigneeID: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.AssigneeID)

	_, err = svc.Update(ctx, "nope", UpdateTaskRequest{})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestBulkMove_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewService(store)
	task, err := svc.Create(ctx, CreateTaskRequest{Title: "Ship"})
	require.NoError(t, err)

	_, err = svc.BulkMove(ctx, []types.TaskMove{
		{ID: task.ID, ColumnID: types.ColumnDone, Position: 0},
		{ID: uuid.New().String(), ColumnID: types.ColumnDone, Position: 1},
	})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, types.ColumnTodo, store.tasks[task.ID].ColumnID)

	_, err = svc.BulkMove(ctx, []types.TaskMove{{ID: task.ID, ColumnID: "archive"}})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = svc.BulkMove(ctx, []types.TaskMove{
		{ID: task.ID, ColumnID: types.ColumnDone},
		{ID: task.ID, ColumnID: types.ColumnReview},
	})
	assert.ErrorIs(t, err, types.ErrValidation)

	resp, err := svc.BulkMove(ctx, []types.TaskMove{{ID: task.ID, ColumnID: types.ColumnDone, Position: 3}})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, types.ColumnDone, store.tasks[task.ID].ColumnID)
	assert.Equal(t, 3, store.tasks[task.ID].Position)
}

func TestList_Filters(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.users = []types.User{{ID: uuid.New().String(), Name: "Sam"}}
	svc := NewService(store)

	_, err := svc.Create(ctx, CreateTaskRequest{Title: "mine", AssigneeID: &store.users[0].ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateTaskRequest{Title: "done", ColumnID: types.ColumnDone})
	require.NoError(t, err)

	tasks, err := svc.List(ctx, "", store.users[0].ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "mine", tasks[0].Title)

	tasks, err = svc.List(ctx, types.ColumnDone, "")
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	_, err = svc.List(ctx, "nowhere", "")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestController_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newMemoryStore()
	r := gin.New()
	RegisterRoutes(r.Group("/api"), NewService(store))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/users",
		bytes.NewBufferString(`{"name":"Sam","email":"Sam@Example.com"}`)))
	require.Equal(t, http.StatusCreated, w.Code)
	var user types.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "sam@example.com", user.Email)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/users",
		bytes.NewBufferString(`{"name":"Sam","email":"sam@example.com"}`)))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString(`{"description":"no title"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/tasks/bulk", bytes.NewBufferString(`{"updates":[]}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/board", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var board types.Board
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.Len(t, board.Columns, 4)
	assert.Len(t, board.Users, 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/tasks/"+uuid.New().String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func intPtr(i int) *int { return &i }
