package tasks

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pblonline/ops-dashboard/internal/shared"
	"github.com/pblonline/ops-dashboard/internal/types"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// Board handles GET /tasks/board
func (ctrl *Controller) Board(c *gin.Context) {
	board, err := ctrl.service.Board(c.Request.Context())
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// ListTasks handles GET /tasks with optional columnId and assigneeId filters
func (ctrl *Controller) ListTasks(c *gin.Context) {
	tasks, err := ctrl.service.List(c.Request.Context(), types.ColumnID(c.Query("columnId")), c.Query("assigneeId"))
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// GetTask handles GET /tasks/:id
func (ctrl *Controller) GetTask(c *gin.Context) {
	task, err := ctrl.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTask handles POST /tasks
func (ctrl *Controller) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BadRequest(c, err)
		return
	}

	task, err := ctrl.service.Create(c.Request.Context(), req)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /tasks/:id
func (ctrl *Controller) UpdateTask(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BadRequest(c, err)
		return
	}

	task, err := ctrl.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/:id
func (ctrl *Controller) DeleteTask(c *gin.Context) {
	if err := ctrl.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		shared.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkUpdate handles POST /tasks/bulk
func (ctrl *Controller) BulkUpdate(c *gin.Context) {
	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BadRequest(c, err)
		return
	}

	resp, err := ctrl.service.BulkMove(c.Request.Context(), req.Updates)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Users handles GET /users
func (ctrl *Controller) Users(c *gin.Context) {
	users, err := ctrl.service.Users(c.Request.Context())
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// CreateUser handles POST /users
func (ctrl *Controller) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BadRequest(c, err)
		return
	}

	user, err := ctrl.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
