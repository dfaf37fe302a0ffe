package handlers

import (
	"errors"
	"net/http"

	dom "tasklist/internal/domain"
	"tasklist/internal/dto"
	"tasklist/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgTitleRequired = "Title is required"
	msgTitleEmpty    = "Title cannot be empty"
	msgInvalidBody   = "Invalid request body"
	msgNotFound      = "Task not found"
	msgDeleted       = "Task deleted successfully"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	RegisterValidators()
	return &TaskHandler{svc: svc}
}

// List godoc
// @Summary      List all tasks, newest first
// @Tags         tasks
// @Produce      json
// @Success      200  {array}   dto.TaskResponse
// @Failure      500  {object}  dto.MessageResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, tasksToResponses(list))
}

// Get godoc
// @Summary      Get a task by ID
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  dto.MessageResponse
// @Failure      500  {object}  dto.MessageResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to fetch task")
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.MessageResponse
// @Failure      500   {object}  dto.MessageResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		h.badRequest(c, err, msgTitleRequired)
		return
	}

	t, err := h.svc.Create(c.Request.Context(), req.Title)
	if err != nil {
		if errors.Is(err, dom.ErrTitleRequired) {
			c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgTitleRequired})
			return
		}
		h.fail(c, err, "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(t))
}

// Update godoc
// @Summary      Update a task
// @Description  Partial update: omitted fields are left unchanged.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Partial update"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.MessageResponse
// @Failure      404   {object}  dto.MessageResponse
// @Failure      500   {object}  dto.MessageResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		h.badRequest(c, err, msgTitleEmpty)
		return
	}

	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), dom.TaskPatch{
		Title:     req.Title,
		Completed: req.Completed,
	})
	if err != nil {
		if errors.Is(err, dom.ErrTitleRequired) {
			c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgTitleEmpty})
			return
		}
		h.fail(c, err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.MessageResponse
// @Failure      500  {object}  dto.MessageResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete task")
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msgDeleted})
}

// badRequest answers a bind failure: validator errors get validationMsg,
// malformed bodies get msgInvalidBody with the decoder error.
func (h *TaskHandler) badRequest(c *gin.Context, err error, validationMsg string) {
	if isValidationErr(err) {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: validationMsg})
		return
	}
	c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgInvalidBody, Error: err.Error()})
}

// fail maps ErrNotFound to 404 and anything else to 500 with the store error passed through.
func (h *TaskHandler) fail(c *gin.Context, err error, msg string) {
	if errors.Is(err, dom.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.MessageResponse{Message: msgNotFound})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: msg, Error: err.Error()})
}

func taskToResponse(t dom.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt.UTC(),
	}
}

func tasksToResponses(list []dom.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, len(list))
	for i := range list {
		out[i] = taskToResponse(list[i])
	}
	return out
}
