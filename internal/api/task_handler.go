package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dealroom/internal/model"
	"dealroom/internal/service/notification"
	"dealroom/internal/service/task"
)

type TaskHandler struct {
	tasks         *task.Service
	notifications *notification.Service
	logger        *zap.Logger
}

func NewTaskHandler(tasks *task.Service, notifications *notification.Service, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, notifications: notifications, logger: logger}
}

type updateTaskRequest struct {
	Status      *string  `json:"status"`
	ActualHours *float64 `json:"actualHours"`
}

// ListMine handles GET /tasks/my
func (h *TaskHandler) ListMine(c *gin.Context) {
	tasks, err := h.tasks.ListMine(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Update handles PATCH /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	t, err := h.tasks.Update(c.Request.Context(), userID(c), c.Param("id"), model.TaskPatch{
		Status:      req.Status,
		ActualHours: req.ActualHours,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Notifications handles GET /notifications?limit=
func (h *TaskHandler) Notifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.notifications.List(c.Request.Context(), userID(c), limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
