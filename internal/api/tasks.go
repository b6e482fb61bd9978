package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/profilarr/profilarr/internal/scheduler"
)

// TaskHandlers exposes the scheduler's task registry over HTTP.
type TaskHandlers struct {
	scheduler *scheduler.Scheduler
}

// NewTaskHandlers creates a new task handlers instance.
func NewTaskHandlers(sched *scheduler.Scheduler) *TaskHandlers {
	return &TaskHandlers{scheduler: sched}
}

// RegisterRoutes registers task routes on the given group.
func (h *TaskHandlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListTasks)
	g.GET("/:id", h.GetTask)
	g.POST("/:id/run", h.RunTask)
}

// ListTasks returns every registered task with its schedule and run times.
func (h *TaskHandlers) ListTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.ListTasks())
}

// GetTask returns a single task by id.
func (h *TaskHandlers) GetTask(c echo.Context) error {
	task, err := h.scheduler.GetTask(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, task)
}

// RunTask triggers a task outside its schedule. The run is asynchronous;
// 202 means the task was handed to the scheduler, not that it finished.
func (h *TaskHandlers) RunTask(c echo.Context) error {
	taskID := c.Param("id")
	if err := h.scheduler.RunNow(taskID); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"message": "Task started",
		"taskId":  taskID,
	})
}
