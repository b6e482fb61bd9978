package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profilarr/profilarr/internal/scheduler"
	"github.com/profilarr/profilarr/internal/testutil"
)

func newTaskFixture(t *testing.T) *echo.Echo {
	t.Helper()

	sched, err := scheduler.New(testutil.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Stop() })

	require.NoError(t, sched.RegisterTask(scheduler.TaskConfig{
		ID:    "nightly",
		Name:  "Nightly maintenance",
		Every: time.Hour,
		Func:  func(ctx context.Context) error { return nil },
	}))

	e := echo.New()
	NewTaskHandlers(sched).RegisterRoutes(e.Group("/api/v1/scheduler/tasks"))
	return e
}

func TestListTasks(t *testing.T) {
	e := newTaskFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scheduler/tasks", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []scheduler.TaskInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "nightly", tasks[0].ID)
	assert.Equal(t, "Nightly maintenance", tasks[0].Name)
}

func TestGetTask(t *testing.T) {
	e := newTaskFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scheduler/tasks/nightly", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var task scheduler.TaskInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, "nightly", task.ID)
}

func TestGetTaskUnknownIsNotFound(t *testing.T) {
	e := newTaskFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scheduler/tasks/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunTaskUnknownIsBadRequest(t *testing.T) {
	e := newTaskFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/tasks/nope/run", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
