package funtask_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go-hrms/internal/domain"
	"go-hrms/internal/funtask"
	funtaskerrors "go-hrms/internal/funtask/errors"
	"go-hrms/internal/middleware"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	apperror.Init()
	os.Exit(m.Run())
}

type fakeFunTaskService struct {
	CreateFn        func(ctx context.Context, actor domain.Actor, req funtask.CreateFunTaskRequest) (funtask.FunTaskResponse, error)
	GetAllFn        func(ctx context.Context, actor domain.Actor, filter funtask.ListFilter) ([]funtask.FunTaskResponse, error)
	GetByEmployeeFn func(ctx context.Context, actor domain.Actor, employeeID string, filter funtask.ListFilter) ([]funtask.FunTaskResponse, error)
	GetByIDFn       func(ctx context.Context, actor domain.Actor, id string) (funtask.FunTaskResponse, error)
	UpdateFn        func(ctx context.Context, actor domain.Actor, id string, req funtask.UpdateFunTaskRequest) (funtask.FunTaskResponse, error)
	DeleteFn        func(ctx context.Context, actor domain.Actor, id string) error
	LeaderboardFn   func(ctx context.Context, actor domain.Actor, limit int) ([]funtask.LeaderboardEntry, error)
}

func (f *fakeFunTaskService) Create(ctx context.Context, actor domain.Actor, req funtask.CreateFunTaskRequest) (funtask.FunTaskResponse, error) {
	return f.CreateFn(ctx, actor, req)
}
func (f *fakeFunTaskService) GetAll(ctx context.Context, actor domain.Actor, filter funtask.ListFilter) ([]funtask.FunTaskResponse, error) {
	return f.GetAllFn(ctx, actor, filter)
}
func (f *fakeFunTaskService) GetByEmployee(ctx context.Context, actor domain.Actor, employeeID string, filter funtask.ListFilter) ([]funtask.FunTaskResponse, error) {
	return f.GetByEmployeeFn(ctx, actor, employeeID, filter)
}
func (f *fakeFunTaskService) GetByID(ctx context.Context, actor domain.Actor, id string) (funtask.FunTaskResponse, error) {
	return f.GetByIDFn(ctx, actor, id)
}
func (f *fakeFunTaskService) Update(ctx context.Context, actor domain.Actor, id string, req funtask.UpdateFunTaskRequest) (funtask.FunTaskResponse, error) {
	return f.UpdateFn(ctx, actor, id, req)
}
func (f *fakeFunTaskService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return f.DeleteFn(ctx, actor, id)
}
func (f *fakeFunTaskService) Leaderboard(ctx context.Context, actor domain.Actor, limit int) ([]funtask.LeaderboardEntry, error) {
	return f.LeaderboardFn(ctx, actor, limit)
}

func newTestContext(method, target, body string, actor *domain.Actor) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	if body != "" {
		c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request = httptest.NewRequest(method, target, nil)
	}
	if actor != nil {
		c.Set(middleware.ContextActor, *actor)
		c.Set(middleware.ContextEmployeeID, actor.ID.String())
		c.Set(middleware.ContextRole, actor.Role)
	}
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.ApiEnvelope {
	t.Helper()
	var env response.ApiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestFunTaskHandler_Create(t *testing.T) {
	manager := domain.Actor{ID: uuid.New(), Role: domain.RoleManager}

	t.Run("success", func(t *testing.T) {
		assignee := uuid.NewString()
		svc := &fakeFunTaskService{
			CreateFn: func(ctx context.Context, actor domain.Actor, req funtask.CreateFunTaskRequest) (funtask.FunTaskResponse, error) {
				assert.Equal(t, assignee, req.AssignedToID)
				assert.Equal(t, 25, req.Points)
				return funtask.FunTaskResponse{ID: uuid.NewString(), Title: req.Title, Points: req.Points, Status: funtask.StatusPending}, nil
			},
		}
		h := funtask.NewHandler(svc)
		body := `{"title":"Quiz","description":"Friday quiz","points":25,"assignedTo":"` + assignee + `"}`
		c, w := newTestContext(http.MethodPost, "/api/v1/fun-tasks", body, &manager)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"pending"`)
	})

	t.Run("missing fields use fun task messages", func(t *testing.T) {
		h := funtask.NewHandler(&fakeFunTaskService{})
		c, w := newTestContext(http.MethodPost, "/api/v1/fun-tasks", `{}`, &manager)

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, apperror.CodeValidation, env.Error.Code)
		assert.Equal(t, "Please add a title, Please add a description, Please add points, Please assign the task to an employee", env.Message)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		svc := &fakeFunTaskService{
			CreateFn: func(ctx context.Context, actor domain.Actor, req funtask.CreateFunTaskRequest) (funtask.FunTaskResponse, error) {
				return funtask.FunTaskResponse{}, funtaskerrors.ErrAssigneeNotFound
			},
		}
		h := funtask.NewHandler(svc)
		body := `{"title":"Quiz","description":"Friday quiz","points":25,"assignedTo":"` + uuid.NewString() + `"}`
		c, w := newTestContext(http.MethodPost, "/api/v1/fun-tasks", body, &manager)

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Assigned employee does not exist")
	})

	t.Run("no actor", func(t *testing.T) {
		h := funtask.NewHandler(&fakeFunTaskService{})
		c, w := newTestContext(http.MethodPost, "/api/v1/fun-tasks", `{}`, nil)

		h.Create(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestFunTaskHandler_Update(t *testing.T) {
	me := domain.Actor{ID: uuid.New(), Role: domain.RoleEmployee}

	t.Run("status only", func(t *testing.T) {
		svc := &fakeFunTaskService{
			UpdateFn: func(ctx context.Context, actor domain.Actor, id string, req funtask.UpdateFunTaskRequest) (funtask.FunTaskResponse, error) {
				assert.Equal(t, "t1", id)
				assert.Nil(t, req.Title)
				assert.Equal(t, funtask.StatusCompleted, *req.Status)
				return funtask.FunTaskResponse{ID: id, Status: *req.Status}, nil
			},
		}
		h := funtask.NewHandler(svc)
		c, w := newTestContext(http.MethodPut, "/api/v1/fun-tasks/t1", `{"status":"completed"}`, &me)
		c.Params = gin.Params{{Key: "id", Value: "t1"}}

		h.Update(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		h := funtask.NewHandler(&fakeFunTaskService{})
		c, w := newTestContext(http.MethodPut, "/api/v1/fun-tasks/t1", `{"status":"done"}`, &me)
		c.Params = gin.Params{{Key: "id", Value: "t1"}}

		h.Update(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeEnvelope(t, w).Message, "Status must be one of: pending, completed, approved")
	})

	t.Run("forbidden", func(t *testing.T) {
		svc := &fakeFunTaskService{
			UpdateFn: func(ctx context.Context, actor domain.Actor, id string, req funtask.UpdateFunTaskRequest) (funtask.FunTaskResponse, error) {
				return funtask.FunTaskResponse{}, apperror.ErrForbidden
			},
		}
		h := funtask.NewHandler(svc)
		c, w := newTestContext(http.MethodPut, "/api/v1/fun-tasks/t1", `{"title":"Mine"}`, &me)
		c.Params = gin.Params{{Key: "id", Value: "t1"}}

		h.Update(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestFunTaskHandler_List(t *testing.T) {
	me := domain.Actor{ID: uuid.New(), Role: domain.RoleEmployee}

	t.Run("filters and paginates", func(t *testing.T) {
		svc := &fakeFunTaskService{
			GetAllFn: func(ctx context.Context, actor domain.Actor, filter funtask.ListFilter) ([]funtask.FunTaskResponse, error) {
				assert.Equal(t, funtask.StatusCompleted, filter.Status)
				assert.Equal(t, "e1", filter.AssignedToID)
				return []funtask.FunTaskResponse{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil
			},
		}
		h := funtask.NewHandler(svc)
		c, w := newTestContext(http.MethodGet, "/api/v1/fun-tasks?status=Completed&assigned_to=e1&page=2&page_size=2", "", &me)

		h.GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, int64(3), env.Meta.Total)
		assert.Contains(t, w.Body.String(), `"id":"c"`)
		assert.NotContains(t, w.Body.String(), `"id":"a"`)
	})

	t.Run("leaderboard limit", func(t *testing.T) {
		svc := &fakeFunTaskService{
			LeaderboardFn: func(ctx context.Context, actor domain.Actor, limit int) ([]funtask.LeaderboardEntry, error) {
				assert.Equal(t, 5, limit)
				return []funtask.LeaderboardEntry{{Rank: 1, EmployeeID: "e1", Name: "Jane", Points: 40}}, nil
			},
		}
		h := funtask.NewHandler(svc)
		c, w := newTestContext(http.MethodGet, "/api/v1/fun-tasks/leaderboard?limit=5", "", &me)

		h.Leaderboard(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"points":40`)
	})

	t.Run("leaderboard default limit", func(t *testing.T) {
		svc := &fakeFunTaskService{
			LeaderboardFn: func(ctx context.Context, actor domain.Actor, limit int) ([]funtask.LeaderboardEntry, error) {
				assert.Equal(t, funtask.DefaultLeaderboardN, limit)
				return []funtask.LeaderboardEntry{}, nil
			},
		}
		h := funtask.NewHandler(svc)
		c, w := newTestContext(http.MethodGet, "/api/v1/fun-tasks/leaderboard", "", &me)

		h.Leaderboard(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
