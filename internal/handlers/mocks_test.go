package handlers_test

import (
	"context"
	"testing"
	"time"

	"taskdeck/internal/auth"
	dom "taskdeck/internal/domain"
	"taskdeck/internal/handlers"
	"taskdeck/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

type userRepoMock struct {
	mock.Mock
}

func (m *userRepoMock) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(dom.User), args.Error(1)
}

func (m *userRepoMock) GetByID(ctx context.Context, id int64) (dom.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(dom.User), args.Error(1)
}

func (m *userRepoMock) Create(ctx context.Context, username, email, passwordHash string) (dom.User, error) {
	args := m.Called(ctx, username, email, passwordHash)
	return args.Get(0).(dom.User), args.Error(1)
}

type taskRepoMock struct {
	mock.Mock
}

func (m *taskRepoMock) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(dom.Task), args.Error(1)
}

func (m *taskRepoMock) GetByID(ctx context.Context, userID, id int64) (dom.Task, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(dom.Task), args.Error(1)
}

func (m *taskRepoMock) List(ctx context.Context, userID int64, f dom.Filter) ([]dom.Task, error) {
	args := m.Called(ctx, userID, f)
	var list []dom.Task
	if v := args.Get(0); v != nil {
		list = v.([]dom.Task)
	}
	return list, args.Error(1)
}

func (m *taskRepoMock) Recent(ctx context.Context, userID int64, limit int) ([]dom.Task, error) {
	args := m.Called(ctx, userID, limit)
	var list []dom.Task
	if v := args.Get(0); v != nil {
		list = v.([]dom.Task)
	}
	return list, args.Error(1)
}

func (m *taskRepoMock) Update(ctx context.Context, userID, id int64, t dom.Task) (dom.Task, error) {
	args := m.Called(ctx, userID, id, t)
	return args.Get(0).(dom.Task), args.Error(1)
}

func (m *taskRepoMock) Delete(ctx context.Context, userID, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *taskRepoMock) SetStatus(ctx context.Context, userID, id int64, status dom.Status) (dom.Task, error) {
	args := m.Called(ctx, userID, id, status)
	return args.Get(0).(dom.Task), args.Error(1)
}

func (m *taskRepoMock) CountByStatus(ctx context.Context, userID int64) (int, int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Int(1), args.Error(2)
}

// newTaskRouter wires a real TaskService over the mock repo behind the real
// auth middleware, and returns a valid token for the given user.
func newTaskRouter(repo *taskRepoMock, userID int64) (*gin.Engine, string) {
	gin.SetMode(gin.TestMode)
	tm := auth.NewTokenManager("handler-test-secret", time.Hour)
	token, err := tm.Issue(userID)
	if err != nil {
		panic(err)
	}

	svc := service.NewTaskService(repo, nil)
	h := handlers.NewTaskHandler(svc)

	r := gin.New()
	g := r.Group("", auth.RequireToken(tm))
	g.POST("/tasks", h.Create)
	g.GET("/tasks", h.List)
	g.GET("/tasks/progress", h.Progress)
	g.PATCH("/tasks/:id", h.Update)
	g.DELETE("/tasks/:id", h.Delete)
	g.PATCH("/tasks/:id/complete", h.Complete)
	g.PATCH("/tasks/:id/reopen", h.Reopen)
	return r, token
}
