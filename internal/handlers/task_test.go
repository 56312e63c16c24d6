package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dom "taskdeck/internal/domain"
	"taskdeck/internal/dto"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTasks_MissingToken(t *testing.T) {
	r, _ := newTaskRouter(new(taskRepoMock), 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"authorization required"}`, rec.Body.String())
}

func TestTasks_GarbageToken(t *testing.T) {
	r, _ := newTaskRouter(new(taskRepoMock), 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"invalid or expired token"}`, rec.Body.String())
}

func TestCreateTask(t *testing.T) {
	repo := new(taskRepoMock)
	r, token := newTaskRouter(repo, 1)

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(task dom.Task) bool {
		return task.UserID == 1 && task.Title == "buy milk" && task.Status == dom.StatusPending
	})).Return(dom.Task{
		ID: 7, UserID: 1, Title: "buy milk", Status: dom.StatusPending,
		CreatedAt: now, UpdatedAt: now,
	}, nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":"buy milk"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(7), resp.ID)
	require.Equal(t, "pending", resp.Status)
	repo.AssertExpectations(t)
}

func TestCreateTask_EmptyTitle(t *testing.T) {
	repo := new(taskRepoMock)
	r, token := newTaskRouter(repo, 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":"   "}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListTasks_UpcomingFilter(t *testing.T) {
	repo := new(taskRepoMock)
	r, token := newTaskRouter(repo, 1)

	repo.On("List", mock.Anything, int64(1), mock.MatchedBy(func(f dom.Filter) bool {
		return f.UpcomingDays != nil && *f.UpcomingDays == 7 && !f.Overdue && !f.Today
	})).Return([]dom.Task{
		{ID: 1, UserID: 1, Title: "a", Status: dom.StatusPending},
		{ID: 2, UserID: 1, Title: "b", Status: dom.StatusCompleted},
	}, nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks?upcoming=7", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ListTasksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	require.Equal(t, "a", resp.Items[0].Title)
	repo.AssertExpectations(t)
}

func TestListTasks_BadUpcoming(t *testing.T) {
	r, token := newTaskRouter(new(taskRepoMock), 1)

	for _, q := range []string{"upcoming=soon", "upcoming=-1"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/tasks?"+q, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestListTasks_BareBoolParam(t *testing.T) {
	repo := new(taskRepoMock)
	r, token := newTaskRouter(repo, 1)

	repo.On("List", mock.Anything, int64(1), mock.MatchedBy(func(f dom.Filter) bool {
		return f.Overdue && !f.Today && f.UpcomingDays == nil
	})).Return(nil, nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks?overdue", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestUpdateTask_NotOwned(t *testing.T) {
	repo := new(taskRepoMock)
	r, token := newTaskRouter(repo, 2)

	// Task 5 belongs to someone else; the repo sees nothing for user 2.
	repo.On("GetByID", mock.Anything, int64(2), int64(5)).Return(dom.Task{}, pgx.ErrNoRows).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/tasks/5", strings.NewReader(`{"title":"hijack"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error":"task not found"}`, rec.Body.String())
}

func TestUpdateTask_ClearDueDate(t *testing.T) {
	due := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	existing := dom.Task{ID: 5, UserID: 1, Title: "t", Status: dom.StatusPending, DueDate: &due}

	repo := new(taskRepoMock)
	r, token := newTaskRouter(repo, 1)

	repo.On("GetByID", mock.Anything, int64(1), int64(5)).Return(existing, nil).Once()
	repo.On("Update", mock.Anything, int64(1), int64(5), mock.MatchedBy(func(task dom.Task) bool {
		return task.DueDate == nil
	})).Return(dom.Task{ID: 5, UserID: 1, Title: "t", Status: dom.StatusPending}, nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/tasks/5", strings.NewReader(`{"due_date":null}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteTask(t *testing.T) {
	repo := new(taskRepoMock)
	r, token := newTaskRouter(repo, 1)

	repo.On("Delete", mock.Anything, int64(1), int64(9)).Return(nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/tasks/9", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
	repo.AssertExpectations(t)
}

func TestDeleteTask_NotFound(t *testing.T) {
	repo := new(taskRepoMock)
	r, token := newTaskRouter(repo, 1)

	repo.On("Delete", mock.Anything, int64(1), int64(99)).Return(pgx.ErrNoRows).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/tasks/99", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompleteTask(t *testing.T) {
	repo := new(taskRepoMock)
	r, token := newTaskRouter(repo, 1)

	repo.On("SetStatus", mock.Anything, int64(1), int64(3), dom.StatusCompleted).
		Return(dom.Task{ID: 3, UserID: 1, Title: "t", Status: dom.StatusCompleted}, nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/tasks/3/complete", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "completed", resp.Status)
	repo.AssertExpectations(t)
}

func TestTaskProgress(t *testing.T) {
	repo := new(taskRepoMock)
	r, token := newTaskRouter(repo, 1)

	repo.On("CountByStatus", mock.Anything, int64(1)).Return(3, 2, nil).Once()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks/progress", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t,
		`{"total_tasks":3,"completed_tasks":2,"pending":1,"completion_percentage":66}`,
		rec.Body.String())
	repo.AssertExpectations(t)
}

func TestTask_InvalidID(t *testing.T) {
	r, token := newTaskRouter(new(taskRepoMock), 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/tasks/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
