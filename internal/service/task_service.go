package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"taskdeck/internal/cache"
	dom "taskdeck/internal/domain"
	"taskdeck/internal/repo"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

// TaskPatch carries the fields present in a partial update. Nil pointers
// mean "leave unchanged". SetDueDate distinguishes "due_date absent" from
// "due_date present and null" so the date can be cleared.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *time.Time
	SetDueDate  bool
}

// TaskService owns the task lifecycle. If cache is nil, caching is disabled.
type TaskService struct {
	repo  repo.TaskRepo
	cache *cache.TaskCache
	sf    singleflight.Group
}

func NewTaskService(r repo.TaskRepo, c *cache.TaskCache) *TaskService {
	return &TaskService{repo: r, cache: c}
}

// Create stores a new pending task for the user.
func (s *TaskService) Create(ctx context.Context, userID int64, title, desc string, dueDate *time.Time) (dom.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.Task{}, ErrEmptyTitle
	}

	t, err := s.repo.Create(ctx, dom.Task{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(desc),
		Status:      dom.StatusPending,
		DueDate:     dueDate,
	})
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// List returns the user's tasks in insertion order, optionally filtered.
func (s *TaskService) List(ctx context.Context, userID int64, f dom.Filter) ([]dom.Task, error) {
	if s.cache == nil {
		return s.repo.List(ctx, userID, f)
	}
	key := "list:" + strconv.FormatInt(userID, 10) + ":" + cache.FilterKey(f)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if list, err := s.cache.GetList(ctx, userID, f); err == nil && list != nil {
			return list, nil
		}
		list, err := s.repo.List(ctx, userID, f)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetList(ctx, userID, f, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

// Recent returns up to limit of the user's tasks, newest first. Used as
// advisory context; never cached.
func (s *TaskService) Recent(ctx context.Context, userID int64, limit int) ([]dom.Task, error) {
	return s.repo.Recent(ctx, userID, limit)
}

// Update applies the fields present in the patch and bumps updated_at.
func (s *TaskService) Update(ctx context.Context, userID, id int64, p TaskPatch) (dom.Task, error) {
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	next := existing
	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		next.Description = strings.TrimSpace(*p.Description)
	}
	if p.Status != nil {
		st := dom.Status(*p.Status)
		if !st.Valid() {
			return dom.Task{}, ErrInvalidStatus
		}
		next.Status = st
	}
	if p.SetDueDate {
		next.DueDate = p.DueDate
	}
	t, err := s.repo.Update(ctx, userID, id, next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// SetStatus is the complete/reopen transition.
func (s *TaskService) SetStatus(ctx context.Context, userID, id int64, status dom.Status) (dom.Task, error) {
	if !status.Valid() {
		return dom.Task{}, ErrInvalidStatus
	}
	t, err := s.repo.SetStatus(ctx, userID, id, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// Complete marks the task done.
func (s *TaskService) Complete(ctx context.Context, userID, id int64) (dom.Task, error) {
	return s.SetStatus(ctx, userID, id, dom.StatusCompleted)
}

// Reopen marks the task pending again.
func (s *TaskService) Reopen(ctx context.Context, userID, id int64) (dom.Task, error) {
	return s.SetStatus(ctx, userID, id, dom.StatusPending)
}

// Delete hard-deletes the task.
func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateCache(ctx, userID)
	return nil
}

// Progress reports the user's completion aggregate. Percentage is the floor
// of completed/total*100, 0 when there are no tasks.
func (s *TaskService) Progress(ctx context.Context, userID int64) (dom.Progress, error) {
	if s.cache == nil {
		return s.progress(ctx, userID)
	}
	key := "progress:" + strconv.FormatInt(userID, 10)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if p, err := s.cache.GetProgress(ctx, userID); err == nil && p != nil {
			return *p, nil
		}
		p, err := s.progress(ctx, userID)
		if err != nil {
			return dom.Progress{}, err
		}
		_ = s.cache.SetProgress(ctx, userID, p)
		return p, nil
	})
	if err != nil {
		return dom.Progress{}, err
	}
	return v.(dom.Progress), nil
}

func (s *TaskService) progress(ctx context.Context, userID int64) (dom.Progress, error) {
	total, completed, err := s.repo.CountByStatus(ctx, userID)
	if err != nil {
		return dom.Progress{}, err
	}
	p := dom.Progress{Total: total, Completed: completed, Pending: total - completed}
	if total > 0 {
		p.Percentage = completed * 100 / total
	}
	return p, nil
}

func (s *TaskService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, userID)
	}
}
