package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"tasklist/internal/cache"
	dom "tasklist/internal/domain"
	"tasklist/internal/repo"

	"golang.org/x/sync/singleflight"
)

type TaskService struct {
	repo  repo.TaskRepo
	cache *cache.TaskCache
	sf    singleflight.Group
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, c *cache.TaskCache) *TaskService {
	return &TaskService{repo: r, cache: c}
}

// listFillTimeout bounds a shared list fill, which runs detached from the
// request that started it.
const listFillTimeout = 10 * time.Second

// List returns every task, newest first. The result is never nil.
func (s *TaskService) List(ctx context.Context) ([]dom.Task, error) {
	if s.cache == nil {
		return s.list(ctx)
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		return s.list(ctx)
	}

	// Callers only join a fill started under the same generation, so a list
	// requested after a write never comes from a store read made before it.
	ch := s.sf.DoChan("list:"+strconv.FormatInt(gen, 10), func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listFillTimeout)
		defer cancel()

		if list, err := s.cache.GetList(ctx); err == nil && list != nil {
			return list, nil
		}
		list, err := s.list(ctx)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetList(ctx, gen, list)
		return list, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]dom.Task), nil
	case <-ctx.Done():
		return nil, storeErr("list tasks", ctx.Err())
	}
}

func (s *TaskService) list(ctx context.Context) ([]dom.Task, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}
	if list == nil {
		list = []dom.Task{}
	}
	return list, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (dom.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Task{}, storeErr("get task", err)
	}
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, title string) (dom.Task, error) {
	title, err := validateTitle(title)
	if err != nil {
		return dom.Task{}, err
	}
	t, err := s.repo.Create(ctx, dom.Task{Title: title, Completed: false})
	if err != nil {
		return dom.Task{}, storeErr("create task", err)
	}
	s.invalidateCache(ctx)
	return t, nil
}

// Update applies patch to the task with the given id. Nil fields are left unchanged;
// a supplied title is trimmed and must stay non-empty.
func (s *TaskService) Update(ctx context.Context, id string, patch dom.TaskPatch) (dom.Task, error) {
	if patch.Title != nil {
		title, err := validateTitle(*patch.Title)
		if err != nil {
			return dom.Task{}, err
		}
		patch.Title = &title
	}
	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return dom.Task{}, storeErr("update task", err)
	}
	if !patch.Empty() {
		s.invalidateCache(ctx)
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr("delete task", err)
	}
	s.invalidateCache(ctx)
	return nil
}

// Ping reports whether the underlying store is reachable.
func (s *TaskService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// invalidateCache runs even if the request was cancelled after the write landed.
func (s *TaskService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(context.WithoutCancel(ctx))
	}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", dom.ErrTitleRequired
	}
	return title, nil
}

// storeErr passes ErrNotFound through and wraps everything else as a StoreError.
func storeErr(op string, err error) error {
	if errors.Is(err, dom.ErrNotFound) {
		return dom.ErrNotFound
	}
	return &dom.StoreError{Op: op, Err: err}
}
