// Package tasksync keeps the task list on screen in step with the server.
//
// A Syncer owns the pagination state for one client lifetime. Every
// successful mutation is followed by a fresh list of the current page, and a
// list response that no longer matches the current query is dropped.
package tasksync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"tasker/internal/pagination"
	"tasker/internal/service"
)

// ErrStale is returned by Refresh when the page, the filter, or a newer
// refresh superseded the request while it was in flight. A failure of the
// discarded request is wrapped alongside it.
var ErrStale = errors.New("stale list response discarded")

// ResyncError reports a mutation that succeeded on the server but whose
// follow-up list failed. The mutation is not retried.
type ResyncError struct {
	Err error
}

func (e *ResyncError) Error() string {
	return fmt.Sprintf("change saved, but reloading tasks failed: %v", e.Err)
}

func (e *ResyncError) Unwrap() error { return e.Err }

// Denier drops the session when the server refuses the credential.
// *session.Guard implements it.
type Denier interface {
	Deny()
}

// Syncer is safe for concurrent use.
type Syncer struct {
	svc    service.Service
	pages  *pagination.State
	denier Denier
	logger zerolog.Logger

	inFlight atomic.Int32

	mu     sync.Mutex
	gen    uint64
	tasks  []service.Task
	query  service.Query
	loaded bool
}

// New returns a Syncer. A nil denier means Unauthorized failures are only
// reported.
func New(svc service.Service, pages *pagination.State, denier Denier, logger zerolog.Logger) *Syncer {
	if pages == nil {
		pages = pagination.New(pagination.DefaultPerPage)
	}
	return &Syncer{svc: svc, pages: pages, denier: denier, logger: logger}
}

// Pages returns the pagination state the Syncer lists with.
func (s *Syncer) Pages() *pagination.State { return s.pages }

// InFlight reports whether any request is outstanding.
func (s *Syncer) InFlight() bool { return s.inFlight.Load() > 0 }

// Snapshot returns the last accepted list and the query that produced it.
// ok is false until a refresh has succeeded.
func (s *Syncer) Snapshot() (tasks []service.Task, q service.Query, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks), s.query, s.loaded
}

// Refresh lists the current page. On failure the previous snapshot is kept.
func (s *Syncer) Refresh(ctx context.Context) ([]service.Task, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	q := s.pages.Current()
	s.mu.Unlock()

	tasks, err := track(s, func() ([]service.Task, error) {
		return s.svc.ListTasks(ctx, q)
	})
	s.checkAuth(err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || q != s.pages.Current() {
		s.logger.Debug().
			Int("page", q.Page).
			Str("filter", string(q.Filter)).
			Msg("dropping stale list response")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStale, err)
		}
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	s.tasks = tasks
	s.query = q
	s.loaded = true
	return slices.Clone(tasks), nil
}

// Next moves one page forward and refreshes.
func (s *Syncer) Next(ctx context.Context) ([]service.Task, error) {
	s.pages.Next()
	return s.Refresh(ctx)
}

// Prev moves one page back, stopping at page 1, and refreshes.
func (s *Syncer) Prev(ctx context.Context) ([]service.Task, error) {
	s.pages.Prev()
	return s.Refresh(ctx)
}

// SetFilter changes the filter and refreshes.
func (s *Syncer) SetFilter(ctx context.Context, f service.Filter) ([]service.Task, error) {
	s.pages.SetFilter(f)
	return s.Refresh(ctx)
}

// Get fetches one task. Nothing is reloaded.
func (s *Syncer) Get(ctx context.Context, id int64) (service.Task, error) {
	task, err := track(s, func() (service.Task, error) {
		return s.svc.GetTask(ctx, id)
	})
	s.checkAuth(err)
	return task, err
}

// Create adds a task, then reloads the current page.
func (s *Syncer) Create(ctx context.Context, title, description string) (service.Task, error) {
	task, err := track(s, func() (service.Task, error) {
		return s.svc.CreateTask(ctx, title, description)
	})
	return task, s.afterMutation(ctx, err)
}

// Update replaces a task's title and description, then reloads.
func (s *Syncer) Update(ctx context.Context, id int64, title, description string) (service.Task, error) {
	task, err := track(s, func() (service.Task, error) {
		return s.svc.UpdateTask(ctx, id, title, description)
	})
	return task, s.afterMutation(ctx, err)
}

// SetCompleted flips a task's completed flag, then reloads.
func (s *Syncer) SetCompleted(ctx context.Context, id int64, completed bool) (service.Task, error) {
	task, err := track(s, func() (service.Task, error) {
		return s.svc.SetCompleted(ctx, id, completed)
	})
	return task, s.afterMutation(ctx, err)
}

// Delete removes a task, then reloads.
func (s *Syncer) Delete(ctx context.Context, id int64) error {
	_, err := track(s, func() (struct{}, error) {
		return struct{}{}, s.svc.DeleteTask(ctx, id)
	})
	return s.afterMutation(ctx, err)
}

// afterMutation runs once the mutation has fully resolved. A failed
// mutation is returned as is and nothing is reloaded.
func (s *Syncer) afterMutation(ctx context.Context, err error) error {
	if err != nil {
		s.checkAuth(err)
		return err
	}
	_, err = s.Refresh(ctx)
	switch {
	case err == nil, errors.Is(err, ErrStale):
		return nil
	default:
		return &ResyncError{Err: err}
	}
}

func (s *Syncer) checkAuth(err error) {
	if s.denier == nil || !errors.Is(err, service.ErrUnauthorized) {
		return
	}
	s.logger.Debug().Err(err).Msg("server refused credential")
	s.denier.Deny()
}

func track[T any](s *Syncer, call func() (T, error)) (T, error) {
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	return call()
}
