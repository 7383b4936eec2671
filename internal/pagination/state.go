// Package pagination tracks which page of tasks is on screen.
package pagination

import (
	"sync"

	"tasker/internal/service"
)

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 5

// State holds the current page and filter. The page size is fixed for the
// lifetime of a State. State is safe for concurrent use.
type State struct {
	mu      sync.Mutex
	page    int
	perPage int
	filter  service.Filter
}

// New returns a State on page 1 with no filter.
func New(perPage int) *State {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &State{page: 1, perPage: perPage, filter: service.FilterAll}
}

// Restore rebuilds a State from a saved query. Out-of-range fields fall back
// to their defaults; perPage always wins over the saved page size.
func Restore(q service.Query, perPage int) *State {
	s := New(perPage)
	if q.Page > 1 {
		s.page = q.Page
	}
	if f, err := service.ParseFilter(string(q.Filter)); err == nil {
		s.filter = f
	}
	return s
}

// Current returns the query for the current page.
func (s *State) Current() service.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return service.Query{Page: s.page, PerPage: s.perPage, Filter: s.filter}
}

// Next advances one page. The total is unknown, so this never fails;
// a page past the end simply lists empty.
func (s *State) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page++
}

// Prev goes back one page. On page 1 it does nothing.
func (s *State) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page > 1 {
		s.page--
	}
}

// SetFilter replaces the filter and keeps the page.
func (s *State) SetFilter(f service.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}
