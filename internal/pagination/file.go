package pagination

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"tasker/internal/service"
)

type savedView struct {
	Page   int    `json:"page"`
	Filter string `json:"filter"`
}

// Load restores the State saved at path. A missing or unreadable file
// yields a fresh State.
func Load(path string, perPage int) *State {
	data, err := os.ReadFile(path)
	if err != nil {
		return New(perPage)
	}
	var v savedView
	if err := json.Unmarshal(data, &v); err != nil {
		return New(perPage)
	}
	return Restore(service.Query{Page: v.Page, Filter: service.Filter(v.Filter)}, perPage)
}

// Save writes the current page and filter to path.
func Save(path string, s *State) error {
	q := s.Current()
	data, err := json.Marshal(savedView{Page: q.Page, Filter: string(q.Filter)})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create view directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("save view: %w", err)
	}
	return nil
}

// Reset removes the saved view, if any.
func Reset(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
