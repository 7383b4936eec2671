package taskapi

import (
	"encoding/json"
	"fmt"
	"time"

	"tasker/internal/service"
)

// Wire shapes use pointers so that a missing field can be told apart from
// a zero value.
type listResponse struct {
	Tasks *[]json.RawMessage `json:"tasks"`
}

type taskJSON struct {
	ID          *int64  `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	CreatedAt   *string `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
	UserID      *int64  `json:"user_id"`
}

func (l listResponse) toTasks() ([]service.Task, error) {
	if l.Tasks == nil {
		return nil, service.Errorf(service.KindMalformedResponse, "response has no tasks field")
	}
	tasks := make([]service.Task, 0, len(*l.Tasks))
	for i, raw := range *l.Tasks {
		t, err := decodeTask(raw)
		if err != nil {
			return nil, &service.Error{
				Kind:    service.KindMalformedResponse,
				Message: fmt.Sprintf("task %d: %v", i, err),
				Err:     err,
			}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func decodeTask(raw json.RawMessage) (service.Task, error) {
	var tj taskJSON
	if err := json.Unmarshal(raw, &tj); err != nil {
		return service.Task{}, &service.Error{Kind: service.KindMalformedResponse, Message: "malformed task object", Err: err}
	}
	switch {
	case tj.ID == nil:
		return service.Task{}, service.Errorf(service.KindMalformedResponse, "task has no id")
	case tj.Title == nil:
		return service.Task{}, service.Errorf(service.KindMalformedResponse, "task %d has no title", *tj.ID)
	case tj.Completed == nil:
		return service.Task{}, service.Errorf(service.KindMalformedResponse, "task %d has no completed flag", *tj.ID)
	}

	t := service.Task{
		ID:        *tj.ID,
		Title:     *tj.Title,
		Completed: *tj.Completed,
	}
	if tj.Description != nil {
		t.Description = *tj.Description
	}
	if tj.UserID != nil {
		t.UserID = *tj.UserID
	}
	t.CreatedAt = parseTime(tj.CreatedAt)
	t.UpdatedAt = parseTime(tj.UpdatedAt)
	return t, nil
}

// The production server emits naive ISO-8601 timestamps without a zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTime(s *string) time.Time {
	if s == nil {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
