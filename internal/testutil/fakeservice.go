// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"tasker/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// It enforces the same validation as the real client so that callers can be
// tested without HTTP.
type FakeService struct {
	mu     sync.Mutex
	users  map[string]string
	tasks  []service.Task
	nextID int64

	// Token is what Login returns on success.
	Token string

	// Calls counts every method invocation that got past local validation.
	Calls int

	// Hook, if set, runs at the start of every counted call. Tests use it to
	// block a call or to mutate state mid-flight.
	Hook func(method string)

	// Error injection for testing
	RegisterErr     error
	LoginErr        error
	ListTasksErr    error
	GetTaskErr      error
	CreateTaskErr   error
	UpdateTaskErr   error
	DeleteTaskErr   error
	SetCompletedErr error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:  make(map[string]string),
		nextID: 1,
		Token:  UnsignedToken(map[string]any{"sub": "1"}),
	}
}

// AddTask seeds a task and returns its id.
func (f *FakeService) AddTask(title string, completed bool) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title, Completed: completed})
	return id
}

// Tasks returns a copy of all stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// CallCount returns Calls under the lock.
func (f *FakeService) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

func (f *FakeService) enter(method string) {
	f.mu.Lock()
	f.Calls++
	hook := f.Hook
	f.mu.Unlock()
	if hook != nil {
		hook(method)
	}
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, username, password string) error {
	username, password, err := service.NormalizeCredentials(username, password)
	if err != nil {
		return err
	}
	f.enter("Register")
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; ok {
		return service.Errorf(service.KindRejected, "username already taken")
	}
	f.users[username] = password
	return nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, username, password string) (string, error) {
	username, password, err := service.NormalizeCredentials(username, password)
	if err != nil {
		return "", err
	}
	f.enter("Login")
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.users[username]; !ok || pw != password {
		return "", &service.Error{Kind: service.KindRejected, Message: "bad username or password", Status: 401}
	}
	return f.Token, nil
}

// ListTasks implements service.Service. Newest tasks come first, as on the
// real server.
func (f *FakeService) ListTasks(ctx context.Context, q service.Query) ([]service.Task, error) {
	f.enter("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []service.Task
	for i := len(f.tasks) - 1; i >= 0; i-- {
		t := f.tasks[i]
		switch q.Filter {
		case service.FilterCompleted:
			if !t.Completed {
				continue
			}
		case service.FilterOpen:
			if t.Completed {
				continue
			}
		}
		matched = append(matched, t)
	}

	result := []service.Task{}
	start := (q.Page - 1) * q.PerPage
	if start >= len(matched) || start < 0 {
		return result, nil
	}
	end := min(start+q.PerPage, len(matched))
	return append(result, matched[start:end]...), nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id int64) (service.Task, error) {
	f.enter("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	return f.patch(id, func(*service.Task) {})
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, title, description string) (service.Task, error) {
	title, err := service.NormalizeTitle(title)
	if err != nil {
		return service.Task{}, err
	}
	f.enter("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	task := service.Task{ID: f.nextID, Title: title, Description: description}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int64, title, description string) (service.Task, error) {
	title, err := service.NormalizeTitle(title)
	if err != nil {
		return service.Task{}, err
	}
	f.enter("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	return f.patch(id, func(t *service.Task) {
		t.Title = title
		t.Description = description
	})
}

// SetCompleted implements service.Service.
func (f *FakeService) SetCompleted(ctx context.Context, id int64, completed bool) (service.Task, error) {
	f.enter("SetCompleted")
	if f.SetCompletedErr != nil {
		return service.Task{}, f.SetCompletedErr
	}
	return f.patch(id, func(t *service.Task) { t.Completed = completed })
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	f.enter("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &service.Error{Kind: service.KindNotFound, Message: "not found", Status: 404}
}

func (f *FakeService) patch(id int64, apply func(*service.Task)) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			apply(&f.tasks[i])
			return f.tasks[i], nil
		}
	}
	return service.Task{}, &service.Error{Kind: service.KindNotFound, Message: "not found", Status: 404}
}
