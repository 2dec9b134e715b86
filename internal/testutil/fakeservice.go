// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"tasker/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// It plays the remote store: its task list is the authoritative record.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int

	// Error injection for testing
	ListTasksErr        error
	CreateTaskErr       error
	UpdateTaskStatusErr error
	DeleteTaskErr       error

	// OmitTaskID makes CreateTask answer without a task id.
	OmitTaskID bool

	// FileURLPrefix is prepended to uploaded file names to form the returned URL.
	FileURLPrefix string

	// UpdateHook, when set, runs before UpdateTaskStatus applies its change.
	UpdateHook func(ctx context.Context, taskID string, status service.Status)

	// Recorded calls
	Calls       []string
	LastCreate  service.NewTask
	LastFile    []byte
	LastUserIDs []string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{FileURLPrefix: "https://files.test/"}
}

// AddTask adds a pending task to the remote store.
func (f *FakeService) AddTask(taskID, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{
		TaskID: taskID,
		Title:  title,
		Status: service.StatusPending,
	})
}

// PutTask adds a fully specified task to the remote store.
func (f *FakeService) PutTask(t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t.Clone())
}

// RemoteTasks returns a copy of the remote store.
func (f *FakeService) RemoteTasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	for i, t := range f.tasks {
		out[i] = t.Clone()
	}
	return out
}

// CallCount returns how many times op was called.
func (f *FakeService) CallCount(op string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.Calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *FakeService) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, op)
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, userID string) ([]service.Task, error) {
	f.record("list")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastUserIDs = append(f.LastUserIDs, userID)

	out := make([]service.Task, len(f.tasks))
	for i, t := range f.tasks {
		out[i] = t.Clone()
	}
	return out, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, req service.NewTask) (service.CreateResult, error) {
	f.record("create")
	if f.CreateTaskErr != nil {
		return service.CreateResult{}, f.CreateTaskErr
	}

	var file []byte
	if req.File != nil {
		data, err := io.ReadAll(req.File)
		if err != nil {
			return service.CreateResult{}, err
		}
		file = data
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := fmt.Sprintf("t%d", f.nextID)
	f.LastCreate = req
	f.LastFile = file

	task := service.Task{
		TaskID:      id,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      service.StatusPending,
	}
	res := service.CreateResult{TaskID: id}
	if req.File != nil {
		res.FileURL = f.FileURLPrefix + req.FileName
		task.Attachments = []string{res.FileURL}
	}
	f.tasks = append([]service.Task{task}, f.tasks...)

	if f.OmitTaskID {
		res.TaskID = ""
	}
	return res, nil
}

// UpdateTaskStatus implements service.Service.
func (f *FakeService) UpdateTaskStatus(ctx context.Context, taskID string, status service.Status) error {
	f.record("update")
	if f.UpdateHook != nil {
		f.UpdateHook(ctx, taskID, status)
	}
	if f.UpdateTaskStatusErr != nil {
		return f.UpdateTaskStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.TaskID == taskID {
			f.tasks[i].Status = status
			return nil
		}
	}
	return &service.APIError{Op: "update_task_status", StatusCode: 404, Kind: service.ErrNotFound}
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, taskID string) error {
	f.record("delete")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.TaskID == taskID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &service.APIError{Op: "delete_task", StatusCode: 404, Kind: service.ErrNotFound}
}
