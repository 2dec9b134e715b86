// Package tasksync keeps the local task list of a session consistent with the
// task backend.
//
// Every mutation is confirm-then-apply: the backend call is made first and the
// local list changes only after it succeeds. The state transitions themselves
// live in Apply, a pure reducer over events.
package tasksync

import (
	"tasker/internal/service"
)

// Op names a task-affecting intent.
type Op string

const (
	OpRefresh Op = "refresh"
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
)

// Event is a confirmed outcome of an intent.
type Event interface {
	event()
}

// RefreshSucceeded replaces the whole list with the server's list.
type RefreshSucceeded struct {
	Tasks []service.Task
}

// CreateSucceeded prepends a newly created task.
type CreateSucceeded struct {
	Task service.Task
}

// UpdateSucceeded sets the status of the task with TaskID.
// Seq is the issue order of the intent; zero disables the ordering guard.
type UpdateSucceeded struct {
	TaskID string
	Status service.Status
	Seq    uint64
}

// DeleteSucceeded removes the task with TaskID.
type DeleteSucceeded struct {
	TaskID string
}

// OperationFailed records a failed intent. The task list is left untouched.
type OperationFailed struct {
	Op  Op
	Err error
}

func (RefreshSucceeded) event() {}
func (CreateSucceeded) event()  {}
func (UpdateSucceeded) event()  {}
func (DeleteSucceeded) event()  {}
func (OperationFailed) event()  {}

// State is the synchronized view of one session's tasks.
type State struct {
	// Tasks is most-recent-first after creation, otherwise server order.
	Tasks []service.Task

	// LastFailure is the most recent failure since the last success, if any.
	LastFailure *OperationFailed

	// statusSeq holds the issue sequence of the last applied status update per task.
	statusSeq map[string]uint64
}

// Apply returns the state that results from ev. It never modifies state.
func Apply(state State, ev Event) State {
	switch ev := ev.(type) {
	case RefreshSucceeded:
		next := state
		next.Tasks = cloneTasks(ev.Tasks)
		next.LastFailure = nil
		return next

	case CreateSucceeded:
		next := state
		tasks := make([]service.Task, 0, len(state.Tasks)+1)
		tasks = append(tasks, ev.Task.Clone())
		tasks = append(tasks, cloneTasks(state.Tasks)...)
		next.Tasks = tasks
		next.LastFailure = nil
		return next

	case UpdateSucceeded:
		if ev.Seq != 0 && ev.Seq < state.statusSeq[ev.TaskID] {
			return state
		}
		next := state
		next.Tasks = cloneTasks(state.Tasks)
		for i := range next.Tasks {
			if next.Tasks[i].TaskID == ev.TaskID {
				next.Tasks[i].Status = ev.Status
			}
		}
		if ev.Seq != 0 {
			next.statusSeq = make(map[string]uint64, len(state.statusSeq)+1)
			for k, v := range state.statusSeq {
				next.statusSeq[k] = v
			}
			next.statusSeq[ev.TaskID] = ev.Seq
		}
		next.LastFailure = nil
		return next

	case DeleteSucceeded:
		next := state
		tasks := make([]service.Task, 0, len(state.Tasks))
		for _, t := range state.Tasks {
			if t.TaskID != ev.TaskID {
				tasks = append(tasks, t.Clone())
			}
		}
		next.Tasks = tasks
		next.LastFailure = nil
		return next

	case OperationFailed:
		next := state
		failed := ev
		next.LastFailure = &failed
		return next
	}
	return state
}

func cloneTasks(tasks []service.Task) []service.Task {
	out := make([]service.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
