package tasksync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tasker/internal/logging"
	"tasker/internal/service"
	"tasker/internal/session"
)

// PlaceholderPrefix marks task ids generated locally because the backend
// did not return one. Such ids never match a server record.
const PlaceholderPrefix = "temp-"

// ErrNoDraft is returned by Create when called without a draft.
var ErrNoDraft = errors.New("no draft")

// IsPlaceholderID reports whether id was generated locally.
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

// Synchronizer owns the in-memory task list for one session.
//
// Intents may be called concurrently. The lock is never held across a
// backend call; each response is folded in through Apply when it lands.
type Synchronizer struct {
	svc   service.Service
	sess  session.Session
	log   logging.Logger
	now   func() time.Time
	newID func() string

	mu    sync.Mutex
	state State
	seq   uint64
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger used for failures and placeholder warnings.
func WithLogger(l logging.Logger) Option {
	return func(s *Synchronizer) { s.log = l }
}

// WithClock replaces time.Now for the session expiry check.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// WithIDGenerator replaces the placeholder id generator.
func WithIDGenerator(f func() string) Option {
	return func(s *Synchronizer) { s.newID = f }
}

// New creates a Synchronizer scoped to sess with an empty task list.
func New(svc service.Service, sess session.Session, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		svc:   svc,
		sess:  sess,
		log:   logging.Discard(),
		now:   time.Now,
		newID: func() string { return PlaceholderPrefix + uuid.NewString() },
		state: State{Tasks: []service.Task{}},
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("user_id", sess.UserID)
	return s
}

// Session returns the session the synchronizer is scoped to.
func (s *Synchronizer) Session() session.Session {
	return s.sess
}

// Tasks returns a copy of the current task list.
func (s *Synchronizer) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.state.Tasks)
}

// Find returns the task with id, if present locally.
func (s *Synchronizer) Find(id string) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.state.Tasks {
		if t.TaskID == id {
			return t.Clone(), true
		}
	}
	return service.Task{}, false
}

// LastError returns the error of the most recent failed intent, or nil if
// a later intent succeeded.
func (s *Synchronizer) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.LastFailure == nil {
		return nil
	}
	return s.state.LastFailure.Err
}

// Refresh replaces the local list with the server's list. On failure the
// local list is left exactly as it was.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	if err := s.checkSession(); err != nil {
		return s.fail(ctx, OpRefresh, err)
	}

	tasks, err := s.svc.ListTasks(ctx, s.sess.UserID)
	if err != nil {
		return s.fail(ctx, OpRefresh, err)
	}

	s.dispatch(RefreshSucceeded{Tasks: tasks})
	s.log.Debug(ctx, "tasks refreshed", "count", len(tasks))
	return nil
}

// Create sends d to the backend. On success the new task is prepended with
// status Pending and d is reset; on failure d and the list are unchanged.
func (s *Synchronizer) Create(ctx context.Context, d *Draft) (service.Task, error) {
	if d == nil {
		return service.Task{}, s.fail(ctx, OpCreate, ErrNoDraft)
	}
	if err := s.checkSession(); err != nil {
		return service.Task{}, s.fail(ctx, OpCreate, err)
	}

	draft := *d
	req := service.NewTask{
		UserID:      s.sess.UserID,
		Email:       s.sess.Email,
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     draft.DueDate,
	}
	if draft.File != nil {
		req.FileName = draft.File.Name
		req.File = bytes.NewReader(draft.File.Content)
	}

	res, err := s.svc.CreateTask(ctx, req)
	if err != nil {
		return service.Task{}, s.fail(ctx, OpCreate, err)
	}

	id := res.TaskID
	if id == "" {
		id = s.newID()
		s.log.Warn(ctx, "backend returned no task id, using placeholder", "task_id", id)
	}

	attachments := []string{}
	if draft.File != nil && res.FileURL != "" {
		attachments = append(attachments, res.FileURL)
	}

	task := service.Task{
		TaskID:      id,
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     draft.DueDate,
		Status:      service.StatusPending,
		Attachments: attachments,
	}
	s.dispatch(CreateSucceeded{Task: task})
	d.Reset()

	s.log.Debug(ctx, "task created", "task_id", id)
	return task.Clone(), nil
}

// UpdateStatus sets the status of the task with id once the backend
// confirms. Responses to older intents on the same task are dropped if a
// newer one has already been applied.
func (s *Synchronizer) UpdateStatus(ctx context.Context, id string, status service.Status) error {
	if err := s.checkSession(); err != nil {
		return s.fail(ctx, OpUpdate, err)
	}

	seq := s.nextSeq()
	if err := s.svc.UpdateTaskStatus(ctx, id, status); err != nil {
		return s.fail(ctx, OpUpdate, err)
	}

	s.dispatch(UpdateSucceeded{TaskID: id, Status: status, Seq: seq})
	s.log.Debug(ctx, "task status updated", "task_id", id, "status", status)
	return nil
}

// Complete marks the task with id as Completed.
func (s *Synchronizer) Complete(ctx context.Context, id string) error {
	return s.UpdateStatus(ctx, id, service.StatusCompleted)
}

// Delete removes the task with id once the backend confirms. Deleting an id
// that is not in the local list still calls the backend.
func (s *Synchronizer) Delete(ctx context.Context, id string) error {
	if err := s.checkSession(); err != nil {
		return s.fail(ctx, OpDelete, err)
	}

	if err := s.svc.DeleteTask(ctx, id); err != nil {
		return s.fail(ctx, OpDelete, err)
	}

	s.dispatch(DeleteSucceeded{TaskID: id})
	s.log.Debug(ctx, "task deleted", "task_id", id)
	return nil
}

func (s *Synchronizer) checkSession() error {
	if s.sess.UserID == "" || s.sess.Expired(s.now()) {
		return session.ErrNoSession
	}
	return nil
}

func (s *Synchronizer) nextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

func (s *Synchronizer) dispatch(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Apply(s.state, ev)
}

func (s *Synchronizer) fail(ctx context.Context, op Op, err error) error {
	s.dispatch(OperationFailed{Op: op, Err: err})
	s.log.Error(ctx, "task operation failed", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}
