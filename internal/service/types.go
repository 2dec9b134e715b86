package service

import (
	"encoding/json"
	"io"
)

// Status is the completion state of a task.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// ParseStatus maps wire values onto the two known statuses.
// Anything other than "Completed" is treated as Pending.
func ParseStatus(s string) Status {
	if s == string(StatusCompleted) {
		return StatusCompleted
	}
	return StatusPending
}

// UnmarshalJSON normalizes unknown or empty statuses to Pending.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseStatus(raw)
	return nil
}

// Task represents a single task record.
type Task struct {
	TaskID      string   `json:"taskId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate"` // user supplied, not validated
	Status      Status   `json:"status"`
	Attachments []string `json:"attachments"`
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	if t.Attachments != nil {
		t.Attachments = append(make([]string, 0, len(t.Attachments)), t.Attachments...)
	}
	return t
}

// NewTask is the payload for CreateTask.
type NewTask struct {
	UserID      string
	Email       string
	Title       string
	Description string
	DueDate     string

	// FileName and File are optional; File is read once during upload.
	FileName string
	File     io.Reader
}

// HasFile reports whether the request carries an attachment.
func (n NewTask) HasFile() bool {
	return n.File != nil
}

// CreateResult is the backend's answer to CreateTask.
type CreateResult struct {
	TaskID  string `json:"taskId"`
	FileURL string `json:"fileUrl"`
}
