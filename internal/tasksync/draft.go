package tasksync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Attachment is a file to upload with a new task.
type Attachment struct {
	Name    string
	Content []byte
}

// LoadAttachment reads the file at path into an Attachment.
func LoadAttachment(path string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	return &Attachment{Name: filepath.Base(path), Content: data}, nil
}

// Draft is the unsaved input for a new task. It is cleared only after the
// backend confirms the create.
type Draft struct {
	Title       string
	Description string
	DueDate     string
	File        *Attachment
}

// Reset clears every field.
func (d *Draft) Reset() {
	*d = Draft{}
}

// IsEmpty reports whether nothing has been entered.
func (d *Draft) IsEmpty() bool {
	return strings.TrimSpace(d.Title) == "" &&
		strings.TrimSpace(d.Description) == "" &&
		strings.TrimSpace(d.DueDate) == "" &&
		d.File == nil
}
