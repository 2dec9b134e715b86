// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"tasker/internal/service"
	"tasker/internal/tasksync"
)

const (
	// Separator frames the banner and task cards.
	Separator = "------------"

	detailIndent = "        "
)

// FormatBanner prints the greeting shown above the task list.
func FormatBanner(w io.Writer, userID string) {
	if strings.TrimSpace(userID) == "" {
		userID = "User"
	}
	fmt.Fprintf(w, "Welcome, %s!\n", userID)
	fmt.Fprintln(w, Separator)
}

// FormatTask formats one task of the list.
// Format: "{N:>4}  [x] {TITLE}\n" followed by indented description, due date
// and attachment lines when those are set.
func FormatTask(w io.Writer, num int, task service.Task) {
	title := normalizeTitle(task.Title)
	if tasksync.IsPlaceholderID(task.TaskID) {
		title += " (unsynced)"
	}
	fmt.Fprintf(w, "%4d  %s %s\n", num, checkbox(task.Status), title)

	if d := singleLine(task.Description); d != "" {
		fmt.Fprintf(w, "%s%s\n", detailIndent, d)
	}
	if due := strings.TrimSpace(task.DueDate); due != "" {
		fmt.Fprintf(w, "%sdue: %s\n", detailIndent, due)
	}
	for _, url := range task.Attachments {
		fmt.Fprintf(w, "%sfile: %s\n", detailIndent, url)
	}
}

// FormatTaskCard prints every field of a task, with placeholders for empty ones.
func FormatTaskCard(w io.Writer, task service.Task) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintln(w, orDefault(task.Title, "Untitled Task"))
	fmt.Fprintln(w, Separator)
	fmt.Fprintf(w, "id:          %s\n", task.TaskID)
	fmt.Fprintf(w, "description: %s\n", orDefault(singleLine(task.Description), "No description provided"))
	fmt.Fprintf(w, "due:         %s\n", orDefault(task.DueDate, "No due date specified"))
	fmt.Fprintf(w, "status:      %s\n", displayStatus(task.Status))
	if len(task.Attachments) == 0 {
		fmt.Fprintln(w, "files:       none")
		return
	}
	for i, url := range task.Attachments {
		label := "files:"
		if i > 0 {
			label = ""
		}
		fmt.Fprintf(w, "%-13s%s\n", label, url)
	}
}

func checkbox(s service.Status) string {
	if s == service.StatusCompleted {
		return "[x]"
	}
	return "[ ]"
}

func displayStatus(s service.Status) string {
	return string(service.ParseStatus(string(s)))
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = singleLine(title)
	if title == "" {
		return "(untitled)"
	}
	return title
}

func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
