package commands

import (
	"fmt"

	"tasker/internal/service"
)

// errOutOfRange is returned when a list number has no task.
type errOutOfRange struct {
	num int
}

func (e errOutOfRange) Error() string {
	return fmt.Sprintf("task number out of range: %d", e.num)
}

// resolveTaskRef maps ref onto a task id using tasks, the list the user sees.
// Id references are returned as-is even when they are not in tasks: the
// backend decides whether the task exists.
func resolveTaskRef(tasks []service.Task, ref TaskRef) (string, error) {
	if ref.ID != "" {
		return ref.ID, nil
	}
	if ref.Num < 1 || ref.Num > len(tasks) {
		return "", errOutOfRange{num: ref.Num}
	}
	return tasks[ref.Num-1].TaskID, nil
}

// findTask returns the task with id from tasks.
func findTask(tasks []service.Task, id string) (service.Task, bool) {
	for _, t := range tasks {
		if t.TaskID == id {
			return t, true
		}
	}
	return service.Task{}, false
}
