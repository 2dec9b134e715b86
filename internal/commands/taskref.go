package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based position in the task list, 0 if ID is set
	ID  string // task id, empty if Num is set
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
//  1. No args, or a blank first arg → ErrTaskRefRequired
//  2. byID is set → the first arg is a task id, verbatim
//  3. First arg is all digits → 1-based list number
//  4. Otherwise → the first arg is a task id
//
// Extra args are rejected so that "done 1 2" is not silently read as "done 1".
func ParseTaskRef(args []string, byID bool) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := strings.TrimSpace(args[0])
	if byID || !isAllDigits(ref) {
		return TaskRef{ID: ref}, nil
	}

	num, err := strconv.Atoi(ref)
	if err != nil {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
	}
	return TaskRef{Num: num}, nil
}

// String renders the reference the way the user typed it.
func (r TaskRef) String() string {
	if r.ID != "" {
		return r.ID
	}
	return strconv.Itoa(r.Num)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
