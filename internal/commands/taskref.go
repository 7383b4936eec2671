package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tasker/internal/exitcode"
	"tasker/internal/tasksync"
)

// ErrTaskIDRequired indicates no task id was provided.
var ErrTaskIDRequired = errors.New("task id required")

// ParseTaskID parses the task id at the front of args and returns the
// remaining args. The id is the server-assigned number shown by list,
// optionally written with a leading '#'.
func ParseTaskID(args []string) (int64, []string, error) {
	if len(args) == 0 {
		return 0, nil, ErrTaskIDRequired
	}

	raw := strings.TrimPrefix(args[0], "#")
	if !isAllDigits(raw) {
		return 0, nil, fmt.Errorf("invalid task id: %s", args[0])
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, nil, fmt.Errorf("invalid task id: %s", args[0])
	}
	return id, args[1:], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// report prints err and returns its exit code. A failed reload after a
// successful change is reported as such.
func report(errOut io.Writer, err error) int {
	var rerr *tasksync.ResyncError
	if errors.As(err, &rerr) {
		fmt.Fprintf(errOut, "error: %v\n", rerr)
		return exitcode.FromError(rerr.Err)
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.FromError(err)
}
