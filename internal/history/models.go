package history

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an encode job.
type Status string

const (
	StatusPending     Status = "pending"
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusSkipped     Status = "skipped"
	StatusInterrupted Status = "interrupted"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusSkipped,
	StatusInterrupted,
}

// ParseStatus maps user input to a Status, accepting any case.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// Statuses returns the full status set in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Job records one output encode of one source script. A batch invocation
// shares a RunID across the jobs it starts.
type Job struct {
	ID          int64
	RunID       string
	Source      string
	Spec        string
	OutputPath  string
	Encoder     string
	Status      Status
	ErrorMsg    string
	SourceBytes int64
	OutputBytes int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FinishedAt  *time.Time
}

// Duration returns the wall time between creation and finish, or zero while
// the job is still running.
func (j *Job) Duration() time.Duration {
	if j == nil || j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(j.CreatedAt)
}
