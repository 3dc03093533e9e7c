package session

import "errors"

// ErrCancelled is returned by collaborators when the user dismisses a prompt.
var ErrCancelled = errors.New("cancelled by user")

type Status int

const (
	StatusSucceeded Status = iota
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a user-triggered operation. Failures never leave
// the document partially updated.
type Result struct {
	Status Status
	Path   string
	Err    error
}

func (r Result) OK() bool {
	return r.Status == StatusSucceeded
}

func (r Result) Cancelled() bool {
	return r.Status == StatusCancelled
}

// Message is a human readable reason for a failed result.
func (r Result) Message() string {
	switch r.Status {
	case StatusFailed:
		if r.Err != nil {
			return r.Err.Error()
		}
		return "operation failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return ""
	}
}
