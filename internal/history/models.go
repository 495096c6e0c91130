package history

import "time"

// Status represents the outcome of a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	// StatusRejected marks runs that never got going because the request or
	// configuration was unusable.
	StatusRejected Status = "rejected"
)

// ParseStatus converts a stored value into a Status.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusPending, StatusSucceeded, StatusFailed, StatusRejected:
		return Status(value), true
	default:
		return "", false
	}
}

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// Run is one recorded pipeline invocation.
type Run struct {
	ID             string
	Source         string
	Model          string
	Language       string
	OutputDir      string
	Status         Status
	SegmentCount   int
	TurnCount      int
	SpeakerCount   int
	UnknownCount   int
	TranscriptPath string
	AnnotatedPath  string
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     *time.Time
}

// Duration returns how long the run took, or zero while it is pending.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome carries the values recorded when a run finishes.
type Outcome struct {
	Status         Status
	SegmentCount   int
	TurnCount      int
	SpeakerCount   int
	UnknownCount   int
	TranscriptPath string
	AnnotatedPath  string
	Err            error
}
