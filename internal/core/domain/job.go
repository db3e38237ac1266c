package domain

import "time"

type JobStatus string

const (
	JobQueued         JobStatus = "queued"
	JobRunning        JobStatus = "running"
	JobComplete       JobStatus = "complete"
	JobPartialFailure JobStatus = "partial_failure"
	JobFailed         JobStatus = "failed"
)

// Terminal reports whether no further status transition may occur.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobComplete, JobPartialFailure, JobFailed:
		return true
	}
	return false
}

// Job is a point-in-time snapshot of one submitted batch. Snapshots are
// copies; mutating one never affects registry state.
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Message   string    `json:"message"`
	Progress  float64   `json:"progress"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
