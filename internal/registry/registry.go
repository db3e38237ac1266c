// Package registry holds the in-memory job table shared between the
// request-serving path (readers) and job workers (writers). State lives only
// for the process lifetime.
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amoghv/rollscan/internal/core/domain"
)

type Registry struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
}

func New() *Registry {
	return &Registry{jobs: make(map[string]*domain.Job)}
}

// Create registers a new queued job and returns its id.
func (r *Registry) Create(files []string) string {
	id := uuid.NewString()
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id] = &domain.Job{
		ID:        id,
		Status:    domain.JobQueued,
		Message:   "files queued for processing",
		Files:     append([]string(nil), files...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id
}

// Update mutates one job entry. Updates against unknown ids or jobs already
// in a terminal state are dropped; terminal states are final.
func (r *Registry) Update(id string, status domain.JobStatus, message string, progress float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	job.Status = status
	job.Message = message
	if progress >= 0 {
		job.Progress = progress
	}
	job.UpdatedAt = time.Now().UTC()
}

// Get returns a snapshot copy of one job, or ErrJobNotFound.
func (r *Registry) Get(id string) (domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrJobNotFound
	}
	snapshot := *job
	snapshot.Files = append([]string(nil), job.Files...)
	return snapshot, nil
}
