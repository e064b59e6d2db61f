package jobs

import (
	"errors"
	"sync"
	"time"

	"akara-desktop/internal/domain"
)

// ErrJobAlreadyRunning is returned when starting a second submission while
// one is outstanding.
var ErrJobAlreadyRunning = errors.New("submission already in progress")

// ErrNoRunningJob is returned when settling a manager that is idle.
var ErrNoRunningJob = errors.New("no submission in progress")

// Job identifies one submission and when it started.
type Job struct {
	ID        string                 `json:"id"`
	State     domain.ProcessingState `json:"state"`
	StartedAt time.Time              `json:"startedAt,omitempty"`
}

// Manager tracks the single allowed in-flight submission.
type Manager struct {
	mu      sync.RWMutex
	current Job
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: Job{State: domain.ProcessingIdle},
	}
}

// Start moves Idle to Processing for jobID, rejecting concurrent starts.
func (m *Manager) Start(jobID string, startedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.State == domain.ProcessingInProgress {
		return ErrJobAlreadyRunning
	}

	m.current = Job{
		ID:        jobID,
		State:     domain.ProcessingInProgress,
		StartedAt: startedAt,
	}
	return nil
}

// Settle returns the manager to Idle once jobID has finished, whatever the
// outcome. Settling a job that is not current is rejected.
func (m *Manager) Settle(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.State != domain.ProcessingInProgress || m.current.ID != jobID {
		return ErrNoRunningJob
	}
	m.current = Job{State: domain.ProcessingIdle}
	return nil
}

// Current returns a snapshot of the current job.
func (m *Manager) Current() Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// IsRunning reports whether a submission is outstanding.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.State == domain.ProcessingInProgress
}
