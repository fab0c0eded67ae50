package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modex/frontend/internal/models"
	"github.com/sirupsen/logrus"
)

// Status represents the upload status.
type Status string

const (
	StatusUploading Status = "uploading"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// ErrExtensionNotAllowed is returned for files outside the accepted extensions.
var ErrExtensionNotAllowed = errors.New("file extension not allowed")

// Job records one upload attempt.
type Job struct {
	ID          string     `json:"id"`
	FileName    string     `json:"fileName"`
	Size        int64      `json:"size"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Sender is the transport used to deliver file bodies.
type Sender interface {
	UploadFile(ctx context.Context, name string, r io.Reader) error
}

// Manager uploads local files and keeps a record of each attempt.
type Manager struct {
	jobs     map[string]*Job
	mu       sync.RWMutex
	sender   Sender
	accepted []string
	log      logrus.FieldLogger
}

// NewManager creates a manager. accepted lists the allowed extensions
// (".txt"); an empty list allows any file.
func NewManager(sender Sender, accepted []string, logger logrus.FieldLogger) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Manager{
		jobs:     make(map[string]*Job),
		sender:   sender,
		accepted: accepted,
		log:      logger.WithField("component", "upload"),
	}
}

// Upload sends file to the backend and blocks until it is done. The
// returned job is a snapshot of the final state; err is non-nil whenever
// the job ended in StatusError.
func (m *Manager) Upload(ctx context.Context, file models.LocalFile) (*Job, error) {
	job := &Job{
		ID:        uuid.New().String(),
		FileName:  file.Name,
		Size:      file.Size,
		Status:    StatusUploading,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	log := m.log.WithFields(logrus.Fields{"job": job.ID[:8], "file": file.Name})
	log.Debug("upload started")

	if !file.HasExtension(m.accepted) {
		err := fmt.Errorf("%w: %s (accepted: %s)", ErrExtensionNotAllowed, file.Name, strings.Join(m.accepted, ","))
		return m.markJobError(job, err), err
	}

	f, err := os.Open(file.Path)
	if err != nil {
		err = fmt.Errorf("opening %s: %w", file.Path, err)
		return m.markJobError(job, err), err
	}
	defer f.Close()

	if err := m.sender.UploadFile(ctx, file.Name, f); err != nil {
		return m.markJobError(job, err), err
	}

	log.Debug("upload complete")
	return m.markJobComplete(job), nil
}

// GetJob retrieves a copy of a job by ID.
func (m *Manager) GetJob(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	cp := *job
	return &cp, true
}

// ActiveJobs returns copies of the jobs still uploading, oldest first.
func (m *Manager) ActiveJobs() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active []Job
	for _, job := range m.jobs {
		if job.Status == StatusUploading {
			active = append(active, *job)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active
}

// markJobComplete marks job as complete (thread-safe).
func (m *Manager) markJobComplete(job *Job) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusComplete
	now := time.Now()
	job.CompletedAt = &now
	cp := *job
	return &cp
}

// markJobError marks job as failed (thread-safe).
func (m *Manager) markJobError(job *Job, err error) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusError
	job.Error = err.Error()
	now := time.Now()
	job.CompletedAt = &now
	m.log.WithField("job", job.ID[:8]).WithError(err).Warn("upload failed")
	cp := *job
	return &cp
}

// CleanupOldJobs removes finished jobs older than the specified duration.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for id, job := range m.jobs {
		if job.Status == StatusComplete || job.Status == StatusError {
			if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
				delete(m.jobs, id)
				removed++
			}
		}
	}
	return removed
}
