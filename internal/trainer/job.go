package trainer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"threatscan/internal/apperr"
	"threatscan/internal/models"
)

// JobState is the lifecycle state of a retraining job.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// Job tracks one submitted retraining run.
type Job struct {
	ID            string                `json:"id"`
	Dataset       string                `json:"dataset"`
	RetrainBinary bool                  `json:"retrain_binary"`
	RetrainMulti  bool                  `json:"retrain_multi"`
	State         JobState              `json:"state"`
	SubmittedAt   time.Time             `json:"submitted_at"`
	StartedAt     *time.Time            `json:"started_at,omitempty"`
	FinishedAt    *time.Time            `json:"finished_at,omitempty"`
	Metrics       *models.TrainingStats `json:"metrics,omitempty"`
	Error         string                `json:"error,omitempty"`
}

// Retrainer is what the job manager drives; satisfied by *Trainer.
type Retrainer interface {
	HasDataset(name string) bool
	Retrain(ctx context.Context, dataset string, retrainBinary, retrainMulti bool) (*models.TrainingStats, error)
}

// JobManager runs retraining asynchronously. Training can take minutes, so
// submission returns a job id immediately and completion is observed by
// polling. At most one job runs at a time.
type JobManager struct {
	trainer Retrainer
	logger  *zap.Logger

	mu     sync.RWMutex
	jobs   map[string]*Job
	active bool
}

func NewJobManager(trainer Retrainer, logger *zap.Logger) *JobManager {
	return &JobManager{
		trainer: trainer,
		logger:  logger,
		jobs:    make(map[string]*Job),
	}
}

// Submit validates the request, registers a job and starts it in the
// background. A second submission while a job is running is a Conflict.
func (m *JobManager) Submit(dataset string, retrainBinary, retrainMulti bool) (Job, error) {
	if !m.trainer.HasDataset(dataset) {
		return Job{}, apperr.Newf(apperr.KindNotFound, "dataset %s not found", dataset)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return Job{}, apperr.New(apperr.KindConflict, "a retraining job is already running")
	}

	job := &Job{
		ID:            uuid.NewString(),
		Dataset:       dataset,
		RetrainBinary: retrainBinary,
		RetrainMulti:  retrainMulti,
		State:         JobPending,
		SubmittedAt:   time.Now().UTC(),
	}
	m.jobs[job.ID] = job
	m.active = true

	go m.run(job.ID)

	m.logger.Info("Retraining job submitted",
		zap.String("job_id", job.ID),
		zap.String("dataset", dataset))

	return *job, nil
}

// Get returns a snapshot of the job with the given id.
func (m *JobManager) Get(id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return Job{}, apperr.Newf(apperr.KindNotFound, "retraining job %s not found", id)
	}
	return *job, nil
}

func (m *JobManager) run(id string) {
	m.mu.Lock()
	job := m.jobs[id]
	now := time.Now().UTC()
	job.State = JobRunning
	job.StartedAt = &now
	dataset, binary, multi := job.Dataset, job.RetrainBinary, job.RetrainMulti
	m.mu.Unlock()

	var stats *models.TrainingStats
	var err error

	// The gate must open again even when the trainer panics, otherwise
	// every later submission is rejected until restart.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("retraining panicked: %v", r)
		}

		m.mu.Lock()
		defer m.mu.Unlock()

		finished := time.Now().UTC()
		job.FinishedAt = &finished
		m.active = false

		if err != nil {
			job.State = JobFailed
			job.Error = err.Error()
			m.logger.Error("Retraining job failed", zap.String("job_id", id), zap.Error(err))
			return
		}

		job.State = JobCompleted
		job.Metrics = stats
		m.logger.Info("Retraining job completed", zap.String("job_id", id))
	}()

	// The job outlives the submitting request, so it does not inherit the
	// request context.
	stats, err = m.trainer.Retrain(context.Background(), dataset, binary, multi)
}
