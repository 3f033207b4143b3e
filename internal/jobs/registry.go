// Package jobs tracks asynchronous pipeline runs and routes cancellation to
// them.
package jobs

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/developforgood/pantheon/internal/models"
	"github.com/developforgood/pantheon/internal/storage"
)

// Store is the slice of the storage layer the registry needs.
type Store interface {
	CreateJob(ctx context.Context, cycleID *uuid.UUID, data models.CreateJob) (uuid.UUID, error)
	FetchJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	FetchJobs(ctx context.Context) ([]models.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, data models.UpdateJobStatus) error
	SetJobCycle(ctx context.Context, id, cycleID uuid.UUID) error
}

// Registry persists jobs and carries an in-process cancellation channel per
// running pipeline. Channels live only for the lifetime of the run; rows are
// forever.
type Registry struct {
	store Store

	mu      sync.Mutex
	cancels map[uuid.UUID]chan struct{}
}

// NewRegistry creates a registry over the given job store.
func NewRegistry(store Store) *Registry {
	return &Registry{
		store:   store,
		cancels: make(map[uuid.UUID]chan struct{}),
	}
}

// Create records a pending job and returns its id together with the channel
// the pipeline must select on. The channel closes exactly once, when the job
// is cancelled.
func (r *Registry) Create(ctx context.Context, cycleID *uuid.UUID, data models.CreateJob) (uuid.UUID, <-chan struct{}, error) {
	id, err := r.store.CreateJob(ctx, cycleID, data)
	if err != nil {
		return uuid.Nil, nil, err
	}

	ch := make(chan struct{})
	r.mu.Lock()
	r.cancels[id] = ch
	r.mu.Unlock()

	log.WithFields(log.Fields{"job_id": id, "job_type": data.Details.JobType}).
		Info("job created")
	return id, ch, nil
}

// Cancel requests cancellation of a job. Cancelling a job already in a
// terminal state is a no-op that succeeds.
//
// The row is the source of truth: the job is marked cancelled first, then any
// subscribed pipeline is woken to roll back. Readers never see a cancelled
// job still pending while its rollback runs. When no pipeline is subscribed,
// for instance after a restart left the row pending, the status change is
// all there is.
func (r *Registry) Cancel(ctx context.Context, id uuid.UUID) error {
	job, err := r.store.FetchJob(ctx, id)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		log.WithFields(log.Fields{"job_id": id, "status": job.Status}).
			Info("cancel requested for finished job, ignoring")
		return nil
	}

	// Losing the race to a pipeline finishing right now is fine; the
	// channel is already gone in that case.
	err = r.store.UpdateJobStatus(ctx, id, models.UpdateJobStatus{Status: models.JobCancelled})
	if err != nil && !errors.Is(err, storage.ErrJobTerminal) {
		return err
	}

	r.mu.Lock()
	ch, subscribed := r.cancels[id]
	if subscribed {
		delete(r.cancels, id)
	}
	r.mu.Unlock()

	if subscribed {
		close(ch)
		log.WithField("job_id", id).Info("cancellation signalled")
	}
	return nil
}

// Finish moves a job to a terminal status and drops its cancellation channel.
// Losing the status race to a concurrent cancel is not an error.
func (r *Registry) Finish(ctx context.Context, id uuid.UUID, status models.JobStatus, errMsg string) error {
	r.mu.Lock()
	delete(r.cancels, id)
	r.mu.Unlock()

	err := r.store.UpdateJobStatus(ctx, id, models.UpdateJobStatus{Status: status, Error: errMsg})
	if errors.Is(err, storage.ErrJobTerminal) {
		log.WithFields(log.Fields{"job_id": id, "status": status}).
			Warn("job already finished, dropping status update")
		return nil
	}
	return err
}

// SetCycle binds a job to the cycle it produced.
func (r *Registry) SetCycle(ctx context.Context, id, cycleID uuid.UUID) error {
	return r.store.SetJobCycle(ctx, id, cycleID)
}

// Get returns one job row.
func (r *Registry) Get(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return r.store.FetchJob(ctx, id)
}

// List returns every job row, newest first.
func (r *Registry) List(ctx context.Context) ([]models.Job, error) {
	return r.store.FetchJobs(ctx)
}
