package jobs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developforgood/pantheon/internal/models"
	"github.com/developforgood/pantheon/internal/storage"
)

// fakeStore is an in-memory Store honoring the terminal-status guard.
type fakeStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.Job
}

func newFakeStore() *fakeStore {
	return &fakeStore{jobs: make(map[uuid.UUID]*models.Job)}
}

func (f *fakeStore) CreateJob(_ context.Context, cycleID *uuid.UUID, data models.CreateJob) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.jobs[id] = &models.Job{
		ID: id, CycleID: cycleID, Status: models.JobPending,
		Label: data.Label, Description: data.Description, Details: data.Details,
		CreatedAt: time.Now(),
	}
	return id, nil
}

func (f *fakeStore) FetchJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeStore) FetchJobs(_ context.Context) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Job, 0, len(f.jobs))
	for _, j := range f.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (f *fakeStore) UpdateJobStatus(_ context.Context, id uuid.UUID, data models.UpdateJobStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return storage.ErrNotFound
	}
	if j.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", storage.ErrJobTerminal, id, j.Status)
	}
	j.Status = data.Status
	if data.Error != "" {
		j.Details.Error = data.Error
	}
	return nil
}

func (f *fakeStore) SetJobCycle(_ context.Context, id, cycleID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return storage.ErrNotFound
	}
	j.CycleID = &cycleID
	return nil
}

func importJob() models.CreateJob {
	return models.CreateJob{
		Label:   "Import Airtable Base",
		Details: models.JobDetails{JobType: models.JobTypeImportBase, BaseID: "appTest"},
	}
}

func TestCancelSignalsSubscribedPipeline(t *testing.T) {
	reg := NewRegistry(newFakeStore())
	ctx := context.Background()

	id, cancelled, err := reg.Create(ctx, nil, importJob())
	require.NoError(t, err)

	select {
	case <-cancelled:
		t.Fatal("channel closed before cancel")
	default:
	}

	require.NoError(t, reg.Cancel(ctx, id))
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("cancel did not close the channel")
	}

	// The row is already cancelled by the time the signal lands, so the
	// job never reads as pending while the pipeline rolls back.
	job, err := reg.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobCancelled, job.Status)

	// A pipeline finishing late loses the status race silently.
	require.NoError(t, reg.Finish(ctx, id, models.JobComplete, ""))
	job, err = reg.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobCancelled, job.Status)
}

func TestCancelWithoutSubscriberMarksCancelled(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(store)
	ctx := context.Background()

	// Row exists but no pipeline holds a channel, as after a restart.
	id, err := store.CreateJob(ctx, nil, importJob())
	require.NoError(t, err)

	require.NoError(t, reg.Cancel(ctx, id))
	job, err := reg.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobCancelled, job.Status)
}

func TestCancelTerminalJobIsNoop(t *testing.T) {
	reg := NewRegistry(newFakeStore())
	ctx := context.Background()

	id, _, err := reg.Create(ctx, nil, importJob())
	require.NoError(t, err)
	require.NoError(t, reg.Finish(ctx, id, models.JobComplete, ""))

	require.NoError(t, reg.Cancel(ctx, id))
	job, err := reg.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobComplete, job.Status)
}

func TestCancelUnknownJob(t *testing.T) {
	reg := NewRegistry(newFakeStore())
	err := reg.Cancel(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDoubleCancelClosesOnce(t *testing.T) {
	reg := NewRegistry(newFakeStore())
	ctx := context.Background()

	id, _, err := reg.Create(ctx, nil, importJob())
	require.NoError(t, err)

	require.NoError(t, reg.Cancel(ctx, id))
	// The second cancel sees the job already cancelled; it must not
	// panic on a closed channel.
	require.NoError(t, reg.Cancel(ctx, id))
}

func TestFinishAfterCancelKeepsCancelledStatus(t *testing.T) {
	store := newFakeStore()
	reg := NewRegistry(store)
	ctx := context.Background()

	id, err := store.CreateJob(ctx, nil, importJob())
	require.NoError(t, err)
	require.NoError(t, reg.Cancel(ctx, id))

	// A late pipeline completion loses the race silently.
	require.NoError(t, reg.Finish(ctx, id, models.JobComplete, ""))
	job, err := reg.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobCancelled, job.Status)
}

func TestSetCycle(t *testing.T) {
	reg := NewRegistry(newFakeStore())
	ctx := context.Background()

	id, _, err := reg.Create(ctx, nil, importJob())
	require.NoError(t, err)

	cycleID := uuid.New()
	require.NoError(t, reg.SetCycle(ctx, id, cycleID))
	job, err := reg.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, job.CycleID)
	assert.Equal(t, cycleID, *job.CycleID)
}
