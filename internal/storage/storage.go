// Package storage is the transactional persistence layer over PostgreSQL.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/developforgood/pantheon/internal/models"
)

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict means a unique or foreign key constraint was violated.
	ErrConflict = errors.New("storage: conflict")
	// ErrJobTerminal means a status write targeted a job already in a
	// terminal state. Terminal statuses are immutable.
	ErrJobTerminal = errors.New("storage: job already in terminal state")
)

// Querier is the set of operations available both on the pool and inside a
// transaction.
type Querier interface {
	// Cycles.
	CreateCycle(ctx context.Context, data models.CreateCycle) (uuid.UUID, error)
	FetchCycle(ctx context.Context, id uuid.UUID) (*models.ProjectCycle, error)
	FetchCycles(ctx context.Context) ([]models.ProjectCycle, error)
	DeleteCycle(ctx context.Context, id uuid.UUID) error
	CycleStats(ctx context.Context, id uuid.UUID) (*models.CycleStats, error)

	// Entities. Batch creates return the natural-key → id map used for
	// referential resolution (org_name for nonprofits, email otherwise).
	BatchCreateNonprofits(ctx context.Context, cycleID uuid.UUID, data []models.CreateNonprofit) (map[string]uuid.UUID, error)
	BatchCreateVolunteers(ctx context.Context, cycleID uuid.UUID, data []models.CreateVolunteer) (map[string]uuid.UUID, error)
	BatchCreateMentors(ctx context.Context, cycleID uuid.UUID, data []models.CreateMentor) (map[string]uuid.UUID, error)
	FetchVolunteersByCycle(ctx context.Context, cycleID uuid.UUID) ([]models.Volunteer, error)

	// Link relations. Reinserting an existing link inside one import
	// transaction is a no-op.
	LinkVolunteersToNonprofits(ctx context.Context, cycleID uuid.UUID, links []models.VolunteerNonprofitLink) error
	LinkMentorsToNonprofits(ctx context.Context, cycleID uuid.UUID, links []models.MentorNonprofitLink) error
	LinkVolunteersToMentors(ctx context.Context, cycleID uuid.UUID, links []models.VolunteerMentorLink) error

	// Jobs.
	CreateJob(ctx context.Context, cycleID *uuid.UUID, data models.CreateJob) (uuid.UUID, error)
	FetchJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	FetchJobs(ctx context.Context) ([]models.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, data models.UpdateJobStatus) error
	SetJobCycle(ctx context.Context, id, cycleID uuid.UUID) error
	EditJob(ctx context.Context, id uuid.UUID, label, description *string) error

	// Exported-volunteers ledger.
	FetchExportedVolunteers(ctx context.Context, cycleID uuid.UUID) ([]models.ExportedVolunteer, error)
	InsertExportedVolunteers(ctx context.Context, rows []models.ExportedVolunteer) error
	RemoveExportedVolunteers(ctx context.Context, volunteerIDs []uuid.UUID) error
}

// Gateway is the full storage capability: pool-level queries plus an explicit
// transaction scope.
type Gateway interface {
	Querier
	// InTx runs fn inside one transaction. A non-nil error from fn rolls
	// everything back.
	InTx(ctx context.Context, fn func(q Querier) error) error
}
