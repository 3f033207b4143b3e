package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/developforgood/pantheon/internal/models"
)

const jobColumns = `id, created_at, updated_at, project_cycle_id, status, label, description, details`

func scanJob(row rowScanner, j *models.Job) error {
	var details []byte
	err := row.Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt, &j.CycleID, &j.Status,
		&j.Label, &j.Description, &details)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(details, &j.Details); err != nil {
		return fmt.Errorf("decoding details of job %s: %w", j.ID, err)
	}
	return nil
}

// CreateJob records a new pending job and returns its id.
func (q Queries) CreateJob(ctx context.Context, cycleID *uuid.UUID, data models.CreateJob) (uuid.UUID, error) {
	details, err := json.Marshal(data.Details)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encoding job details: %w", err)
	}
	var id uuid.UUID
	err = q.db.QueryRow(ctx, `
		INSERT INTO jobs (project_cycle_id, label, description, details)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		cycleID, data.Label, data.Description, details).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting job: %w", mapErr(err))
	}
	return id, nil
}

// FetchJob returns one job or ErrNotFound.
func (q Queries) FetchJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var j models.Job
	row := q.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	if err := scanJob(row, &j); err != nil {
		return nil, fmt.Errorf("fetching job %s: %w", id, mapErr(err))
	}
	return &j, nil
}

// FetchJobs lists every job, newest first.
func (q Queries) FetchJobs(ctx context.Context) ([]models.Job, error) {
	rows, err := q.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var j models.Job
		if err := scanJob(rows, &j); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// UpdateJobStatus moves a pending job to a new status. The WHERE clause is
// the terminal-state guard: once a job leaves pending its status never
// changes again, and a late writer gets ErrJobTerminal instead of a lost
// update.
func (q Queries) UpdateJobStatus(ctx context.Context, id uuid.UUID, data models.UpdateJobStatus) error {
	var tag pgconn.CommandTag
	var err error
	if data.Error != "" {
		tag, err = q.db.Exec(ctx, `
			UPDATE jobs
			SET status = $2, updated_at = now(),
			    details = details || jsonb_build_object('error', $3::text)
			WHERE id = $1 AND status = 'pending'`,
			id, data.Status, data.Error)
	} else {
		tag, err = q.db.Exec(ctx, `
			UPDATE jobs SET status = $2, updated_at = now()
			WHERE id = $1 AND status = 'pending'`,
			id, data.Status)
	}
	if err != nil {
		return fmt.Errorf("updating job %s status: %w", id, mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		var status models.JobStatus
		err := q.db.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("checking job %s status: %w", id, err)
		}
		return fmt.Errorf("%w: %s is %s", ErrJobTerminal, id, status)
	}
	return nil
}

// SetJobCycle binds a job to the cycle it created, once the cycle id exists.
func (q Queries) SetJobCycle(ctx context.Context, id, cycleID uuid.UUID) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE jobs SET project_cycle_id = $2, updated_at = now() WHERE id = $1`,
		id, cycleID)
	if err != nil {
		return fmt.Errorf("setting job %s cycle: %w", id, mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// EditJob updates a job's label and/or description. Nil means keep.
func (q Queries) EditJob(ctx context.Context, id uuid.UUID, label, description *string) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE jobs
		SET label = COALESCE($2, label),
		    description = COALESCE($3, description),
		    updated_at = now()
		WHERE id = $1`,
		id, label, description)
	if err != nil {
		return fmt.Errorf("editing job %s: %w", id, mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
